package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const plantJSON = `{
  "id": "p1",
  "name": "North",
  "capacityMode": "fixed",
  "capacity": 1000,
  "costs": [
    {"id": "c1", "name": "Rent", "type": "fixed", "amount": 5000},
    {"id": "c2", "name": "Materials", "type": "variable", "allocationType": "product-specific",
     "specificToProduct": "bolt", "costPerUnit": 3,
     "productSpecificRates": [{"productId": "bolt", "costPerUnit": 2.5}]},
    {"id": "c3", "name": "Energy", "type": "semi-variable", "baseUnits": 100, "baseCost": 400, "scaleFactor": 0.5},
    {"id": "c4", "name": "Shifts", "type": "step-function", "stepType": "fixed",
     "ranges": [{"id": "r1", "startUnits": 0, "endUnits": 500, "fixedCost": 900},
                {"id": "r2", "startUnits": 500, "endUnits": 1000, "fixedCost": 1200}]},
    {"id": "c5", "name": "Labour", "type": "variable", "stepType": "variable",
     "ranges": [{"id": "t1", "startUnits": 0, "endUnits": 100, "costPerUnit": 9}]}
  ],
  "products": {"bolt": {"setupCost": 50}}
}`

func TestCosts_DecodeJSON(t *testing.T) {
	var plant Plant
	require.NoError(t, json.Unmarshal([]byte(plantJSON), &plant))

	want := Costs{
		FixedCost{CostHeader: CostHeader{ID: "c1", Name: "Rent", Allocation: PlantWideAllocation()}, Amount: 5000},
		VariableCost{
			CostHeader:   CostHeader{ID: "c2", Name: "Materials", Allocation: ForProduct("bolt")},
			CostPerUnit:  3,
			ProductRates: []ProductRate{{ProductID: "bolt", CostPerUnit: 2.5}},
		},
		SemiVariableCost{
			CostHeader: CostHeader{ID: "c3", Name: "Energy", Allocation: PlantWideAllocation()},
			BaseUnits:  100, BaseCost: 400, ScaleFactor: 0.5,
		},
		StepCost{
			CostHeader: CostHeader{ID: "c4", Name: "Shifts", Allocation: PlantWideAllocation()},
			StepType:   StepFixed,
			Ranges: []StepRange{
				{ID: "r1", Start: 0, End: 500, Charge: 900},
				{ID: "r2", Start: 500, End: 1000, Charge: 1200},
			},
		},
		VariableCost{
			CostHeader: CostHeader{ID: "c5", Name: "Labour", Allocation: PlantWideAllocation()},
			Tiers:      []RateTier{{ID: "t1", Start: 0, End: 100, CostPerUnit: 9}},
		},
	}
	if diff := cmp.Diff(want, plant.Costs); diff != "" {
		t.Fatalf("decoded costs mismatch (-want +got):\n%s", diff)
	}

	cfg, ok := plant.Products.Lookup("bolt")
	require.True(t, ok)
	require.NotNil(t, cfg.SetupCost)
	assert.Equal(t, 50.0, *cfg.SetupCost)
	assert.Equal(t, 1000.0, *plant.Capacity)
}

func TestCosts_EncodeKeepsVariant(t *testing.T) {
	var plant Plant
	require.NoError(t, json.Unmarshal([]byte(plantJSON), &plant))

	data, err := json.Marshal(plant)
	require.NoError(t, err)

	var again Plant
	require.NoError(t, json.Unmarshal(data, &again))
	if diff := cmp.Diff(plant.Costs, again.Costs); diff != "" {
		t.Fatalf("costs changed after encoding (-before +after):\n%s", diff)
	}
}

func TestCosts_UnknownType(t *testing.T) {
	var cs Costs
	err := json.Unmarshal([]byte(`[{"name": "Mystery", "type": "quantum"}]`), &cs)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode cost 0")
	assert.Contains(t, err.Error(), `"quantum"`)
}

func TestCosts_StepTypeDefaultsToVariable(t *testing.T) {
	var cs Costs
	require.NoError(t, json.Unmarshal([]byte(`[{"name": "Tiered", "type": "step-function",
		"ranges": [{"startUnits": 0, "endUnits": 10, "costPerUnit": 4, "fixedCost": 99}]}]`), &cs))

	require.Len(t, cs, 1)
	step, ok := cs[0].(StepCost)
	require.True(t, ok)
	assert.Equal(t, StepVariable, step.StepType)
	assert.Equal(t, 4.0, step.Ranges[0].Charge)
}

func TestScenario_DecodeYAML(t *testing.T) {
	src := `
title: Two sites
plants:
  - id: north
    name: North
    capacityMode: rate
    operatingTime: {hoursPerDay: 8, daysPerWeek: 5, weeksPerYear: 50}
    costs:
      - {id: c1, name: Rent, type: fixed, amount: 1000}
      - {id: c2, name: Parts, type: variable, allocationType: product-specific, specificToProduct: bolt, costPerUnit: 2}
    products:
      bolt:
        rate: {units: 10, timeUnit: hour}
products:
  - {id: bolt, name: Bolt, price: 5, demand: 1000, minProduction: 10}
`
	var s Scenario
	require.NoError(t, yaml.Unmarshal([]byte(src), &s))

	assert.Equal(t, "Two sites", s.Title)
	plant, ok := s.Plant("north")
	require.True(t, ok)
	assert.Equal(t, CapacityRate, plant.CapacityMode)
	assert.Nil(t, plant.Capacity)
	require.Len(t, plant.Costs, 2)
	assert.IsType(t, FixedCost{}, plant.Costs[0])
	assert.Equal(t, ForProduct("bolt"), plant.Costs[1].Header().Allocation)
	assert.Equal(t, &Rate{Units: 10, TimeUnit: Hour}, plant.Products["bolt"].Rate)

	product, ok := s.Product("bolt")
	require.True(t, ok)
	assert.Equal(t, 10.0, product.MinProduction)

	_, ok = s.Product("nut")
	assert.False(t, ok)

	out, err := yaml.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), "type: fixed")
}
