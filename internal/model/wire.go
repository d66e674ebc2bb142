package model

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// costRecord is the flat wire shape of a cost as configuration layers send it.
type costRecord struct {
	ID                   string         `json:"id" yaml:"id"`
	Name                 string         `json:"name" yaml:"name"`
	Type                 string         `json:"type" yaml:"type"`
	AllocationType       AllocationType `json:"allocationType,omitempty" yaml:"allocationType,omitempty"`
	SpecificToProduct    string         `json:"specificToProduct,omitempty" yaml:"specificToProduct,omitempty"`
	Amount               float64        `json:"amount,omitempty" yaml:"amount,omitempty"`
	CostPerUnit          float64        `json:"costPerUnit,omitempty" yaml:"costPerUnit,omitempty"`
	ProductSpecificRates []rateRecord   `json:"productSpecificRates,omitempty" yaml:"productSpecificRates,omitempty"`
	BaseUnits            float64        `json:"baseUnits,omitempty" yaml:"baseUnits,omitempty"`
	BaseCost             float64        `json:"baseCost,omitempty" yaml:"baseCost,omitempty"`
	ScaleFactor          float64        `json:"scaleFactor,omitempty" yaml:"scaleFactor,omitempty"`
	Ranges               []rangeRecord  `json:"ranges,omitempty" yaml:"ranges,omitempty"`
	StepType             StepType       `json:"stepType,omitempty" yaml:"stepType,omitempty"`
	ProductRangeRates    []rateRecord   `json:"productRangeRates,omitempty" yaml:"productRangeRates,omitempty"`
}

type rateRecord struct {
	ProductID   string  `json:"productId" yaml:"productId"`
	CostPerUnit float64 `json:"costPerUnit" yaml:"costPerUnit"`
	RangeID     string  `json:"rangeId,omitempty" yaml:"rangeId,omitempty"`
}

type rangeRecord struct {
	ID          string  `json:"id,omitempty" yaml:"id,omitempty"`
	StartUnits  float64 `json:"startUnits" yaml:"startUnits"`
	EndUnits    float64 `json:"endUnits" yaml:"endUnits"`
	FixedCost   float64 `json:"fixedCost,omitempty" yaml:"fixedCost,omitempty"`
	CostPerUnit float64 `json:"costPerUnit,omitempty" yaml:"costPerUnit,omitempty"`
}

const (
	wireFixed        = "fixed"
	wireVariable     = "variable"
	wireSemiVariable = "semi-variable"
	wireStepFunction = "step-function"
)

func (r costRecord) header() CostHeader {
	alloc := PlantWideAllocation()
	if r.AllocationType == ProductSpecific {
		alloc = ForProduct(r.SpecificToProduct)
	}
	return CostHeader{ID: r.ID, Name: r.Name, Allocation: alloc}
}

func (r costRecord) toCost() (Cost, error) {
	switch r.Type {
	case wireFixed:
		return FixedCost{CostHeader: r.header(), Amount: r.Amount}, nil
	case wireVariable:
		c := VariableCost{CostHeader: r.header(), CostPerUnit: r.CostPerUnit}
		for _, pr := range r.ProductSpecificRates {
			c.ProductRates = append(c.ProductRates, ProductRate{ProductID: pr.ProductID, CostPerUnit: pr.CostPerUnit})
		}
		if r.StepType == StepVariable {
			for _, rg := range r.Ranges {
				c.Tiers = append(c.Tiers, RateTier{ID: rg.ID, Start: rg.StartUnits, End: rg.EndUnits, CostPerUnit: rg.CostPerUnit})
			}
			for _, tr := range r.ProductRangeRates {
				c.TierRates = append(c.TierRates, TierRate{ProductID: tr.ProductID, TierID: tr.RangeID, CostPerUnit: tr.CostPerUnit})
			}
		}
		return c, nil
	case wireSemiVariable:
		return SemiVariableCost{
			CostHeader:  r.header(),
			BaseUnits:   r.BaseUnits,
			BaseCost:    r.BaseCost,
			ScaleFactor: r.ScaleFactor,
		}, nil
	case wireStepFunction:
		c := StepCost{CostHeader: r.header(), StepType: StepVariable}
		if r.StepType == StepFixed {
			c.StepType = StepFixed
		}
		for _, rg := range r.Ranges {
			charge := rg.CostPerUnit
			if c.StepType == StepFixed {
				charge = rg.FixedCost
			}
			c.Ranges = append(c.Ranges, StepRange{ID: rg.ID, Start: rg.StartUnits, End: rg.EndUnits, Charge: charge})
		}
		for _, tr := range r.ProductRangeRates {
			c.ProductRangeRates = append(c.ProductRangeRates, TierRate{ProductID: tr.ProductID, TierID: tr.RangeID, CostPerUnit: tr.CostPerUnit})
		}
		return c, nil
	default:
		return nil, fmt.Errorf("cost %q: unknown type %q", r.Name, r.Type)
	}
}

func recordFromHeader(h CostHeader, kind string) costRecord {
	r := costRecord{ID: h.ID, Name: h.Name, Type: kind, AllocationType: PlantWide}
	if !h.Allocation.IsPlantWide() {
		r.AllocationType = ProductSpecific
		r.SpecificToProduct = h.Allocation.Product
	}
	return r
}

func toRecord(c Cost) (costRecord, error) {
	switch c := c.(type) {
	case FixedCost:
		r := recordFromHeader(c.CostHeader, wireFixed)
		r.Amount = c.Amount
		return r, nil
	case VariableCost:
		r := recordFromHeader(c.CostHeader, wireVariable)
		r.CostPerUnit = c.CostPerUnit
		for _, pr := range c.ProductRates {
			r.ProductSpecificRates = append(r.ProductSpecificRates, rateRecord{ProductID: pr.ProductID, CostPerUnit: pr.CostPerUnit})
		}
		if c.Tiered() {
			r.StepType = StepVariable
			for _, t := range c.Tiers {
				r.Ranges = append(r.Ranges, rangeRecord{ID: t.ID, StartUnits: t.Start, EndUnits: t.End, CostPerUnit: t.CostPerUnit})
			}
			for _, tr := range c.TierRates {
				r.ProductRangeRates = append(r.ProductRangeRates, rateRecord{ProductID: tr.ProductID, RangeID: tr.TierID, CostPerUnit: tr.CostPerUnit})
			}
		}
		return r, nil
	case SemiVariableCost:
		r := recordFromHeader(c.CostHeader, wireSemiVariable)
		r.BaseUnits, r.BaseCost, r.ScaleFactor = c.BaseUnits, c.BaseCost, c.ScaleFactor
		return r, nil
	case StepCost:
		r := recordFromHeader(c.CostHeader, wireStepFunction)
		r.StepType = c.StepType
		for _, rg := range c.Ranges {
			rec := rangeRecord{ID: rg.ID, StartUnits: rg.Start, EndUnits: rg.End}
			if c.StepType == StepFixed {
				rec.FixedCost = rg.Charge
			} else {
				rec.CostPerUnit = rg.Charge
			}
			r.Ranges = append(r.Ranges, rec)
		}
		for _, tr := range c.ProductRangeRates {
			r.ProductRangeRates = append(r.ProductRangeRates, rateRecord{ProductID: tr.ProductID, RangeID: tr.TierID, CostPerUnit: tr.CostPerUnit})
		}
		return r, nil
	default:
		return costRecord{}, fmt.Errorf("unsupported cost %T", c)
	}
}

func costsFromRecords(records []costRecord) (Costs, error) {
	out := make(Costs, 0, len(records))
	for i, r := range records {
		c, err := r.toCost()
		if err != nil {
			return nil, fmt.Errorf("decode cost %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (cs Costs) records() ([]costRecord, error) {
	out := make([]costRecord, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		r, err := toRecord(c)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// UnmarshalJSON decodes the flat wire shape into typed cost variants.
func (cs *Costs) UnmarshalJSON(data []byte) error {
	var records []costRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	decoded, err := costsFromRecords(records)
	if err != nil {
		return err
	}
	*cs = decoded
	return nil
}

// MarshalJSON encodes costs in the flat wire shape.
func (cs Costs) MarshalJSON() ([]byte, error) {
	records, err := cs.records()
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

// UnmarshalYAML decodes the flat wire shape from a scenario file.
func (cs *Costs) UnmarshalYAML(value *yaml.Node) error {
	var records []costRecord
	if err := value.Decode(&records); err != nil {
		return err
	}
	decoded, err := costsFromRecords(records)
	if err != nil {
		return err
	}
	*cs = decoded
	return nil
}

// MarshalYAML encodes costs in the flat wire shape.
func (cs Costs) MarshalYAML() (any, error) {
	return cs.records()
}
