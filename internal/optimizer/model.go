package optimizer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Simplici0/plantplan/internal/capacity"
	"github.com/Simplici0/plantplan/internal/costing"
	"github.com/Simplici0/plantplan/internal/model"
	"github.com/Simplici0/plantplan/internal/solver"
)

// allocation is a production decision variable x[plant, product].
type allocation struct {
	plantID   string
	productID string
	name      string
}

// plantCapacity is the resolved capacity of a plant in model order.
type plantCapacity struct {
	value      float64
	configured bool
}

// Problem is the linear program built from a scenario together with the
// bookkeeping needed to read its solution back.
type Problem struct {
	Model         solver.Model
	Linearization []model.Linearization

	allocations []allocation
	capacities  []plantCapacity
}

func productionVar(plantID, productID string) string {
	return fmt.Sprintf("x[%q,%q]", plantID, productID)
}

func setupVar(plantID, productID string) string {
	return fmt.Sprintf("s[%q,%q]", plantID, productID)
}

// Linearize fits a least-squares line through the cost of producing 0, half
// and all of the capacity of one product at one plant in isolation. The slope
// is the per-unit cost the linear program uses. It is an approximation: the
// fit drifts from the true cost for strongly convex or concave curves.
func Linearize(plant model.Plant, productID string, capacity float64) (slope, intercept float64) {
	if capacity <= 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return 0, 0
	}
	xs := []float64{0, capacity / 2, capacity}
	ys := make([]float64, len(xs))
	for i, units := range xs {
		ys[i] = costing.Evaluate(map[string]float64{productID: units}, plant).Cost
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0, 0
	}
	return slope, intercept
}

// BuildProblem turns plants and products into a mixed-integer program that
// maximizes linearized profit.
func BuildProblem(plants []model.Plant, products []model.Product) *Problem {
	p := &Problem{capacities: make([]plantCapacity, len(plants))}

	demand := make(map[string]map[string]float64, len(products))
	for _, product := range products {
		demand[product.ID] = make(map[string]float64)
	}

	for i, plant := range plants {
		plantCap, ok := capacity.ForPlant(plant)
		p.capacities[i] = plantCapacity{value: plantCap, configured: ok}
		if !ok {
			continue
		}

		capacityRow := make(map[string]float64)
		for _, product := range products {
			cfg, produces := plant.Products.Lookup(product.ID)
			if !produces {
				continue
			}
			name := productionVar(plant.ID, product.ID)

			productCap, ok := capacity.ForProduct(plant, product.ID)
			sampleCap := plantCap
			if ok {
				sampleCap = productCap
			}
			slope, intercept := Linearize(plant, product.ID, sampleCap)
			p.Linearization = append(p.Linearization, model.Linearization{
				PlantID:      plant.ID,
				ProductID:    product.ID,
				SlopePerUnit: slope,
				Intercept:    intercept,
			})

			p.Model.AddVariable(name, finite(product.Price)-slope, false)
			p.allocations = append(p.allocations, allocation{plantID: plant.ID, productID: product.ID, name: name})
			demand[product.ID][name] = 1
			capacityRow[name] = 1
			// A slow line in rate mode cannot use the whole plant capacity.
			if ok && productCap < plantCap {
				p.Model.AddConstraint(solver.AtMost(fmt.Sprintf("capacity[%q,%q]", plant.ID, product.ID), productCap, map[string]float64{name: 1}))
			}

			if cfg.SetupCost == nil || finite(*cfg.SetupCost) == 0 {
				continue
			}
			setup := setupVar(plant.ID, product.ID)
			p.Model.AddVariable(setup, -finite(*cfg.SetupCost), true)
			p.Model.AddConstraint(solver.AtMost("link"+setup, 0, map[string]float64{name: 1, setup: -plantCap}))
			p.Model.AddConstraint(solver.AtMost("binary"+setup, 1, map[string]float64{setup: 1}))
		}
		if len(capacityRow) > 0 {
			p.Model.AddConstraint(solver.AtMost(fmt.Sprintf("capacity[%q]", plant.ID), plantCap, capacityRow))
		}
	}

	for _, product := range products {
		p.Model.AddConstraint(solver.Between(
			fmt.Sprintf("demand[%q]", product.ID),
			finite(product.MinProduction),
			finite(product.Demand),
			demand[product.ID],
		))
	}
	return p
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
