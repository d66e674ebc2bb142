// Package curve samples a plant's cost curve for a single product and picks
// the most profitable or cheapest-per-unit volume from the samples.
package curve

import (
	"iter"
	"math"

	"github.com/Simplici0/plantplan/internal/costing"
	"github.com/Simplici0/plantplan/internal/model"
)

// SampleInterval returns a step that gives roughly constant resolution across scales.
func SampleInterval(capacity float64) float64 {
	switch {
	case capacity <= 10:
		return 1
	case capacity <= 100:
		return 10
	case capacity <= 1000:
		return 100
	}
	magnitude := math.Floor(math.Log10(capacity))
	return math.Max(math.Pow(10, magnitude-1), math.Ceil(capacity/20))
}

// Generate yields cost points from 0 to capacity in SampleInterval steps and
// always ends with a point exactly at capacity. An empty productID samples the
// plant's first product. The sequence can be ranged over any number of times.
func Generate(plant model.Plant, productID string, capacity float64) iter.Seq[costing.Point] {
	if productID == "" {
		if ids := plant.Products.IDs(); len(ids) > 0 {
			productID = ids[0]
		}
	}
	return func(yield func(costing.Point) bool) {
		if math.IsNaN(capacity) || math.IsInf(capacity, 0) || capacity <= 0 {
			yield(costing.Point{Breakdown: map[string]float64{}})
			return
		}
		interval := SampleInterval(capacity)
		var last float64
		for i := 0; ; i++ {
			units := float64(i) * interval
			if units > capacity {
				break
			}
			if !yield(sample(plant, productID, units)) {
				return
			}
			last = units
		}
		if last != capacity {
			yield(sample(plant, productID, capacity))
		}
	}
}

// Points collects Generate into a slice.
func Points(plant model.Plant, productID string, capacity float64) []costing.Point {
	var out []costing.Point
	for p := range Generate(plant, productID, capacity) {
		out = append(out, p)
	}
	return out
}

func sample(plant model.Plant, productID string, units float64) costing.Point {
	p := costing.Evaluate(map[string]float64{productID: units}, plant)
	// Evaluate reports zero units for an empty mix; keep the sampled volume.
	p.Units = units
	return p
}

// Optimal is the best sampled volume.
type Optimal struct {
	costing.Point
	CostPerUnit float64 `json:"costPerUnit"`
	Profit      float64 `json:"profit"`
}

// FindOptimal samples productID and returns the volume maximizing profit when
// product carries a price, and the one minimizing cost per unit otherwise.
// The first volume reaching the extremum wins. Without valid samples it
// returns the zero point.
func FindOptimal(plant model.Plant, productID string, product *model.Product, capacity float64) Optimal {
	productID = resolveID(productID, product)

	var best Optimal
	found := false
	for p := range Generate(plant, productID, capacity) {
		if p.Units <= 0 || p.Units > capacity {
			continue
		}
		candidate := Optimal{Point: p, CostPerUnit: p.Cost / p.Units}
		if product != nil {
			candidate.Profit = product.Price*p.Units - p.Cost
		}
		switch {
		case !found:
		case product != nil && candidate.Profit > best.Profit:
		case product == nil && candidate.CostPerUnit < best.CostPerUnit:
		default:
			continue
		}
		best, found = candidate, true
	}
	if !found {
		return Optimal{Point: costing.Point{Breakdown: map[string]float64{}}}
	}
	return best
}

// Analysis is one row of a profit and loss table.
type Analysis struct {
	Units       float64            `json:"units"`
	TotalCost   float64            `json:"totalCost"`
	Breakdown   map[string]float64 `json:"costBreakdown"`
	CostPerUnit float64            `json:"costPerUnit"`
	Revenue     float64            `json:"revenue"`
	Profit      float64            `json:"profit"`
}

// Analyze builds a P&L row for every sampled volume of productID. Revenue and
// profit are zero without a product.
func Analyze(plant model.Plant, productID string, product *model.Product, capacity float64) []Analysis {
	productID = resolveID(productID, product)
	var rows []Analysis
	for p := range Generate(plant, productID, capacity) {
		row := Analysis{
			Units:       p.Units,
			TotalCost:   p.Cost,
			Breakdown:   p.Breakdown,
			CostPerUnit: p.CostPerUnit(),
		}
		if product != nil {
			row.Revenue = product.Price * p.Units
			row.Profit = row.Revenue - p.Cost
		}
		rows = append(rows, row)
	}
	return rows
}

// BreakEven returns the first sampled positive volume whose profit is not negative.
func BreakEven(plant model.Plant, product model.Product, capacity float64) (Analysis, bool) {
	for _, row := range Analyze(plant, product.ID, &product, capacity) {
		if row.Units > 0 && row.Profit >= 0 {
			return row, true
		}
	}
	return Analysis{}, false
}

func resolveID(productID string, product *model.Product) string {
	if productID == "" && product != nil {
		return product.ID
	}
	return productID
}
