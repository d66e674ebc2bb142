// Package costing evaluates the production cost of a plant for a given mix of
// per-product volumes.
package costing

import (
	"math"
	"sort"

	"github.com/Simplici0/plantplan/internal/model"
)

// SetupCostPrefix prefixes the breakdown entry of a product's setup cost.
const SetupCostPrefix = "Setup Cost - "

// Point is the cost of one production mix.
type Point struct {
	Units     float64            `json:"units"`
	Cost      float64            `json:"cost"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// CostPerUnit returns Cost/Units, 0 when nothing is produced.
func (p Point) CostPerUnit() float64 {
	if p.Units == 0 {
		return 0
	}
	return p.Cost / p.Units
}

func zeroPoint() Point {
	return Point{Breakdown: map[string]float64{}}
}

// SetupCostName returns the breakdown key used for a product's setup cost.
func SetupCostName(productID string) string {
	return SetupCostPrefix + productID
}

// Evaluate computes the total and itemized cost of producing units (product ID
// to volume) at plant. Malformed numbers count as zero and nothing produced
// yields a zero point.
func Evaluate(units map[string]float64, plant model.Plant) Point {
	volumes := make(map[string]float64, len(units))
	var total float64
	for id, u := range units {
		u = num(u)
		if u < 0 {
			u = 0
		}
		volumes[id] = u
		total += u
	}
	if total == 0 {
		return zeroPoint()
	}

	breakdown := make(map[string]float64)
	for _, c := range plant.Costs {
		if c == nil {
			continue
		}
		breakdown[c.Header().Name] += costOf(c, volumes, total)
	}

	ids := make([]string, 0, len(volumes))
	for id := range volumes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if volumes[id] <= 0 {
			continue
		}
		cfg, ok := plant.Products.Lookup(id)
		if !ok || cfg.SetupCost == nil {
			continue
		}
		if setup := num(*cfg.SetupCost); setup != 0 {
			breakdown[SetupCostName(id)] += setup
		}
	}

	var cost float64
	for _, v := range breakdown {
		cost += v
	}
	return Point{Units: total, Cost: cost, Breakdown: breakdown}
}

func costOf(c model.Cost, units map[string]float64, total float64) float64 {
	switch c := c.(type) {
	case model.FixedCost:
		return fixedCost(c, units)
	case model.VariableCost:
		return variableCost(c, units, total)
	case model.SemiVariableCost:
		return semiVariableCost(c, subjectUnits(c.Allocation, units, total))
	case model.StepCost:
		return stepCost(c, subjectUnits(c.Allocation, units, total))
	default:
		return 0
	}
}

// subjectUnits is the volume a cost applies to: everything for plant-wide
// costs, the one product otherwise.
func subjectUnits(a model.Allocation, units map[string]float64, total float64) float64 {
	if a.IsPlantWide() {
		return total
	}
	return units[a.Product]
}

func fixedCost(c model.FixedCost, units map[string]float64) float64 {
	if c.Allocation.IsPlantWide() || units[c.Allocation.Product] > 0 {
		return num(c.Amount)
	}
	return 0
}

func variableCost(c model.VariableCost, units map[string]float64, total float64) float64 {
	if c.Allocation.IsPlantWide() {
		if c.Tiered() {
			tier, ok := findTier(c.Tiers, total)
			if !ok {
				return 0
			}
			return total * num(tier.CostPerUnit)
		}
		return total * num(c.CostPerUnit)
	}

	product := c.Allocation.Product
	u := units[product]
	if c.Tiered() {
		tier, ok := findTier(c.Tiers, u)
		if !ok {
			return 0
		}
		for _, tr := range c.TierRates {
			if tr.ProductID == product && tr.TierID == tier.ID {
				return u * num(tr.CostPerUnit)
			}
		}
		return 0
	}
	for _, pr := range c.ProductRates {
		if pr.ProductID == product {
			return u * num(pr.CostPerUnit)
		}
	}
	return u * num(c.CostPerUnit)
}

// findTier returns the first tier, by start, whose closed range holds units.
func findTier(tiers []model.RateTier, units float64) (model.RateTier, bool) {
	sorted := make([]model.RateTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return num(sorted[i].Start) < num(sorted[j].Start) })
	for _, t := range sorted {
		if units >= num(t.Start) && units <= num(t.End) {
			return t, true
		}
	}
	return model.RateTier{}, false
}

// semiVariableCost scales BaseCost by ScaleFactor times the relative deviation
// from BaseUnits. It goes negative far below BaseUnits.
func semiVariableCost(c model.SemiVariableCost, units float64) float64 {
	if units == 0 {
		return 0
	}
	base := num(c.BaseUnits)
	if base == 0 {
		base = 1
	}
	scale := num(c.ScaleFactor)
	if scale == 0 {
		scale = 1
	}
	return num(c.BaseCost) * (1 + scale*(units-base)/base)
}

// stepCost walks the tiers in ascending order, filling each up to its width.
// A fixed tier charge is due in full as soon as a unit lands in the tier.
func stepCost(c model.StepCost, units float64) float64 {
	ranges := make([]model.StepRange, len(c.Ranges))
	copy(ranges, c.Ranges)
	sort.SliceStable(ranges, func(i, j int) bool { return num(ranges[i].Start) < num(ranges[j].Start) })

	var cost float64
	remaining := units
	for _, r := range ranges {
		if remaining <= 0 {
			break
		}
		consumed := math.Min(remaining, num(r.End)-num(r.Start))
		if consumed <= 0 {
			continue
		}
		if c.StepType == model.StepFixed {
			cost += num(r.Charge)
		} else {
			cost += consumed * num(r.Charge)
		}
		remaining -= consumed
	}
	return cost
}

func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
