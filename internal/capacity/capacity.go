// Package capacity converts production rates and operating calendars into
// usable plant and product capacity.
package capacity

import (
	"math"

	"github.com/Simplici0/plantplan/internal/model"
)

const (
	hoursPerDay   = 24.0
	daysPerWeek   = 7.0
	daysPerMonth  = 30.44
	daysPerYear   = 365.25
	hoursPerYear  = hoursPerDay * daysPerYear
	hoursPerWeek  = hoursPerDay * daysPerWeek
	hoursPerMonth = hoursPerDay * daysPerMonth
)

// hoursIn returns the number of hours in one unit. Unknown units count as hours.
func hoursIn(unit model.TimeUnit) float64 {
	switch unit {
	case model.Day:
		return hoursPerDay
	case model.Week:
		return hoursPerWeek
	case model.Month:
		return hoursPerMonth
	case model.Year:
		return hoursPerYear
	default:
		return 1
	}
}

// ToHours converts value expressed in unit to hours.
func ToHours(value float64, unit model.TimeUnit) float64 {
	return value * hoursIn(unit)
}

// FromHours converts hours to the given unit.
func FromHours(hours float64, unit model.TimeUnit) float64 {
	return hours / hoursIn(unit)
}

// Convert converts a duration between time units.
func Convert(value float64, from, to model.TimeUnit) float64 {
	return FromHours(ToHours(value, from), to)
}

// AvailableHours returns the yearly operating hours of a calendar, 0 when unset.
func AvailableHours(ot *model.OperatingTime) float64 {
	if ot == nil {
		return 0
	}
	return finite(ot.HoursPerDay) * finite(ot.DaysPerWeek) * finite(ot.WeeksPerYear)
}

// Capacity returns the units producible over one target period at rate units
// per rateUnit, scaled by the share of the year the plant operates.
func Capacity(rate float64, rateUnit, target model.TimeUnit, availableHours float64) float64 {
	unitsPerHour := finite(rate) / ToHours(1, rateUnit)
	return unitsPerHour * ToHours(1, target) * finite(availableHours) / hoursPerYear
}

// Periods is a capacity expressed over the common planning periods.
type Periods struct {
	Yearly  float64 `json:"yearly"`
	Monthly float64 `json:"monthly"`
	Daily   float64 `json:"daily"`
	Hourly  float64 `json:"hourly"`
}

// ProductCapacities returns the rate-derived capacity of a product at a plant.
// It is zero when the product has no rate or the plant no operating calendar.
func ProductCapacities(plant model.Plant, productID string) Periods {
	cfg, ok := plant.Products.Lookup(productID)
	if !ok || cfg.Rate == nil || plant.OperatingTime == nil {
		return Periods{}
	}
	hours := AvailableHours(plant.OperatingTime)
	r := *cfg.Rate
	return Periods{
		Yearly:  Capacity(r.Units, r.TimeUnit, model.Year, hours),
		Monthly: Capacity(r.Units, r.TimeUnit, model.Month, hours),
		Daily:   Capacity(r.Units, r.TimeUnit, model.Day, hours),
		Hourly:  Capacity(r.Units, r.TimeUnit, model.Hour, hours),
	}
}

// MaxRateCapacity returns the largest yearly rate capacity among the plant's
// products and the product it belongs to. Ties keep the first product in ID order.
func MaxRateCapacity(plant model.Plant) (float64, string) {
	var best float64
	var bestProduct string
	for _, id := range plant.Products.IDs() {
		yearly := ProductCapacities(plant, id).Yearly
		if yearly > best {
			best, bestProduct = yearly, id
		}
	}
	return best, bestProduct
}

// ForProduct resolves the capacity available to productID at plant. The
// second return value is false when no capacity is configured.
func ForProduct(plant model.Plant, productID string) (float64, bool) {
	cfg, ok := plant.Products.Lookup(productID)
	if ok && cfg.Capacity != nil {
		return finite(*cfg.Capacity), true
	}
	if ok && plant.CapacityMode == model.CapacityRate && plant.OperatingTime != nil && cfg.Rate != nil {
		return wholeUnits(ProductCapacities(plant, productID).Yearly), true
	}
	if plant.Capacity != nil {
		return finite(*plant.Capacity), true
	}
	return 0, false
}

// ForPlant resolves the total capacity of a plant. Rate-based plants use the
// largest yearly product capacity, falling back to the fixed figure.
func ForPlant(plant model.Plant) (float64, bool) {
	if plant.CapacityMode == model.CapacityRate && plant.OperatingTime != nil {
		if c, _ := MaxRateCapacity(plant); c > 0 {
			return wholeUnits(c), true
		}
	}
	if plant.Capacity != nil {
		return finite(*plant.Capacity), true
	}
	return 0, false
}

// wholeUnits floors v, tolerating round-off just below an integer.
func wholeUnits(v float64) float64 {
	return math.Floor(v + 1e-9)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
