package model

import "sort"

// TimeUnit is the period a production rate is expressed in.
type TimeUnit string

const (
	Hour  TimeUnit = "hour"
	Day   TimeUnit = "day"
	Week  TimeUnit = "week"
	Month TimeUnit = "month"
	Year  TimeUnit = "year"
)

// CapacityMode selects whether plant capacity is a fixed ceiling or derived from rates.
type CapacityMode string

const (
	CapacityFixed CapacityMode = "fixed"
	CapacityRate  CapacityMode = "rate"
)

// OperatingTime is the plant operating calendar.
type OperatingTime struct {
	HoursPerDay  float64 `json:"hoursPerDay" yaml:"hoursPerDay"`
	DaysPerWeek  float64 `json:"daysPerWeek" yaml:"daysPerWeek"`
	WeeksPerYear float64 `json:"weeksPerYear" yaml:"weeksPerYear"`
}

// Rate is a production rate, e.g. 50 units per hour.
type Rate struct {
	Units    float64  `json:"units" yaml:"units"`
	TimeUnit TimeUnit `json:"timeUnit" yaml:"timeUnit"`
}

// Changeover is reserved sequencing data. It is carried but not used by the optimizer.
type Changeover struct {
	Time float64 `json:"time" yaml:"time"`
	Cost float64 `json:"cost" yaml:"cost"`
}

// ProductionConfig describes how one plant produces one product.
type ProductionConfig struct {
	Capacity   *float64              `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Rate       *Rate                 `json:"rate,omitempty" yaml:"rate,omitempty"`
	SetupCost  *float64              `json:"setupCost,omitempty" yaml:"setupCost,omitempty"`
	Changeover map[string]Changeover `json:"changeover,omitempty" yaml:"changeover,omitempty"`
}

// ProductLines maps product IDs to the plant's production config for that product.
// A missing entry means the plant cannot produce the product.
type ProductLines map[string]ProductionConfig

// Lookup returns the production config for productID.
func (pl ProductLines) Lookup(productID string) (ProductionConfig, bool) {
	cfg, ok := pl[productID]
	return cfg, ok
}

// Produces reports whether the plant can produce productID.
func (pl ProductLines) Produces(productID string) bool {
	_, ok := pl[productID]
	return ok
}

// IDs returns the product IDs in ascending order.
func (pl ProductLines) IDs() []string {
	ids := make([]string, 0, len(pl))
	for id := range pl {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Settings holds presentation preferences for a plant.
type Settings struct {
	UnitType         string   `json:"unitType,omitempty" yaml:"unitType,omitempty"`
	CustomUnitType   string   `json:"customUnitType,omitempty" yaml:"customUnitType,omitempty"`
	DefaultTimeframe TimeUnit `json:"defaultTimeframe,omitempty" yaml:"defaultTimeframe,omitempty"`
}

// UnitLabel returns the display name for a unit of output, "unit" when unset.
func (s *Settings) UnitLabel() string {
	if s == nil || s.UnitType == "" {
		return "unit"
	}
	if s.UnitType == "other" && s.CustomUnitType != "" {
		return s.CustomUnitType
	}
	return s.UnitType
}

// Plant is an immutable snapshot of one production site.
type Plant struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	CapacityMode  CapacityMode   `json:"capacityMode" yaml:"capacityMode"`
	Capacity      *float64       `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	OperatingTime *OperatingTime `json:"operatingTime,omitempty" yaml:"operatingTime,omitempty"`
	Costs         Costs          `json:"costs" yaml:"costs"`
	Products      ProductLines   `json:"products" yaml:"products"`
	Settings      *Settings      `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Product is something that can be sold.
type Product struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Price         float64 `json:"price" yaml:"price"`
	Demand        float64 `json:"demand" yaml:"demand"`
	MinProduction float64 `json:"minProduction,omitempty" yaml:"minProduction,omitempty"`
}

// Scenario bundles the plants and products handed to the optimizer.
type Scenario struct {
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Plants   []Plant   `json:"plants" yaml:"plants"`
	Products []Product `json:"products" yaml:"products"`
}

// Plant returns the plant with the given ID.
func (s Scenario) Plant(id string) (Plant, bool) {
	for _, p := range s.Plants {
		if p.ID == id {
			return p, true
		}
	}
	return Plant{}, false
}

// Product returns the product with the given ID.
func (s Scenario) Product(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
