package model

// Status is the outcome of an optimization run.
type Status string

const (
	StatusOptimal     Status = "optimal"
	StatusInfeasible  Status = "infeasible"
	StatusUnbounded   Status = "unbounded"
	StatusUnavailable Status = "unavailable"
)

// ProductAllocation is what one plant makes of one product.
type ProductAllocation struct {
	Units   float64 `json:"units"`
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

// PlantAllocation summarizes the production assigned to a plant.
type PlantAllocation struct {
	PlantID             string                       `json:"plantId"`
	Units               float64                      `json:"units"`
	Capacity            float64                      `json:"capacity"`
	CapacityConfigured  bool                         `json:"capacityConfigured"`
	CapacityUtilization float64                      `json:"capacityUtilization"`
	Products            map[string]ProductAllocation `json:"products"`
	Cost                float64                      `json:"cost"`
	Revenue             float64                      `json:"revenue"`
	Profit              float64                      `json:"profit"`
}

// ProductTotal aggregates one product across plants.
type ProductTotal struct {
	Units     float64 `json:"units"`
	Revenue   float64 `json:"revenue"`
	Cost      float64 `json:"cost"`
	Profit    float64 `json:"profit"`
	DemandMet bool    `json:"demandMet"`
}

// Linearization is the straight-line cost estimate used for one plant/product.
type Linearization struct {
	PlantID      string  `json:"plantId"`
	ProductID    string  `json:"productId"`
	SlopePerUnit float64 `json:"slopePerUnit"`
	Intercept    float64 `json:"intercept"`
}

// OptimizationResult is the allocation chosen by the optimizer with exact costs.
type OptimizationResult struct {
	Status           Status                  `json:"status"`
	Reason           string                  `json:"reason,omitempty"`
	PlantAllocations []PlantAllocation       `json:"plantAllocations"`
	ProductTotals    map[string]ProductTotal `json:"productTotals"`
	TotalUnits       float64                 `json:"totalUnits"`
	TotalCost        float64                 `json:"totalCost"`
	TotalRevenue     float64                 `json:"totalRevenue"`
	TotalProfit      float64                 `json:"totalProfit"`
	TotalCapacity    float64                 `json:"totalCapacity"`
	Linearization    []Linearization         `json:"linearization,omitempty"`
}

// Feasible reports whether the result carries a solved allocation.
func (r OptimizationResult) Feasible() bool {
	return r.Status == StatusOptimal
}
