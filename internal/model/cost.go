package model

// AllocationType says whether a cost applies plant-wide or to one product.
type AllocationType string

const (
	PlantWide       AllocationType = "plant-wide"
	ProductSpecific AllocationType = "product-specific"
)

// StepType selects how step-function tiers charge.
type StepType string

const (
	// StepFixed charges a flat amount once for every tier that holds units.
	StepFixed StepType = "fixed"
	// StepVariable charges a per-unit rate for the units inside each tier.
	StepVariable StepType = "variable"
)

// Allocation is the scope of a cost.
type Allocation struct {
	Type    AllocationType
	Product string
}

// PlantWideAllocation returns a plant-wide scope.
func PlantWideAllocation() Allocation {
	return Allocation{Type: PlantWide}
}

// ForProduct returns a scope restricted to one product.
func ForProduct(productID string) Allocation {
	return Allocation{Type: ProductSpecific, Product: productID}
}

// IsPlantWide reports whether the cost applies to every unit the plant makes.
func (a Allocation) IsPlantWide() bool {
	return a.Type != ProductSpecific
}

// CostHeader carries the fields shared by every cost variant.
type CostHeader struct {
	ID         string
	Name       string
	Allocation Allocation
}

// Cost is one of FixedCost, VariableCost, SemiVariableCost or StepCost.
type Cost interface {
	Header() CostHeader
	isCost()
}

// FixedCost is a one-off charge.
type FixedCost struct {
	CostHeader
	Amount float64
}

// ProductRate is a per-unit rate overriding a cost's default for one product.
type ProductRate struct {
	ProductID   string
	CostPerUnit float64
}

// RateTier is a volume bracket of a tiered variable cost.
type RateTier struct {
	ID          string
	Start       float64
	End         float64
	CostPerUnit float64
}

// TierRate is a per-unit rate for one product inside one tier.
type TierRate struct {
	ProductID   string
	TierID      string
	CostPerUnit float64
}

// VariableCost is a per-unit charge. When Tiers is non-empty the rate is taken
// from the tier holding the subject volume instead of CostPerUnit.
type VariableCost struct {
	CostHeader
	CostPerUnit  float64
	ProductRates []ProductRate
	Tiers        []RateTier
	TierRates    []TierRate
}

// Tiered reports whether the cost uses volume brackets.
func (c VariableCost) Tiered() bool {
	return len(c.Tiers) > 0
}

// SemiVariableCost scales from a reference point (BaseUnits, BaseCost).
type SemiVariableCost struct {
	CostHeader
	BaseUnits   float64
	BaseCost    float64
	ScaleFactor float64
}

// StepRange is a tier of a step-function cost. Charge is the flat tier cost
// for StepFixed and the per-unit rate for StepVariable.
type StepRange struct {
	ID     string
	Start  float64
	End    float64
	Charge float64
}

// StepCost is a tiered cost by volume bracket.
type StepCost struct {
	CostHeader
	StepType          StepType
	Ranges            []StepRange
	ProductRangeRates []TierRate
}

func (c FixedCost) Header() CostHeader        { return c.CostHeader }
func (c VariableCost) Header() CostHeader     { return c.CostHeader }
func (c SemiVariableCost) Header() CostHeader { return c.CostHeader }
func (c StepCost) Header() CostHeader         { return c.CostHeader }

func (FixedCost) isCost()        {}
func (VariableCost) isCost()     {}
func (SemiVariableCost) isCost() {}
func (StepCost) isCost()         {}

// Costs is the ordered cost list of a plant.
type Costs []Cost
