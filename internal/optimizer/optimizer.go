// Package optimizer allocates product demand across plants to maximize
// profit. Costs are linearized per plant and product for the solver, then the
// chosen allocation is re-costed exactly.
package optimizer

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/plantplan/internal/costing"
	"github.com/Simplici0/plantplan/internal/model"
	"github.com/Simplici0/plantplan/internal/solver"
)

// DefaultTimeout bounds a single solve when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// demandTolerance absorbs solver round-off when checking demand bounds.
const demandTolerance = 1e-6

// Optimizer runs allocation problems through a Solver.
type Optimizer struct {
	solver  solver.Solver
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithSolver replaces the default simplex solver.
func WithSolver(s solver.Solver) Option {
	return func(o *Optimizer) { o.solver = s }
}

// WithTimeout sets how long a solve may run. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(o *Optimizer) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// New returns an Optimizer.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{timeout: DefaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.solver == nil {
		o.solver = solver.NewSimplex()
	}
	o.solver = solver.WithTimeout(o.solver, o.timeout)
	return o
}

// Optimize chooses how many units of each product every plant makes.
// Infeasible, unbounded and timed-out problems are reported through the
// result status with a zero allocation; Optimize never returns an error.
func (o *Optimizer) Optimize(ctx context.Context, plants []model.Plant, products []model.Product) model.OptimizationResult {
	start := time.Now()
	problem := BuildProblem(plants, products)
	o.logger.Debug("allocation model built",
		zap.Int("plants", len(plants)),
		zap.Int("products", len(products)),
		zap.Int("variables", len(problem.Model.Variables)),
		zap.Int("constraints", len(problem.Model.Constraints)),
	)

	sol, err := o.solver.Solve(ctx, problem.Model)
	if err != nil {
		status := statusOf(err)
		o.logger.Warn("allocation not solved",
			zap.String("status", string(status)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		res := assemble(plants, products, problem, solver.Solution{})
		res.Status = status
		res.Reason = err.Error()
		for id, total := range res.ProductTotals {
			total.DemandMet = false
			res.ProductTotals[id] = total
		}
		return res
	}

	res := assemble(plants, products, problem, sol)
	res.Status = model.StatusOptimal
	o.logger.Info("allocation solved",
		zap.Float64("profit", res.TotalProfit),
		zap.Float64("units", res.TotalUnits),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res
}

func statusOf(err error) model.Status {
	switch {
	case errors.Is(err, solver.ErrInfeasible):
		return model.StatusInfeasible
	case errors.Is(err, solver.ErrUnbounded):
		return model.StatusUnbounded
	default:
		return model.StatusUnavailable
	}
}

// assemble re-costs the solved allocation exactly. Per-product costs are the
// product produced alone at the plant, so shared fixed costs appear in every
// product line while the plant cost counts them once.
func assemble(plants []model.Plant, products []model.Product, p *Problem, sol solver.Solution) model.OptimizationResult {
	res := model.OptimizationResult{
		PlantAllocations: make([]model.PlantAllocation, 0, len(plants)),
		ProductTotals:    make(map[string]model.ProductTotal, len(products)),
		Linearization:    p.Linearization,
	}
	prices := make(map[string]float64, len(products))
	for _, product := range products {
		prices[product.ID] = finite(product.Price)
		res.ProductTotals[product.ID] = model.ProductTotal{}
	}

	byPlant := make(map[string][]allocation, len(plants))
	for _, a := range p.allocations {
		byPlant[a.plantID] = append(byPlant[a.plantID], a)
	}

	for i, plant := range plants {
		pc := p.capacities[i]
		alloc := model.PlantAllocation{
			PlantID:            plant.ID,
			Capacity:           pc.value,
			CapacityConfigured: pc.configured,
			Products:           make(map[string]model.ProductAllocation),
		}

		units := make(map[string]float64)
		for _, a := range byPlant[plant.ID] {
			n := math.Max(0, sol.Value(a.name))
			units[a.productID] = n
			alloc.Units += n

			revenue := n * prices[a.productID]
			cost := costing.Evaluate(map[string]float64{a.productID: n}, plant).Cost
			alloc.Products[a.productID] = model.ProductAllocation{
				Units:   n,
				Revenue: revenue,
				Cost:    cost,
				Profit:  revenue - cost,
			}
			alloc.Revenue += revenue

			total := res.ProductTotals[a.productID]
			total.Units += n
			total.Revenue += revenue
			total.Cost += cost
			total.Profit += revenue - cost
			res.ProductTotals[a.productID] = total
		}

		alloc.Cost = costing.Evaluate(units, plant).Cost
		alloc.Profit = alloc.Revenue - alloc.Cost
		if alloc.Capacity > 0 {
			alloc.CapacityUtilization = alloc.Units / alloc.Capacity * 100
		}
		res.PlantAllocations = append(res.PlantAllocations, alloc)

		res.TotalUnits += alloc.Units
		res.TotalCost += alloc.Cost
		res.TotalRevenue += alloc.Revenue
		res.TotalCapacity += alloc.Capacity
	}
	res.TotalProfit = res.TotalRevenue - res.TotalCost

	for _, product := range products {
		total := res.ProductTotals[product.ID]
		total.DemandMet = total.Units >= finite(product.MinProduction)-demandTolerance &&
			total.Units <= finite(product.Demand)+demandTolerance
		res.ProductTotals[product.ID] = total
	}
	return res
}
