package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	defaultTolerance = 1e-10
	defaultMaxNodes  = 5000
	integralityTol   = 1e-6
	feasibilityTol   = 1e-7
	zeroTol          = 1e-9
)

// Simplex solves LP relaxations with gonum's simplex method and resolves the
// integer subset by depth-first branch and bound.
type Simplex struct {
	Tolerance float64
	MaxNodes  int
}

// NewSimplex returns a Simplex solver with default settings.
func NewSimplex() *Simplex {
	return &Simplex{Tolerance: defaultTolerance, MaxNodes: defaultMaxNodes}
}

// bound restricts a single variable during branching.
type bound struct {
	col   int
	lower bool
	value float64
}

type node struct {
	bounds []bound
}

// Solve maximizes m.Objective subject to m.Constraints with every variable >= 0.
func (s *Simplex) Solve(ctx context.Context, m Model) (Solution, error) {
	if err := m.Validate(); err != nil {
		return Solution{}, fmt.Errorf("validate model: %w", err)
	}
	for _, c := range m.Constraints {
		if c.Min > c.Max {
			return Solution{}, fmt.Errorf("%w: constraint %q has min %v above max %v", ErrInfeasible, c.Name, c.Min, c.Max)
		}
	}
	if len(m.Variables) == 0 {
		return solveEmpty(m)
	}

	p := newProblem(m)
	maxNodes := s.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}

	var (
		best     []float64
		bestObj  = math.Inf(-1)
		explored int
		failed   error
		stack    = []node{{}}
	)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return Solution{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if explored >= maxNodes {
			if best == nil {
				return Solution{}, fmt.Errorf("%w: node limit %d reached", ErrUnavailable, maxNodes)
			}
			break
		}
		explored++

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, x, err := p.relax(n.bounds, s.tolerance())
		switch {
		case errors.Is(err, ErrInfeasible):
			continue
		case err != nil && len(n.bounds) == 0:
			return Solution{}, err
		case err != nil:
			// A branch the simplex cannot solve is pruned like an infeasible one.
			failed = err
			continue
		}
		if best != nil && obj <= bestObj+integralityTol {
			continue
		}

		col, frac := p.fractional(x)
		if col < 0 {
			best, bestObj = x, obj
			continue
		}
		// Explore the rounded-up branch first.
		stack = append(stack,
			node{bounds: appendBound(n.bounds, bound{col: col, value: math.Floor(frac)})},
			node{bounds: appendBound(n.bounds, bound{col: col, lower: true, value: math.Ceil(frac)})},
		)
	}
	if best == nil {
		if failed != nil {
			return Solution{}, failed
		}
		return Solution{}, ErrInfeasible
	}
	return p.solution(best, bestObj), nil
}

func (s *Simplex) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return defaultTolerance
}

func appendBound(bounds []bound, b bound) []bound {
	out := make([]bound, len(bounds), len(bounds)+1)
	copy(out, bounds)
	return append(out, b)
}

// solveEmpty handles a model without variables: every sum is zero.
func solveEmpty(m Model) (Solution, error) {
	for _, c := range m.Constraints {
		if c.Min > 0 || c.Max < 0 {
			return Solution{}, fmt.Errorf("%w: constraint %q cannot be met without variables", ErrInfeasible, c.Name)
		}
	}
	return Solution{Values: map[string]float64{}}, nil
}

// row is one equality of the standard form before slack columns are added.
type row struct {
	coeffs []float64
	rhs    float64
	// slack is +1 for <=, -1 for >=.
	slack float64
}

type problem struct {
	names   []string
	integer []bool
	c       []float64
	rows    []row
}

func newProblem(m Model) *problem {
	index := make(map[string]int, len(m.Variables))
	for i, v := range m.Variables {
		index[v] = i
	}
	p := &problem{
		names:   m.Variables,
		integer: make([]bool, len(m.Variables)),
		c:       make([]float64, len(m.Variables)),
	}
	for i, v := range m.Variables {
		// gonum minimizes.
		p.c[i] = -m.Objective[v]
		p.integer[i] = m.Integers[v]
	}
	for _, con := range m.Constraints {
		coeffs := make([]float64, len(m.Variables))
		nonNegative := true
		for v, a := range con.Coefficients {
			coeffs[index[v]] += a
			if a < 0 {
				nonNegative = false
			}
		}
		if !math.IsInf(con.Max, 1) {
			p.rows = append(p.rows, row{coeffs: coeffs, rhs: con.Max, slack: 1})
		}
		// A zero lower bound on non-negative terms is implied by x >= 0.
		if !math.IsInf(con.Min, -1) && (con.Min > 0 || !nonNegative) {
			p.rows = append(p.rows, row{coeffs: coeffs, rhs: con.Min, slack: -1})
		}
	}
	return p
}

// relax solves the LP relaxation under the given branching bounds and returns
// the maximized objective and the variable values.
func (p *problem) relax(bounds []bound, tol float64) (float64, []float64, error) {
	nv := len(p.names)
	lo := make([]float64, nv)
	hi := make([]float64, nv)
	for j := range hi {
		hi[j] = math.Inf(1)
	}
	for _, b := range bounds {
		if b.lower {
			lo[b.col] = math.Max(lo[b.col], b.value)
		} else {
			hi[b.col] = math.Min(hi[b.col], b.value)
		}
	}
	active, err := p.presolve(lo, hi)
	if err != nil {
		return 0, nil, err
	}

	// Every column is shifted to x = lo + x'. Fixed columns leave the program.
	x := slices.Clone(lo)
	obj := 0.0
	for j := range nv {
		obj -= p.c[j] * lo[j]
	}
	free := make([]int, 0, nv)
	for j := range nv {
		switch {
		case hi[j]-lo[j] <= zeroTol:
		case !math.IsInf(hi[j], 1) || p.touched(active, j):
			free = append(free, j)
		case p.c[j] < 0:
			return 0, nil, ErrUnbounded
		}
	}
	if len(free) == 0 {
		return obj, x, nil
	}

	var rows []row
	for i, r := range p.rows {
		if !active[i] {
			continue
		}
		rhs := r.rhs
		for j, a := range r.coeffs {
			rhs -= a * lo[j]
		}
		coeffs := make([]float64, len(free))
		for k, j := range free {
			coeffs[k] = r.coeffs[j]
		}
		rows = append(rows, row{coeffs: coeffs, rhs: rhs, slack: r.slack})
	}
	for k, j := range free {
		if math.IsInf(hi[j], 1) {
			continue
		}
		coeffs := make([]float64, len(free))
		coeffs[k] = 1
		rows = append(rows, row{coeffs: coeffs, rhs: hi[j] - lo[j], slack: 1})
	}

	// Every row gets its own slack column, so A always has full row rank.
	nf := len(free)
	a := mat.NewDense(len(rows), nf+len(rows), nil)
	b := make([]float64, len(rows))
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for k, v := range r.coeffs {
			a.Set(i, k, sign*v)
		}
		a.Set(i, nf+i, sign*r.slack)
		b[i] = sign * r.rhs
	}
	c := make([]float64, nf+len(rows))
	for k, j := range free {
		c[k] = p.c[j]
	}

	optF, xs, err := lp.Simplex(c, a, b, tol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return 0, nil, ErrUnbounded
	case err != nil:
		return 0, nil, fmt.Errorf("%w: simplex: %v", ErrUnavailable, err)
	}
	for k, j := range free {
		x[j] += xs[k]
	}
	return obj - optF, x, nil
}

// presolve folds rows that reduce to a single unfixed column into that
// column's bounds, tightening lo and hi in place. It reports which rows are
// left for the simplex.
func (p *problem) presolve(lo, hi []float64) ([]bool, error) {
	for j := range lo {
		if err := p.clamp(lo, hi, j); err != nil {
			return nil, err
		}
	}
	active := make([]bool, len(p.rows))
	for i := range active {
		active[i] = true
	}
	for changed := true; changed; {
		changed = false
		for i, r := range p.rows {
			if !active[i] {
				continue
			}
			rhs, col, n := r.rhs, -1, 0
			for j, a := range r.coeffs {
				switch {
				case a == 0:
				case hi[j]-lo[j] <= zeroTol:
					rhs -= a * lo[j]
				default:
					col, n = j, n+1
				}
			}
			if n > 1 {
				continue
			}
			active[i], changed = false, true
			if n == 0 {
				if (r.slack > 0 && rhs < -feasibilityTol) || (r.slack < 0 && rhs > feasibilityTol) {
					return nil, ErrInfeasible
				}
				continue
			}
			a := r.coeffs[col]
			if (r.slack > 0) == (a > 0) {
				hi[col] = math.Min(hi[col], rhs/a)
			} else {
				lo[col] = math.Max(lo[col], rhs/a)
			}
			if err := p.clamp(lo, hi, col); err != nil {
				return nil, err
			}
		}
	}
	return active, nil
}

// clamp rounds integer bounds inward and rejects crossed bounds.
func (p *problem) clamp(lo, hi []float64, j int) error {
	if p.integer[j] {
		lo[j] = math.Ceil(lo[j] - integralityTol)
		if !math.IsInf(hi[j], 1) {
			hi[j] = math.Floor(hi[j] + integralityTol)
		}
	}
	if lo[j] > hi[j]+feasibilityTol {
		return ErrInfeasible
	}
	if hi[j] < lo[j] {
		hi[j] = lo[j]
	}
	return nil
}

func (p *problem) touched(active []bool, col int) bool {
	for i, r := range p.rows {
		if active[i] && r.coeffs[col] != 0 {
			return true
		}
	}
	return false
}

// fractional returns the first integer variable with a fractional value.
func (p *problem) fractional(x []float64) (int, float64) {
	for col, integer := range p.integer {
		if !integer {
			continue
		}
		v := x[col]
		if math.Abs(v-math.Round(v)) > integralityTol {
			return col, v
		}
	}
	return -1, 0
}

func (p *problem) solution(x []float64, obj float64) Solution {
	values := make(map[string]float64, len(p.names))
	for i, name := range p.names {
		v := x[i]
		if p.integer[i] {
			v = math.Round(v)
		}
		if math.Abs(v) < zeroTol {
			v = 0
		}
		values[name] = v
	}
	return Solution{Values: values, Objective: obj}
}
