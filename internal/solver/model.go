// Package solver defines a generic linear / mixed-integer program and a
// solver for it built on gonum's simplex.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInfeasible is returned when no assignment satisfies the constraints.
	ErrInfeasible = errors.New("solver: model is infeasible")
	// ErrUnbounded is returned when the objective can grow without limit.
	ErrUnbounded = errors.New("solver: model is unbounded")
	// ErrUnavailable is returned when no answer was produced in time.
	ErrUnavailable = errors.New("solver: solution unavailable")
)

// Constraint bounds a linear combination of variables: Min <= sum <= Max.
// Use math.Inf for an open side.
type Constraint struct {
	Name         string
	Min          float64
	Max          float64
	Coefficients map[string]float64
}

// AtMost returns a constraint with only an upper bound.
func AtMost(name string, max float64, coefficients map[string]float64) Constraint {
	return Constraint{Name: name, Min: math.Inf(-1), Max: max, Coefficients: coefficients}
}

// Between returns a constraint bounded on both sides.
func Between(name string, min, max float64, coefficients map[string]float64) Constraint {
	return Constraint{Name: name, Min: min, Max: max, Coefficients: coefficients}
}

// Model is a maximization problem over non-negative variables.
type Model struct {
	Variables   []string
	Integers    map[string]bool
	Objective   map[string]float64
	Constraints []Constraint
}

// AddVariable registers a variable with its objective coefficient.
func (m *Model) AddVariable(name string, objective float64, integer bool) {
	m.Variables = append(m.Variables, name)
	if m.Objective == nil {
		m.Objective = make(map[string]float64)
	}
	m.Objective[name] = objective
	if integer {
		if m.Integers == nil {
			m.Integers = make(map[string]bool)
		}
		m.Integers[name] = true
	}
}

// AddConstraint appends a constraint.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// Validate checks that every referenced variable is declared exactly once.
func (m Model) Validate() error {
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		if seen[v] {
			return fmt.Errorf("variable %q declared twice", v)
		}
		seen[v] = true
	}
	for v := range m.Objective {
		if !seen[v] {
			return fmt.Errorf("objective references unknown variable %q", v)
		}
	}
	for v := range m.Integers {
		if !seen[v] {
			return fmt.Errorf("integer set references unknown variable %q", v)
		}
	}
	for _, c := range m.Constraints {
		if math.IsNaN(c.Min) || math.IsNaN(c.Max) {
			return fmt.Errorf("constraint %q has a NaN bound", c.Name)
		}
		for v := range c.Coefficients {
			if !seen[v] {
				return fmt.Errorf("constraint %q references unknown variable %q", c.Name, v)
			}
		}
	}
	return nil
}

// Solution is a variable assignment and its objective value.
type Solution struct {
	Values    map[string]float64
	Objective float64
}

// Value returns the solved value of a variable, 0 if absent.
func (s Solution) Value(name string) float64 {
	return s.Values[name]
}

// Solver solves a Model. Implementations return ErrInfeasible, ErrUnbounded
// or ErrUnavailable (possibly wrapped) for the corresponding outcomes.
type Solver interface {
	Solve(ctx context.Context, m Model) (Solution, error)
}
