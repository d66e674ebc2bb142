package solver

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplex_SolvesLinearProgram(t *testing.T) {
	var m Model
	m.AddVariable("x", 3, false)
	m.AddVariable("y", 2, false)
	m.AddConstraint(AtMost("c1", 4, map[string]float64{"x": 1, "y": 1}))
	m.AddConstraint(AtMost("c2", 6, map[string]float64{"x": 1, "y": 3}))
	m.AddConstraint(AtMost("c3", 3, map[string]float64{"x": 1}))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 3.0, sol.Value("x"), 1e-7)
	assert.InDelta(t, 1.0, sol.Value("y"), 1e-7)
	assert.InDelta(t, 11.0, sol.Objective, 1e-7)
}

func TestSimplex_HonoursLowerBounds(t *testing.T) {
	var m Model
	m.AddVariable("x", -1, false)
	m.AddVariable("y", -2, false)
	m.AddConstraint(Between("demand", 5, 10, map[string]float64{"x": 1, "y": 1}))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 5.0, sol.Value("x"), 1e-7)
	assert.InDelta(t, 0.0, sol.Value("y"), 1e-7)
	assert.InDelta(t, -5.0, sol.Objective, 1e-7)
}

func TestSimplex_Infeasible(t *testing.T) {
	tests := []struct {
		name        string
		constraints []Constraint
	}{
		{
			name: "conflicting rows",
			constraints: []Constraint{
				Between("floor", 5, math.Inf(1), map[string]float64{"x": 1}),
				AtMost("ceiling", 3, map[string]float64{"x": 1}),
			},
		},
		{
			name:        "min above max",
			constraints: []Constraint{Between("demand", 10, 5, map[string]float64{"x": 1})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Model
			m.AddVariable("x", 1, false)
			for _, c := range tt.constraints {
				m.AddConstraint(c)
			}

			_, err := NewSimplex().Solve(context.Background(), m)

			assert.ErrorIs(t, err, ErrInfeasible)
		})
	}
}

func TestSimplex_Unbounded(t *testing.T) {
	var m Model
	m.AddVariable("x", 1, false)
	m.AddConstraint(Between("floor", 1, math.Inf(1), map[string]float64{"x": 1}))

	_, err := NewSimplex().Solve(context.Background(), m)

	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSimplex_UnconstrainedVariableStaysAtZero(t *testing.T) {
	var m Model
	m.AddVariable("free", -4, false)
	m.AddVariable("x", 2, false)
	m.AddConstraint(AtMost("cap", 7, map[string]float64{"x": 1}))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, 0.0, sol.Value("free"))
	assert.InDelta(t, 7.0, sol.Value("x"), 1e-7)
}

func TestSimplex_BranchAndBound(t *testing.T) {
	var m Model
	m.AddVariable("x", 1, true)
	m.AddVariable("y", 1, true)
	m.AddConstraint(AtMost("pair", 3, map[string]float64{"x": 2, "y": 2}))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 1.0, sol.Objective, 1e-7)
	assert.Equal(t, 1.0, sol.Value("x")+sol.Value("y"))
}

func TestSimplex_SetupBinary(t *testing.T) {
	build := func(price float64) Model {
		var m Model
		m.AddVariable("x", price, false)
		m.AddVariable("s", -50, true)
		m.AddConstraint(AtMost("capacity", 100, map[string]float64{"x": 1}))
		m.AddConstraint(AtMost("link", 0, map[string]float64{"x": 1, "s": -100}))
		m.AddConstraint(AtMost("binary", 1, map[string]float64{"s": 1}))
		return m
	}

	sol, err := NewSimplex().Solve(context.Background(), build(10))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, sol.Value("x"), 1e-6)
	assert.Equal(t, 1.0, sol.Value("s"))
	assert.InDelta(t, 950.0, sol.Objective, 1e-6)

	sol, err = NewSimplex().Solve(context.Background(), build(0.4))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sol.Value("x"), 1e-6)
	assert.Equal(t, 0.0, sol.Value("s"))
}

func TestSimplex_SeveralSetupBinaries(t *testing.T) {
	var m Model
	caps := map[string]float64{"a": 174, "c": 879, "d": 1971}
	margins := map[string]float64{"a": 16.7, "c": -9, "d": 16.9}
	setups := map[string]float64{"a": 40, "c": 70, "d": 120}
	row := map[string]float64{}
	for _, plant := range []string{"a", "c", "d"} {
		x, s := "x"+plant, "s"+plant
		m.AddVariable(x, margins[plant], false)
		m.AddVariable(s, -setups[plant], true)
		m.AddConstraint(AtMost("cap"+plant, caps[plant], map[string]float64{x: 1}))
		m.AddConstraint(AtMost("link"+plant, 0, map[string]float64{x: 1, s: -caps[plant]}))
		m.AddConstraint(AtMost("binary"+plant, 1, map[string]float64{s: 1}))
		row[x] = 1
	}
	m.AddConstraint(Between("demand", 15, 347, row))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 347.0, sol.Value("xd"), 1e-6)
	assert.Equal(t, 1.0, sol.Value("sd"))
	assert.Zero(t, sol.Value("xa"))
	assert.Zero(t, sol.Value("sa"))
	assert.Zero(t, sol.Value("sc"))
	assert.InDelta(t, 347*16.9-120, sol.Objective, 1e-6)
}

func TestSimplex_FixedVariablesLeaveTheProgram(t *testing.T) {
	var m Model
	m.AddVariable("x", 2, false)
	m.AddVariable("y", 1, false)
	m.AddConstraint(Between("pin", 3, 3, map[string]float64{"x": 1}))
	m.AddConstraint(AtMost("sum", 10, map[string]float64{"x": 1, "y": 1}))

	sol, err := NewSimplex().Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 3.0, sol.Value("x"), 1e-9)
	assert.InDelta(t, 7.0, sol.Value("y"), 1e-7)
	assert.InDelta(t, 13.0, sol.Objective, 1e-7)
}

func TestSimplex_AllVariablesFixed(t *testing.T) {
	var m Model
	m.AddVariable("x", 2, false)
	m.AddConstraint(Between("pin", 4, 4, map[string]float64{"x": 1}))
	m.AddConstraint(AtMost("roof", 3, map[string]float64{"x": 2}))

	_, err := NewSimplex().Solve(context.Background(), m)
	assert.ErrorIs(t, err, ErrInfeasible)

	m.Constraints[1] = AtMost("roof", 9, map[string]float64{"x": 2})
	sol, err := NewSimplex().Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 4.0, sol.Value("x"))
	assert.Equal(t, 8.0, sol.Objective)
}

func TestSimplex_EmptyModel(t *testing.T) {
	var m Model
	m.AddConstraint(Between("demand", 0, 10, nil))
	sol, err := NewSimplex().Solve(context.Background(), m)
	require.NoError(t, err)
	assert.Empty(t, sol.Values)

	m.AddConstraint(Between("min", 1, 10, nil))
	_, err = NewSimplex().Solve(context.Background(), m)
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestSimplex_RejectsUnknownVariables(t *testing.T) {
	var m Model
	m.AddVariable("x", 1, false)
	m.AddConstraint(AtMost("c", 1, map[string]float64{"y": 1}))

	_, err := NewSimplex().Solve(context.Background(), m)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInfeasible))
}

func TestSimplex_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var m Model
	m.AddVariable("x", 1, false)
	m.AddConstraint(AtMost("c", 1, map[string]float64{"x": 1}))

	_, err := NewSimplex().Solve(ctx, m)

	assert.ErrorIs(t, err, ErrUnavailable)
}

type blockingSolver struct {
	release chan struct{}
}

func (b blockingSolver) Solve(context.Context, Model) (Solution, error) {
	<-b.release
	return Solution{}, nil
}

func TestWithTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, err := WithTimeout(blockingSolver{release: release}, 20*time.Millisecond).Solve(context.Background(), Model{})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithTimeout_PassesThroughResult(t *testing.T) {
	var m Model
	m.AddVariable("x", 1, false)
	m.AddConstraint(AtMost("c", 2, map[string]float64{"x": 1}))

	sol, err := WithTimeout(NewSimplex(), time.Second).Solve(context.Background(), m)

	require.NoError(t, err)
	assert.InDelta(t, 2.0, sol.Value("x"), 1e-7)

	s := NewSimplex()
	assert.Same(t, s, WithTimeout(s, 0))
}
