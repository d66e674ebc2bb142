package solver

import (
	"context"
	"fmt"
	"time"
)

type timeoutSolver struct {
	next    Solver
	timeout time.Duration
}

// WithTimeout runs every solve of next in its own goroutine and gives up after
// d, reporting ErrUnavailable. A non-positive d disables the limit.
func WithTimeout(next Solver, d time.Duration) Solver {
	if d <= 0 {
		return next
	}
	return &timeoutSolver{next: next, timeout: d}
}

type outcome struct {
	solution Solution
	err      error
}

func (t *timeoutSolver) Solve(ctx context.Context, m Model) (Solution, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		sol, err := t.next.Solve(ctx, m)
		done <- outcome{solution: sol, err: err}
	}()

	select {
	case o := <-done:
		return o.solution, o.err
	case <-ctx.Done():
		return Solution{}, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}
