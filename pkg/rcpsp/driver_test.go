package rcpsp

import (
	"context"
	"testing"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend/fdbackend"
)

// checkFailAfter wraps fdbackend.Backend so Check fails with a fixed error
// starting on its (failAfter+1)th call, letting tests exercise a driver
// error path at a specific point in the incremental-bisection loop without
// racing real wall-clock deadlines.
type checkFailAfter struct {
	*fdbackend.Backend
	calls     int
	failAfter int
	err       error
}

func (b *checkFailAfter) Check(ctx context.Context, assumptions ...string) (backend.Status, error) {
	b.calls++
	if b.calls > b.failAfter {
		return backend.StatusUnknown, b.err
	}
	return b.Backend.Check(ctx, assumptions...)
}

// Stats accumulates at least one checkedCheck call per Solve, with a
// non-negative total check time.
func TestSolver_StatsTracksCheckCalls(t *testing.T) {
	p := NewProblem("stats")
	p.SetHorizon(5)

	if _, err := p.NewFixedDurationTask("A", 2); err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}

	be := fdbackend.New()
	solver := NewSolver(p, be, DefaultOptions())
	if _, err := solver.Solve(context.Background()); err != nil {
		t.Fatalf("Solve: %v", err)
	}

	stats := solver.Stats()
	if stats.CheckCalls < 1 {
		t.Fatalf("CheckCalls = %d, want >= 1", stats.CheckCalls)
	}
	if stats.TotalCheckTime < 0 {
		t.Fatalf("TotalCheckTime = %v, want non-negative", stats.TotalCheckTime)
	}
}

// A deadline-exceeded error on the very first Check call (no incumbent
// yet, no objectives) must surface as KindTimeout, not KindBackendFailure
// — the kind shouldn't depend on which call site observed it.
func TestSolver_DeadlineExceededIsTimeoutOnFirstCheck(t *testing.T) {
	p := NewProblem("deadline-first-check")
	p.SetHorizon(5)

	if _, err := p.NewFixedDurationTask("A", 2); err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}

	be := &checkFailAfter{Backend: fdbackend.New(), failAfter: 0, err: context.DeadlineExceeded}
	solver := NewSolver(p, be, DefaultOptions())

	_, err := solver.Solve(context.Background())
	if err == nil {
		t.Fatalf("Solve: want an error, got nil")
	}
	if !IsTimeout(err) {
		t.Fatalf("Solve error = %v, want IsTimeout(err) == true", err)
	}
}

// The same holds for the mid-loop incremental-bisection check once an
// incumbent has already been found: a deadline-exceeded error there is
// still KindTimeout, and the incumbent found so far is still returned.
func TestSolver_DeadlineExceededIsTimeoutMidBisection(t *testing.T) {
	p := NewProblem("deadline-mid-bisection")
	p.SetHorizon(5)

	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	makespan, err := p.NewMakespan("makespan", []*Task{a})
	if err != nil {
		t.Fatalf("NewMakespan: %v", err)
	}
	if _, err := p.NewObjective("makespan", makespan, Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	// The incremental loop issues one Check before the bisection loop
	// starts (establishing the incumbent) and one per tightening
	// iteration; failing from the second call onward guarantees the
	// incumbent is already set when the error hits.
	be := &checkFailAfter{Backend: fdbackend.New(), failAfter: 1, err: context.DeadlineExceeded}
	solver := NewSolver(p, be, DefaultOptions())

	sol, err := solver.Solve(context.Background())
	if err == nil {
		t.Fatalf("Solve: want an error, got nil")
	}
	if !IsTimeout(err) {
		t.Fatalf("Solve error = %v, want IsTimeout(err) == true", err)
	}
	if sol == nil {
		t.Fatalf("Solve: want a partial incumbent solution alongside the timeout error, got nil")
	}
	if sol.Optimal() {
		t.Fatalf("Solve: incumbent returned alongside a timeout should not be marked optimal")
	}
}
