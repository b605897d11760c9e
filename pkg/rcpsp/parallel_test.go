package rcpsp

import (
	"context"
	"testing"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend/fdbackend"
)

// A minimal makespan problem, optimized once per ParallelStrategy, exercises
// both internal/parallel pool implementations through the same
// minimizeOneParallel code path.
func newParallelMakespanProblem(t *testing.T) *Problem {
	t.Helper()
	p := NewProblem("parallel-strategy")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 3)
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
	return p
}

func TestSolver_ParallelStrategyShared(t *testing.T) {
	p := newParallelMakespanProblem(t)
	opts := DefaultOptions()
	opts.Optimizer = OptimizerOptimize
	opts.Parallel = true
	opts.ParallelStrategy = ParallelShared

	solver := NewSolver(p, fdbackend.New(), opts)
	sol, err := solver.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got, ok := sol.Indicator("makespan"); !ok || got != 3 {
		t.Fatalf("makespan = %d, ok=%v, want 3", got, ok)
	}
}

func TestSolver_ParallelStrategyWorkStealing(t *testing.T) {
	p := newParallelMakespanProblem(t)
	opts := DefaultOptions()
	opts.Optimizer = OptimizerOptimize
	opts.Parallel = true
	opts.ParallelStrategy = ParallelWorkStealing

	solver := NewSolver(p, fdbackend.New(), opts)
	sol, err := solver.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got, ok := sol.Indicator("makespan"); !ok || got != 3 {
		t.Fatalf("makespan = %d, ok=%v, want 3", got, ok)
	}
}
