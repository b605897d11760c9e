package rcpsp

import (
	"context"
	"testing"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend/fdbackend"
)

// A Worker (capacity 1) hosting two tasks must not let them overlap, even
// with no explicit TasksDontOverlap constraint.
func TestWorker_PreventsOverlap(t *testing.T) {
	p := NewProblem("worker-capacity")
	p.SetHorizon(10)

	w, err := p.NewWorker("W", 1)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	a, err := p.NewFixedDurationTask("A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(A): %v", err)
	}
	b, err := p.NewFixedDurationTask("B", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(B): %v", err)
	}
	a.RequireResource(w)
	b.RequireResource(w)

	sol := solveOrFail(t, p)
	recA, _ := sol.Task("A")
	recB, _ := sol.Task("B")

	overlap := recA.Start < recB.End && recB.Start < recA.End
	if overlap {
		t.Fatalf("A=[%d,%d) and B=[%d,%d) overlap on a capacity-1 worker",
			recA.Start, recA.End, recB.Start, recB.End)
	}
}

// Pinning both tasks to the same window on a capacity-1 worker must be
// unsatisfiable.
func TestWorker_OverlapForcedIsUnsatisfiable(t *testing.T) {
	p := NewProblem("worker-unsat")
	p.SetHorizon(10)

	w, err := p.NewWorker("W", 1)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	a, err := p.NewFixedDurationTask("A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(A): %v", err)
	}
	b, err := p.NewFixedDurationTask("B", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(B): %v", err)
	}
	a.RequireResource(w)
	b.RequireResource(w)
	p.AddConstraint(NewTaskStartAt(a, 0))
	p.AddConstraint(NewTaskStartAt(b, 0))

	be := fdbackend.New()
	solver := NewSolver(p, be, DefaultOptions())
	_, err = solver.Solve(context.Background())
	if err == nil {
		t.Fatalf("Solve succeeded, want Unsatisfiable error")
	}
	if !IsUnsatisfiable(err) {
		t.Fatalf("Solve error = %v, want IsUnsatisfiable", err)
	}
}
