package rcpsp

import "testing"

// NewResourceCalendar is sugar over NewResourceUnavailable: a task confined
// to a worker closed for [0,5) must start at or after 5.
func TestResourceCalendar_PushesTaskPastClosedWindow(t *testing.T) {
	p := NewProblem("calendar")
	p.SetHorizon(10)

	w, err := p.NewWorker("W", 1)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	a.RequireResource(w)

	if _, err := p.NewResourceCalendar(w, []TimeInterval{{Lo: 0, Hi: 5}}); err != nil {
		t.Fatalf("NewResourceCalendar: %v", err)
	}

	makespan, err := p.NewMakespan("makespan", []*Task{a})
	if err != nil {
		t.Fatalf("NewMakespan: %v", err)
	}
	if _, err := p.NewObjective("makespan", makespan, Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	sol := solveOrFail(t, p)
	recA, ok := sol.Task("A")
	if !ok {
		t.Fatalf("task A missing from solution")
	}
	if recA.Start < 5 {
		t.Fatalf("A.Start = %d, want >= 5 (worker closed until 5)", recA.Start)
	}
}

// ResourceTasksDistance restricted to two disjoint intervals must honor
// both: a pair that overlaps only the second interval still gets the
// distance applied, not just a pair overlapping the first.
func TestResourceTasksDistance_HonorsEveryInterval(t *testing.T) {
	p := NewProblem("distance-multi-interval")
	p.SetHorizon(20)

	w, err := p.NewCumulativeWorker("R", 2, 1)
	if err != nil {
		t.Fatalf("NewCumulativeWorker: %v", err)
	}
	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	a.RequireResource(w)
	p.AddConstraint(NewTaskStartAt(a, 0))

	b, err := p.NewFixedDurationTask("B", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	b.RequireResource(w)

	// The first interval [100,105) is far from where either task can land
	// within the horizon, so it never gates the distance constraint on its
	// own; only the second interval [0,10), which both tasks overlap,
	// should. A buggy implementation that only ever consults Intervals[0]
	// would never apply the distance at all here.
	d := p.NewResourceTasksDistance(w, 5, []TimeInterval{{Lo: 100, Hi: 105}, {Lo: 0, Hi: 10}}, DistanceAtLeast)
	p.AddConstraint(d)

	makespan, err := p.NewMakespan("makespan", []*Task{b})
	if err != nil {
		t.Fatalf("NewMakespan: %v", err)
	}
	if _, err := p.NewObjective("makespan", makespan, Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	sol := solveOrFail(t, p)
	recB, ok := sol.Task("B")
	if !ok {
		t.Fatalf("task B missing from solution")
	}
	// A ends at 2; with the distance constraint honored B cannot start
	// before 2+5=7 even though the cumulative worker's capacity of 2 would
	// otherwise let it start as early as 0.
	if recB.Start < 7 {
		t.Fatalf("B.Start = %d, want >= 7 (distance constraint from the second interval)", recB.Start)
	}
}
