package rcpsp

import "testing"

// NewTardiness sums max(0, end - due_date) over tasks with a due date;
// pinning the task's start makes the expected lateness exact.
func TestTardiness_ExactValueWhenLate(t *testing.T) {
	p := NewProblem("tardiness")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	a.SetDueDate(2, false)
	p.AddConstraint(NewTaskStartAt(a, 0))

	tard, err := p.NewTardiness("tardiness", []*Task{a})
	if err != nil {
		t.Fatalf("NewTardiness: %v", err)
	}
	if _, err := p.NewObjective("tardiness", tard, Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	sol := solveOrFail(t, p)
	got, ok := sol.Indicator("tardiness")
	if !ok {
		t.Fatalf("indicator tardiness missing from solution")
	}
	// A starts at 0, ends at 3; due date 2 => lateness = 1.
	if got != 1 {
		t.Fatalf("tardiness = %d, want 1", got)
	}
}

// A task with no due date contributes nothing to Tardiness.
func TestTardiness_IgnoresTasksWithoutDueDate(t *testing.T) {
	p := NewProblem("tardiness-no-due")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 3)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	p.AddConstraint(NewTaskStartAt(a, 5))

	tard, err := p.NewTardiness("tardiness", []*Task{a})
	if err != nil {
		t.Fatalf("NewTardiness: %v", err)
	}
	if _, err := p.NewObjective("tardiness", tard, Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	sol := solveOrFail(t, p)
	got, ok := sol.Indicator("tardiness")
	if !ok {
		t.Fatalf("indicator tardiness missing from solution")
	}
	if got != 0 {
		t.Fatalf("tardiness = %d, want 0 (no due date set)", got)
	}
}
