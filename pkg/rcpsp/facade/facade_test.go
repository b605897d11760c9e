package facade

import (
	"context"
	"strings"
	"testing"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp"
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend/fdbackend"
)

func TestNewSchedule_CopiesTasksAndIndicators(t *testing.T) {
	p := rcpsp.NewProblem("facade-demo")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	b, err := p.NewFixedDurationTask("B", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask: %v", err)
	}
	p.AddConstraint(rcpsp.NewTaskPrecedence(a, b, rcpsp.PrecedenceLax, 0))

	makespan, err := p.NewMakespan("makespan", []*rcpsp.Task{a, b})
	if err != nil {
		t.Fatalf("NewMakespan: %v", err)
	}
	if _, err := p.NewObjective("makespan", makespan, rcpsp.Minimize, 1); err != nil {
		t.Fatalf("NewObjective: %v", err)
	}

	be := fdbackend.New()
	solver := rcpsp.NewSolver(p, be, rcpsp.DefaultOptions())
	sol, err := solver.Solve(context.Background())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	sch := NewSchedule("facade-demo", sol)
	if sch.Problem != "facade-demo" {
		t.Fatalf("Problem = %q, want facade-demo", sch.Problem)
	}
	if len(sch.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(sch.Tasks))
	}
	if _, ok := sch.Tasks["A"]; !ok {
		t.Fatalf("Tasks missing entry for A")
	}
	if _, ok := sch.Indicators["makespan"]; !ok {
		t.Fatalf("Indicators missing entry for makespan")
	}

	var sb strings.Builder
	if err := sch.WriteYAML(&sb); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(sb.String(), "problem: facade-demo") {
		t.Fatalf("YAML output missing problem field:\n%s", sb.String())
	}
}
