package rcpsp

import "testing"

// Xor(A before B, B before A) must pick exactly one order, never both and
// never neither — the flow-shop permutation idiom, shrunk to two tasks and
// one precedence pair for unit testing.
func TestXor_PicksExactlyOneOrder(t *testing.T) {
	p := NewProblem("xor-order")
	p.SetHorizon(10)

	a, err := p.NewFixedDurationTask("A", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(A): %v", err)
	}
	b, err := p.NewFixedDurationTask("B", 2)
	if err != nil {
		t.Fatalf("NewFixedDurationTask(B): %v", err)
	}

	forward := NewTaskPrecedence(a, b, PrecedenceLax, 0)
	backward := NewTaskPrecedence(b, a, PrecedenceLax, 0)
	p.AddConstraint(NewXor(forward, backward))

	sol := solveOrFail(t, p)

	recA, _ := sol.Task("A")
	recB, _ := sol.Task("B")

	aBeforeB := recA.End <= recB.Start
	bBeforeA := recB.End <= recA.Start
	if aBeforeB == bBeforeA {
		t.Fatalf("expected exactly one order, got A=[%d,%d) B=[%d,%d)",
			recA.Start, recA.End, recB.Start, recB.End)
	}
}

// And requires every child to hold: two precedences in the same direction
// both have to be satisfiable simultaneously.
func TestAnd_RequiresAllChildren(t *testing.T) {
	p := NewProblem("and-order")
	p.SetHorizon(20)

	a, _ := p.NewFixedDurationTask("A", 2)
	b, _ := p.NewFixedDurationTask("B", 2)
	c, _ := p.NewFixedDurationTask("C", 2)

	p.AddConstraint(NewAnd(
		NewTaskPrecedence(a, b, PrecedenceLax, 0),
		NewTaskPrecedence(b, c, PrecedenceLax, 0),
	))

	sol := solveOrFail(t, p)
	recA, _ := sol.Task("A")
	recB, _ := sol.Task("B")
	recC, _ := sol.Task("C")

	if recA.End > recB.Start {
		t.Fatalf("A=[%d,%d) does not precede B=[%d,%d)", recA.Start, recA.End, recB.Start, recB.End)
	}
	if recB.End > recC.Start {
		t.Fatalf("B=[%d,%d) does not precede C=[%d,%d)", recB.Start, recB.End, recC.Start, recC.End)
	}
}

// Not inverts a child: forbidding "A precedes B" forces B to start before
// A ends (the two tasks may overlap).
func TestNot_InvertsChild(t *testing.T) {
	p := NewProblem("not-order")
	p.SetHorizon(10)

	a, _ := p.NewFixedDurationTask("A", 2)
	b, _ := p.NewFixedDurationTask("B", 2)

	p.AddConstraint(NewNot(NewTaskPrecedence(a, b, PrecedenceLax, 0)))

	sol := solveOrFail(t, p)
	recA, _ := sol.Task("A")
	recB, _ := sol.Task("B")

	if recA.End <= recB.Start {
		t.Fatalf("A still precedes B: A=[%d,%d) B=[%d,%d)", recA.Start, recA.End, recB.Start, recB.End)
	}
}
