package backend

import "context"

// Status is the verdict of a Check call.
type Status int

const (
	StatusSat Status = iota
	StatusUnsat
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusSat:
		return "sat"
	case StatusUnsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Model is a concrete variable assignment returned by a successful Check.
type Model interface {
	// Int returns the value assigned to v.
	Int(v IntVar) int
	// Bool returns the value assigned to v.
	Bool(v BoolVar) bool
	// Eval evaluates an arbitrary IntTerm against this model, useful for
	// reading off an objective's value without having declared it as a
	// standalone variable.
	Eval(t IntTerm) int
}

// Priority selects the backend's built-in multi-objective policy for
// Optimize-mode solving.
type Priority int

const (
	PriorityLex Priority = iota
	PriorityBox
	PriorityPareto
)

// Backend is the external SMT solver interface the rcpsp core depends on
//: a black box exposing assert/check/model/push/pop,
// set_logic, minimize/maximize, and incremental optimize-check with
// priority modes. The core never reaches past this interface.
type Backend interface {
	DeclareInt(name string, lb, ub int) IntVar
	DeclareBool(name string) BoolVar

	// Assert adds t unconditionally to the current assertion set. Debug
	// mode instead uses AssertTracked so each assertion can be
	// retracted from the unsat core by name.
	Assert(t BoolTerm)

	// AssertTracked adds t guarded by a fresh tracking literal named
	// label, for use as a Check assumption; UnsatCore reports which
	// labels were jointly unsatisfiable.
	AssertTracked(label string, t BoolTerm)

	Push()
	Pop()

	// Check solves under the current assertion set plus the given
	// assumption labels (as produced by AssertTracked). ctx's deadline
	// bounds the call; cancellation must be cooperative.
	Check(ctx context.Context, assumptions ...string) (Status, error)

	// Model returns the satisfying assignment of the most recent sat
	// Check. Calling it after a non-sat Check is a programming error.
	Model() Model

	// UnsatCore returns the minimal subset of tracked assertion labels
	// whose conjunction is unsatisfiable, valid after the most recent
	// unsat Check.
	UnsatCore() []string

	SetLogic(logic string)
	SetParam(key string, value any)

	Minimize(t IntTerm)
	Maximize(t IntTerm)

	// CheckOptimize runs the backend's native multi-objective search
	// under the given priority policy, returning one solution per call;
	// repeated calls over a Pareto frontier yield successive
	// Pareto-optimal solutions until the frontier is exhausted (StatusUnsat).
	CheckOptimize(ctx context.Context, priority Priority) (Status, error)
}
