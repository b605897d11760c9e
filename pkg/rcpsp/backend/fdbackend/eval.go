// Package fdbackend is a concrete, in-process implementation of
// backend.Backend: a bounded finite-domain backtracking search over the
// IntTerm/BoolTerm vocabulary the rcpsp core builds. It stands in for an
// external SMT process that the core only ever sees as a black box, so
// the module is runnable end to end without vendoring a solver binary.
//
// The domain representation (bounded integer intervals, smallest-domain
// first ordering) and the overall shape of the search loop follow a
// classic finite-domain constraint solver (FDVariable/BitSet-style domains
// with a config-driven heuristic); the propagation algorithm here is a
// simpler forward-checking DFS rather than full AC-3 style fixed-point
// propagation, which is sufficient for the bounded, mostly-linear formulas
// the rcpsp encoder emits.
package fdbackend

import "github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"

// assignment is the partial variable assignment explored by the search.
type assignment struct {
	ints     map[int]int
	intSet   map[int]bool
	bools    map[int]bool
	boolSet  map[int]bool
}

func newAssignment() *assignment {
	return &assignment{
		ints:    make(map[int]int),
		intSet:  make(map[int]bool),
		bools:   make(map[int]bool),
		boolSet: make(map[int]bool),
	}
}

func (a *assignment) setInt(id, v int) {
	a.ints[id] = v
	a.intSet[id] = true
}

func (a *assignment) setBool(id int, v bool) {
	a.bools[id] = v
	a.boolSet[id] = true
}

// evalInt attempts to fully evaluate an integer term. ok is false if some
// referenced variable is not yet assigned.
func evalInt(t backend.IntTerm, a *assignment) (val int, ok bool) {
	switch term := t.(type) {
	case backend.IntConst:
		return int(term), true
	case backend.IntVar:
		if !a.intSet[term.ID] {
			return 0, false
		}
		return a.ints[term.ID], true
	case backend.Add:
		sum := 0
		for _, sub := range term.Terms {
			v, k := evalInt(sub, a)
			if !k {
				return 0, false
			}
			sum += v
		}
		return sum, true
	case backend.Sub:
		av, ok1 := evalInt(term.A, a)
		bv, ok2 := evalInt(term.B, a)
		if !ok1 || !ok2 {
			return 0, false
		}
		return av - bv, true
	case backend.MulConst:
		v, k := evalInt(term.Term, a)
		if !k {
			return 0, false
		}
		return term.K * v, true
	case backend.IntIte:
		cond, k := evalBool(term.Cond, a)
		if !k {
			return 0, false
		}
		if cond {
			return evalInt(term.Then, a)
		}
		return evalInt(term.Else, a)
	default:
		return 0, false
	}
}

// evalBool attempts to fully evaluate a boolean term, short-circuiting And
// / Or when a determining operand is already known even if others are not
// yet assigned (e.g. And is false as soon as one conjunct is false).
func evalBool(t backend.BoolTerm, a *assignment) (val bool, ok bool) {
	switch term := t.(type) {
	case backend.BoolConst:
		return bool(term), true
	case backend.BoolVar:
		if !a.boolSet[term.ID] {
			return false, false
		}
		return a.bools[term.ID], true
	case backend.Cmp:
		av, ok1 := evalInt(term.A, a)
		bv, ok2 := evalInt(term.B, a)
		if !ok1 || !ok2 {
			return false, false
		}
		switch term.Op {
		case backend.OpEq:
			return av == bv, true
		case backend.OpNe:
			return av != bv, true
		case backend.OpLt:
			return av < bv, true
		case backend.OpLe:
			return av <= bv, true
		case backend.OpGt:
			return av > bv, true
		case backend.OpGe:
			return av >= bv, true
		}
		return false, false
	case backend.And:
		allKnown := true
		for _, sub := range term.Terms {
			v, k := evalBool(sub, a)
			if k && !v {
				return false, true // short-circuit: one false conjunct
			}
			if !k {
				allKnown = false
			}
		}
		if !allKnown {
			return false, false
		}
		return true, true
	case backend.Or:
		allKnown := true
		for _, sub := range term.Terms {
			v, k := evalBool(sub, a)
			if k && v {
				return true, true // short-circuit: one true disjunct
			}
			if !k {
				allKnown = false
			}
		}
		if !allKnown {
			return false, false
		}
		return false, true
	case backend.Not:
		v, k := evalBool(term.Term, a)
		if !k {
			return false, false
		}
		return !v, true
	case backend.Implies:
		cond, k := evalBool(term.Cond, a)
		if k && !cond {
			return true, true // short-circuit: false antecedent
		}
		then, k2 := evalBool(term.Then, a)
		if k && k2 {
			return then, true
		}
		return false, false
	case backend.BoolIte:
		cond, k := evalBool(term.Cond, a)
		if !k {
			return false, false
		}
		if cond {
			return evalBool(term.Then, a)
		}
		return evalBool(term.Else, a)
	default:
		return false, false
	}
}

// intVars/boolVars collects the variable IDs a term transitively mentions.
func intVarsIn(t backend.IntTerm, out map[int]bool) {
	switch term := t.(type) {
	case backend.IntVar:
		out[term.ID] = true
	case backend.Add:
		for _, sub := range term.Terms {
			intVarsIn(sub, out)
		}
	case backend.Sub:
		intVarsIn(term.A, out)
		intVarsIn(term.B, out)
	case backend.MulConst:
		intVarsIn(term.Term, out)
	case backend.IntIte:
		boolVarsIn(term.Cond, make(map[int]bool), out)
		intVarsIn(term.Then, out)
		intVarsIn(term.Else, out)
	}
}

// boolVarsIn collects bool variable IDs into boolOut and, for any integer
// subterm encountered (e.g. inside a Cmp), its int variable IDs into
// intOut (may be nil if not needed).
func boolVarsIn(t backend.BoolTerm, boolOut map[int]bool, intOut map[int]bool) {
	switch term := t.(type) {
	case backend.BoolVar:
		boolOut[term.ID] = true
	case backend.Cmp:
		if intOut != nil {
			intVarsIn(term.A, intOut)
			intVarsIn(term.B, intOut)
		}
	case backend.And:
		for _, sub := range term.Terms {
			boolVarsIn(sub, boolOut, intOut)
		}
	case backend.Or:
		for _, sub := range term.Terms {
			boolVarsIn(sub, boolOut, intOut)
		}
	case backend.Not:
		boolVarsIn(term.Term, boolOut, intOut)
	case backend.Implies:
		boolVarsIn(term.Cond, boolOut, intOut)
		boolVarsIn(term.Then, boolOut, intOut)
	case backend.BoolIte:
		boolVarsIn(term.Cond, boolOut, intOut)
		boolVarsIn(term.Then, boolOut, intOut)
		boolVarsIn(term.Else, boolOut, intOut)
	}
}
