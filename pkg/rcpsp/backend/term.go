// Package backend defines the SMT backend interface the rcpsp core
// compiles against plus the term vocabulary used to build
// assertions: declare_int/declare_bool, assert, push/pop, check, model,
// set_logic, minimize/maximize, incremental optimize-check, set_param.
//
// The core never talks to a concrete SMT process directly; it only ever
// builds IntTerm/BoolTerm values and hands them to a Backend. This package
// also ships one concrete, in-process Backend (see the fdbackend
// subpackage) so the module is runnable without an external solver binary.
package backend

import "fmt"

// IntTerm is an integer-valued term over declared IntVars and constants.
type IntTerm interface {
	isIntTerm()
	String() string
}

// BoolTerm is a boolean-valued term over declared BoolVars, comparisons of
// IntTerms, and the first-order combinators.
type BoolTerm interface {
	isBoolTerm()
	String() string
}

// IntVar is a handle to a declared integer variable.
type IntVar struct {
	Name string
	ID   int
}

func (IntVar) isIntTerm() {}
func (v IntVar) String() string { return v.Name }

// BoolVar is a handle to a declared boolean variable.
type BoolVar struct {
	Name string
	ID   int
}

func (BoolVar) isBoolTerm() {}
func (v BoolVar) String() string { return v.Name }

// IntConst is a literal integer.
type IntConst int

func (IntConst) isIntTerm()        {}
func (c IntConst) String() string { return fmt.Sprintf("%d", int(c)) }

// BoolConst is a literal boolean.
type BoolConst bool

func (BoolConst) isBoolTerm()        {}
func (c BoolConst) String() string { return fmt.Sprintf("%t", bool(c)) }

// Add is the sum of one or more integer terms.
type Add struct{ Terms []IntTerm }

func (Add) isIntTerm() {}
func (a Add) String() string { return joinTerms("+", a.Terms) }

// Sub is A - B.
type Sub struct{ A, B IntTerm }

func (Sub) isIntTerm() {}
func (s Sub) String() string { return fmt.Sprintf("(%s - %s)", s.A, s.B) }

// MulConst is K * Term (linear arithmetic only: one side must be a
// compile-time constant — nonlinear cost models are out of scope).
type MulConst struct {
	K    int
	Term IntTerm
}

func (MulConst) isIntTerm() {}
func (m MulConst) String() string { return fmt.Sprintf("(%d * %s)", m.K, m.Term) }

// IntIte is if Cond then Then else Else, all integer-typed.
type IntIte struct {
	Cond       BoolTerm
	Then, Else IntTerm
}

func (IntIte) isIntTerm() {}
func (i IntIte) String() string {
	return fmt.Sprintf("(ite %s %s %s)", i.Cond, i.Then, i.Else)
}

// CmpOp is a comparison operator between two integer terms.
type CmpOp int

const (
	OpEq CmpOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op CmpOp) String() string {
	return [...]string{"=", "!=", "<", "<=", ">", ">="}[op]
}

// Cmp is A <op> B.
type Cmp struct {
	Op   CmpOp
	A, B IntTerm
}

func (Cmp) isBoolTerm() {}
func (c Cmp) String() string { return fmt.Sprintf("(%s %s %s)", c.A, c.Op, c.B) }

// And is the conjunction of zero or more boolean terms (true if empty).
type And struct{ Terms []BoolTerm }

func (And) isBoolTerm() {}
func (a And) String() string { return joinBoolTerms("&&", a.Terms) }

// Or is the disjunction of zero or more boolean terms (false if empty).
type Or struct{ Terms []BoolTerm }

func (Or) isBoolTerm() {}
func (o Or) String() string { return joinBoolTerms("||", o.Terms) }

// Not negates a boolean term.
type Not struct{ Term BoolTerm }

func (Not) isBoolTerm() {}
func (n Not) String() string { return fmt.Sprintf("!%s", n.Term) }

// Implies is Cond -> Then.
type Implies struct{ Cond, Then BoolTerm }

func (Implies) isBoolTerm() {}
func (i Implies) String() string { return fmt.Sprintf("(%s -> %s)", i.Cond, i.Then) }

// BoolIte is if Cond then Then else Else, all boolean-typed.
type BoolIte struct {
	Cond, Then, Else BoolTerm
}

func (BoolIte) isBoolTerm() {}
func (i BoolIte) String() string {
	return fmt.Sprintf("(ite %s %s %s)", i.Cond, i.Then, i.Else)
}

func joinTerms(op string, terms []IntTerm) string {
	s := "("
	for i, t := range terms {
		if i > 0 {
			s += " " + op + " "
		}
		s += t.String()
	}
	return s + ")"
}

func joinBoolTerms(op string, terms []BoolTerm) string {
	s := "("
	for i, t := range terms {
		if i > 0 {
			s += " " + op + " "
		}
		s += t.String()
	}
	return s + ")"
}

// Sum is a convenience constructor for Add.
func Sum(terms ...IntTerm) IntTerm {
	if len(terms) == 1 {
		return terms[0]
	}
	return Add{Terms: terms}
}
