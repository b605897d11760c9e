package rcpsp

import (
	"fmt"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// EncoderCtx is the scoped construction/encoding handle passed to every
// entity's contribute hook. It owns the variable pool (by way of the
// Backend) and the horizon term every task is bounded by.
type EncoderCtx struct {
	be      backend.Backend
	horizon backend.IntTerm
	maxH    int
	debug   bool
	nextTag int
}

func newEncoderCtx(be backend.Backend, horizon backend.IntTerm, maxH int, debug bool) *EncoderCtx {
	return &EncoderCtx{be: be, horizon: horizon, maxH: maxH, debug: debug}
}

// Backend exposes the raw backend for entities that need it directly
// (e.g. to declare a variable with a custom range).
func (ctx *EncoderCtx) Backend() backend.Backend { return ctx.be }

// Horizon returns the integer term bounding every task's end.
func (ctx *EncoderCtx) Horizon() backend.IntTerm { return ctx.horizon }

// MaxHorizon returns the numeric ceiling used to size variable domains; it
// equals Horizon()'s constant value, since the horizon is never a decision
// variable.
func (ctx *EncoderCtx) MaxHorizon() int { return ctx.maxH }

// DeclareInt declares a [0, MaxHorizon] bounded integer variable.
func (ctx *EncoderCtx) DeclareInt(name string) backend.IntVar {
	return ctx.be.DeclareInt(name, 0, ctx.maxH)
}

// DeclareIntRange declares an integer variable with an explicit range.
func (ctx *EncoderCtx) DeclareIntRange(name string, lb, ub int) backend.IntVar {
	return ctx.be.DeclareInt(name, lb, ub)
}

func (ctx *EncoderCtx) DeclareBool(name string) backend.BoolVar {
	return ctx.be.DeclareBool(name)
}

// Assert posts a hard, always-on assertion. In debug mode it is
// instead posted via AssertTracked behind a fresh tracking literal, so an
// Unsatisfiable result can carry a minimal unsat core.
func (ctx *EncoderCtx) Assert(t backend.BoolTerm) {
	if ctx.debug {
		ctx.nextTag++
		ctx.be.AssertTracked(fmt.Sprintf("p_%d", ctx.nextTag), t)
		return
	}
	ctx.be.Assert(t)
}

// AssertGuarded posts guard -> body, the standard shape every guarded
// constraint and entity invariant in this package uses.
func (ctx *EncoderCtx) AssertGuarded(guard, body backend.BoolTerm) {
	ctx.Assert(backend.Implies{Cond: guard, Then: body})
}

// Reify introduces a fresh boolean b equivalent to t (b <-> t), the
// mechanism the FOL combinators use so they can operate purely at the
// boolean level over their children's emitted clauses.
func (ctx *EncoderCtx) Reify(label string, t backend.BoolTerm) backend.BoolVar {
	ctx.nextTag++
	b := ctx.be.DeclareBool(fmt.Sprintf("%s_reif_%d", label, ctx.nextTag))
	ctx.Assert(backend.Implies{Cond: b, Then: t})
	ctx.Assert(backend.Implies{Cond: t, Then: b})
	return b
}

// tag returns a small unique integer, used to keep generated variable
// names distinct across constraints of the same kind.
func (ctx *EncoderCtx) tag() int {
	ctx.nextTag++
	return ctx.nextTag
}

// AndTerm/OrTerm build the obvious combinator terms, treating the empty
// conjunction as true and the empty disjunction as false.
func AndTerm(terms ...backend.BoolTerm) backend.BoolTerm {
	if len(terms) == 1 {
		return terms[0]
	}
	return backend.And{Terms: terms}
}

func OrTerm(terms ...backend.BoolTerm) backend.BoolTerm {
	if len(terms) == 1 {
		return terms[0]
	}
	return backend.Or{Terms: terms}
}
