package rcpsp

import (
	"fmt"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// Constraint is the common interface of every atomic task/resource/buffer
// constraint and every FOL combinator. contribute
// returns the single guarded boolean term the constraint stands for; a
// top-level Constraint attached via Problem.AddConstraint has that term
// asserted unconditionally by Problem.encode, while a combinator reifies
// its children's terms and combines them instead.
type Constraint interface {
	contribute(ctx *EncoderCtx) (backend.BoolTerm, error)
}

// optional is embedded by every atomic constraint: when Optional is set, an
// extra "applied" boolean guards the constraint body.
type optional struct {
	isOptional bool
	declared   bool
	applied    backend.BoolVar
}

// appliedTerm returns the constraint's applied boolean (declared lazily,
// once) when optional, or a constant true otherwise.
func (o *optional) appliedTerm(ctx *EncoderCtx) backend.BoolTerm {
	if !o.isOptional {
		return backend.BoolConst(true)
	}
	if !o.declared {
		o.applied = ctx.DeclareBool(fmt.Sprintf("constraint_applied_%d", ctx.tag()))
		o.declared = true
	}
	return o.applied
}

func (o *optional) setOptional() { o.isOptional = true }

// Applied exposes the constraint's own applied boolean after contribute has
// run, for callers that want to read back whether an optional constraint
// was actually switched on.
func (o *optional) Applied() backend.BoolVar { return o.applied }

// guarded builds guard -> body, where guard is the conjunction of every
// referenced task's scheduled term ANDed with the constraint's own applied
// term when the constraint itself is optional.
func guarded(ctx *EncoderCtx, o *optional, body backend.BoolTerm, tasks ...*Task) backend.BoolTerm {
	terms := make([]backend.BoolTerm, 0, len(tasks)+1)
	for _, t := range tasks {
		terms = append(terms, t.ScheduledTerm())
	}
	terms = append(terms, o.appliedTerm(ctx))
	return backend.Implies{Cond: AndTerm(terms...), Then: body}
}
