package rcpsp

import (
	"fmt"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// reifyChildren contributes every child constraint and reifies each result
// behind a fresh boolean, so the combinator can combine them purely at the
// boolean level.
func reifyChildren(ctx *EncoderCtx, label string, children []Constraint) ([]backend.BoolTerm, error) {
	reified := make([]backend.BoolTerm, len(children))
	for i, ch := range children {
		term, err := ch.contribute(ctx)
		if err != nil {
			return nil, err
		}
		reified[i] = ctx.Reify(fmt.Sprintf("%s_%d", label, ctx.tag()), term)
	}
	return reified, nil
}

// And is true iff every child constraint holds.
type And struct {
	optional
	Children []Constraint
}

func NewAnd(children ...Constraint) *And   { return &And{Children: children} }
func (c *And) SetOptional() *And           { c.setOptional(); return c }
func (c *And) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reified, err := reifyChildren(ctx, "and", c.Children)
	if err != nil {
		return nil, err
	}
	return guarded(ctx, &c.optional, AndTerm(reified...)), nil
}

// Or is true iff at least one child constraint holds.
type Or struct {
	optional
	Children []Constraint
}

func NewOr(children ...Constraint) *Or { return &Or{Children: children} }
func (c *Or) SetOptional() *Or         { c.setOptional(); return c }
func (c *Or) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reified, err := reifyChildren(ctx, "or", c.Children)
	if err != nil {
		return nil, err
	}
	return guarded(ctx, &c.optional, OrTerm(reified...)), nil
}

// Xor is true iff exactly one of c1, c2 holds.
type Xor struct {
	optional
	C1, C2 Constraint
}

func NewXor(c1, c2 Constraint) *Xor { return &Xor{C1: c1, C2: c2} }
func (c *Xor) SetOptional() *Xor    { c.setOptional(); return c }
func (c *Xor) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reified, err := reifyChildren(ctx, "xor", []Constraint{c.C1, c.C2})
	if err != nil {
		return nil, err
	}
	b1, b2 := reified[0], reified[1]
	body := AndTerm(OrTerm(b1, b2), backend.Not{Term: AndTerm(b1, b2)})
	return guarded(ctx, &c.optional, body), nil
}

// Not is true iff its child does not hold.
type Not struct {
	optional
	C Constraint
}

func NewNot(c Constraint) *Not { return &Not{C: c} }
func (c *Not) SetOptional() *Not { c.setOptional(); return c }
func (c *Not) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reified, err := reifyChildren(ctx, "not", []Constraint{c.C})
	if err != nil {
		return nil, err
	}
	return guarded(ctx, &c.optional, backend.Not{Term: reified[0]}), nil
}

// Implies is true iff Cond implies every child in Then.
type Implies struct {
	optional
	Cond backend.BoolTerm
	Then []Constraint
}

func NewImplies(cond backend.BoolTerm, then ...Constraint) *Implies {
	return &Implies{Cond: cond, Then: then}
}
func (c *Implies) SetOptional() *Implies { c.setOptional(); return c }
func (c *Implies) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reified, err := reifyChildren(ctx, "implies_then", c.Then)
	if err != nil {
		return nil, err
	}
	body := backend.Implies{Cond: c.Cond, Then: AndTerm(reified...)}
	return guarded(ctx, &c.optional, body), nil
}

// IfThenElse is true iff (Cond -> all of Thens) and (!Cond -> all of Elses).
type IfThenElse struct {
	optional
	Cond          backend.BoolTerm
	Thens, Elses []Constraint
}

func NewIfThenElse(cond backend.BoolTerm, thens, elses []Constraint) *IfThenElse {
	return &IfThenElse{Cond: cond, Thens: thens, Elses: elses}
}
func (c *IfThenElse) SetOptional() *IfThenElse { c.setOptional(); return c }
func (c *IfThenElse) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	reifiedThens, err := reifyChildren(ctx, "ite_then", c.Thens)
	if err != nil {
		return nil, err
	}
	reifiedElses, err := reifyChildren(ctx, "ite_else", c.Elses)
	if err != nil {
		return nil, err
	}
	body := backend.BoolIte{Cond: c.Cond, Then: AndTerm(reifiedThens...), Else: AndTerm(reifiedElses...)}
	return guarded(ctx, &c.optional, body), nil
}

// ConstraintFromExpression passes a raw boolean term straight into the
// assertion pool.
type ConstraintFromExpression struct {
	optional
	Expr backend.BoolTerm
}

func NewConstraintFromExpression(expr backend.BoolTerm) *ConstraintFromExpression {
	return &ConstraintFromExpression{Expr: expr}
}
func (c *ConstraintFromExpression) SetOptional() *ConstraintFromExpression { c.setOptional(); return c }
func (c *ConstraintFromExpression) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	return guarded(ctx, &c.optional, c.Expr), nil
}
