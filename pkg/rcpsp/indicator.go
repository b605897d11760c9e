package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// Indicator is an integer-valued term over task/resource/buffer variables,
// given a stable name so it can be retrieved from the Solution and
// referenced by one or more Objectives. Its I_val
// variable and defining equality are built lazily, the first time Term is
// called, so the same Indicator can be shared by several Objectives
// without emitting duplicate assertions.
type Indicator struct {
	name, uid string
	hasLB, hasUB bool
	lb, ub       int

	build func(ctx *EncoderCtx) (backend.IntTerm, error)
	// postHoc, when set, replaces the generic I_val = expression contract:
	// the indicator's value is instead computed directly from the solved
	// model during Solution extraction. Used only by ResourceCost, whose
	// Linear/Polynomial cost integrals are nonlinear in a symbolic task
	// window and so cannot be asserted as an SMT term (nonlinear cost
	// models are out of scope for the term language); Function.Eval/
	// Integral only ever runs over concrete, already-solved integer
	// bounds.
	postHoc func(m backend.Model) (int, error)

	val   backend.IntVar
	built bool
}

// NewIndicator attaches a custom Indicator built from build.
func (p *Problem) NewIndicator(name string, build func(ctx *EncoderCtx) (backend.IntTerm, error)) (*Indicator, error) {
	uid, err := p.registry.register("Indicator", name)
	if err != nil {
		return nil, err
	}
	ind := &Indicator{name: name, uid: uid, build: build}
	p.AddIndicator(ind)
	return ind, nil
}

func (ind *Indicator) Name() string { return ind.name }

// SetBounds adds lb <= expr <= ub to tighten search.
func (ind *Indicator) SetBounds(lb, ub int) *Indicator {
	ind.hasLB, ind.lb = true, lb
	ind.hasUB, ind.ub = true, ub
	return ind
}

// Term builds (once) the indicator's I_val variable, its defining equality,
// and its bounds, returning I_val.
func (ind *Indicator) Term(ctx *EncoderCtx) (backend.IntVar, error) {
	if ind.built {
		return ind.val, nil
	}
	expr, err := ind.build(ctx)
	if err != nil {
		return backend.IntVar{}, err
	}
	maxH := ctx.MaxHorizon()
	ind.val = ctx.DeclareIntRange(qualifiedVarName("Indicator", ind.name, ind.uid, "val"), -maxH, maxH)
	ctx.Assert(backend.Cmp{Op: backend.OpEq, A: ind.val, B: expr})
	if ind.hasLB {
		ctx.Assert(backend.Cmp{Op: backend.OpGe, A: ind.val, B: backend.IntConst(ind.lb)})
	}
	if ind.hasUB {
		ctx.Assert(backend.Cmp{Op: backend.OpLe, A: ind.val, B: backend.IntConst(ind.ub)})
	}
	ind.built = true
	return ind.val, nil
}

// pinMax builds the standard aggregate-max encoding over terms: a fresh
// variable m with m >= every term, and m equal to at least one of them
// (assuming terms is non-empty and at least one disjunct's guard holds).
func pinMax(ctx *EncoderCtx, label string, guards []backend.BoolTerm, terms []backend.IntTerm) backend.IntTerm {
	m := ctx.DeclareIntRange(label, -ctx.MaxHorizon(), ctx.MaxHorizon())
	var disjuncts []backend.BoolTerm
	for i, term := range terms {
		ctx.AssertGuarded(guards[i], backend.Cmp{Op: backend.OpGe, A: m, B: term})
		disjuncts = append(disjuncts, AndTerm(guards[i], backend.Cmp{Op: backend.OpEq, A: m, B: term}))
	}
	ctx.Assert(OrTerm(disjuncts...))
	return m
}

// pinMin is pinMax's dual.
func pinMin(ctx *EncoderCtx, label string, guards []backend.BoolTerm, terms []backend.IntTerm) backend.IntTerm {
	m := ctx.DeclareIntRange(label, -ctx.MaxHorizon(), ctx.MaxHorizon())
	var disjuncts []backend.BoolTerm
	for i, term := range terms {
		ctx.AssertGuarded(guards[i], backend.Cmp{Op: backend.OpLe, A: m, B: term})
		disjuncts = append(disjuncts, AndTerm(guards[i], backend.Cmp{Op: backend.OpEq, A: m, B: term}))
	}
	ctx.Assert(OrTerm(disjuncts...))
	return m
}

// NewMakespan: M = max over tasks of T.end, optional tasks contributing
// only when scheduled.
func (p *Problem) NewMakespan(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		guards := make([]backend.BoolTerm, len(tasks))
		terms := make([]backend.IntTerm, len(tasks))
		for i, t := range tasks {
			guards[i], terms[i] = t.ScheduledTerm(), t.End
		}
		return pinMax(ctx, name+"_makespan_m", guards, terms), nil
	})
}

// NewFlowtime: Σ T.end over mandatory tasks; optional tasks contribute only
// when scheduled.
func (p *Problem) NewFlowtime(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, t := range tasks {
			terms = append(terms, backend.IntIte{Cond: t.ScheduledTerm(), Then: t.End, Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

// NewFlowtimeSingleResource: sum of ends of tasks using R within interval
//.
func (p *Problem) NewFlowtimeSingleResource(name string, r Resource, interval TimeInterval) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, u := range p.usagesFor(r.Name()) {
			flag := overlapFlag(u, interval)
			terms = append(terms, backend.IntIte{Cond: flag, Then: u.task.End, Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

func maxZero(ctx *EncoderCtx, x backend.IntTerm) backend.IntTerm {
	return backend.IntIte{Cond: backend.Cmp{Op: backend.OpGt, A: x, B: backend.IntConst(0)}, Then: x, Else: backend.IntConst(0)}
}

// NewTardiness: Σ max(0, T.end - due_date) over tasks with a due date
//.
func (p *Problem) NewTardiness(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, t := range tasks {
			due, ok := t.DueDate()
			if !ok {
				continue
			}
			lateness := backend.Sub{A: t.End, B: backend.IntConst(due)}
			terms = append(terms, backend.IntIte{Cond: t.ScheduledTerm(), Then: maxZero(ctx, lateness), Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

// NewEarliness: Σ max(0, due_date - T.end) over tasks with a due date.
func (p *Problem) NewEarliness(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, t := range tasks {
			due, ok := t.DueDate()
			if !ok {
				continue
			}
			early := backend.Sub{A: backend.IntConst(due), B: t.End}
			terms = append(terms, backend.IntIte{Cond: t.ScheduledTerm(), Then: maxZero(ctx, early), Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

// NewMaximumLateness: max over tasks with a due date of (T.end - due_date).
func (p *Problem) NewMaximumLateness(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var guards []backend.BoolTerm
		var terms []backend.IntTerm
		for _, t := range tasks {
			due, ok := t.DueDate()
			if !ok {
				continue
			}
			guards = append(guards, t.ScheduledTerm())
			terms = append(terms, backend.Sub{A: t.End, B: backend.IntConst(due)})
		}
		return pinMax(ctx, name+"_max_lateness_m", guards, terms), nil
	})
}

// NewNumberOfTardyTasks: Σ [T.end > due_date] over tasks with a due date.
func (p *Problem) NewNumberOfTardyTasks(name string, tasks []*Task) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, t := range tasks {
			due, ok := t.DueDate()
			if !ok {
				continue
			}
			tardy := AndTerm(t.ScheduledTerm(), backend.Cmp{Op: backend.OpGt, A: t.End, B: backend.IntConst(due)})
			terms = append(terms, backend.IntIte{Cond: tardy, Then: backend.IntConst(1), Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

// NewResourceUtilization: (100 * Σ busy durations) / H, integer-rounded
// (floor) via the standard q*H <= 100*busy < (q+1)*H auxiliary-variable
// division encoding, since the term language has no native Div. H is
// ctx.MaxHorizon(): the fixed horizon when one is set, otherwise the
// Options.MaxHorizon ceiling.
func (p *Problem) NewResourceUtilization(name string, r Resource) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var busy []backend.IntTerm
		for _, u := range p.usagesFor(r.Name()) {
			busy = append(busy, backend.IntIte{Cond: u.presence, Then: u.task.Duration, Else: backend.IntConst(0)})
		}
		num := backend.MulConst{K: 100, Term: backend.Sum(busy...)}
		H := ctx.MaxHorizon()
		q := ctx.DeclareIntRange(name+"_util_q", 0, 100)
		ctx.Assert(backend.Cmp{Op: backend.OpLe, A: backend.MulConst{K: H, Term: q}, B: num})
		qPlus1 := backend.Add{Terms: []backend.IntTerm{q, backend.IntConst(1)}}
		ctx.Assert(backend.Cmp{Op: backend.OpLt, A: num, B: backend.MulConst{K: H, Term: qPlus1}})
		return q, nil
	})
}

// NewNumberTasksAssigned: Σ assigned(T, R).
func (p *Problem) NewNumberTasksAssigned(name string, r Resource) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		var terms []backend.IntTerm
		for _, u := range p.usagesFor(r.Name()) {
			terms = append(terms, backend.IntIte{Cond: u.presence, Then: backend.IntConst(1), Else: backend.IntConst(0)})
		}
		return backend.Sum(terms...), nil
	})
}

// NewResourceCost: Σ integral of each resource's cost function over its
// busy sub-intervals. Computed post-hoc from the solved model
// (see the postHoc field doc on Indicator).
func (p *Problem) NewResourceCost(name string, resources []Resource) (*Indicator, error) {
	uid, err := p.registry.register("Indicator", name)
	if err != nil {
		return nil, err
	}
	ind := &Indicator{name: name, uid: uid}
	ind.postHoc = func(m backend.Model) (int, error) {
		total := 0
		for _, r := range resources {
			f := r.Cost()
			if f == nil {
				continue
			}
			for _, u := range p.usagesFor(r.Name()) {
				if !evalPresence(m, u.presence) {
					continue
				}
				a := m.Int(u.task.Start)
				b := m.Int(u.task.End)
				c, err := f.Integral(a, b)
				if err != nil {
					return 0, err
				}
				total += c
			}
		}
		return total, nil
	}
	p.AddIndicator(ind)
	return ind, nil
}

// NewMaxBufferLevel: max of buf's level over its sampled breakpoints,
// starting with the initial (t=0) level, mirroring extractBufferTimeline's
// own breakpoint seeding.
func (p *Problem) NewMaxBufferLevel(name string, buf *Buffer) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		initial := 0
		if buf.hasInitial {
			initial = buf.initialLevel
		}
		guards := make([]backend.BoolTerm, 0, len(buf.events)+1)
		terms := make([]backend.IntTerm, 0, len(buf.events)+1)
		guards = append(guards, backend.BoolConst(true))
		terms = append(terms, backend.IntConst(initial))
		for _, e := range buf.events {
			guards = append(guards, e.task.ScheduledTerm())
			terms = append(terms, buf.levelAt(e.time()))
		}
		return pinMax(ctx, name+"_max_buf_m", guards, terms), nil
	})
}

// NewMinBufferLevel: min of buf's level over its sampled breakpoints,
// starting with the initial (t=0) level, mirroring extractBufferTimeline's
// own breakpoint seeding.
func (p *Problem) NewMinBufferLevel(name string, buf *Buffer) (*Indicator, error) {
	return p.NewIndicator(name, func(ctx *EncoderCtx) (backend.IntTerm, error) {
		initial := 0
		if buf.hasInitial {
			initial = buf.initialLevel
		}
		guards := make([]backend.BoolTerm, 0, len(buf.events)+1)
		terms := make([]backend.IntTerm, 0, len(buf.events)+1)
		guards = append(guards, backend.BoolConst(true))
		terms = append(terms, backend.IntConst(initial))
		for _, e := range buf.events {
			guards = append(guards, e.task.ScheduledTerm())
			terms = append(terms, buf.levelAt(e.time()))
		}
		return pinMin(ctx, name+"_min_buf_m", guards, terms), nil
	})
}
