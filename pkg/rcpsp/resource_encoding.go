package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// usage is one (task, resource) pairing discovered while walking every
// task's requirement list, used to drive both the exclusion/capacity
// encoding and the work-amount balance.
type usage struct {
	task     *Task
	resource Resource
	presence backend.BoolTerm // scheduled (and, for SelectWorkers, picked)
	dynamic  bool
	join     backend.IntVar
	hasJoin  bool
}

// encodeResourceAssignments encodes every task's resource requirements:
// SelectWorkers cardinality, per-resource non-overlap (capacity 1) or
// cumulative-sum capacity (capacity k), dynamic-joiner windows, and
// work-amount balance.
func (p *Problem) encodeResourceAssignments(ctx *EncoderCtx) error {
	// SelectWorkers nodes must declare their picked_w booleans before any
	// usage can reference them.
	for _, t := range p.tasks {
		for _, req := range t.requirements {
			if req.choice != nil {
				if err := req.choice.contribute(ctx); err != nil {
					return err
				}
			}
		}
	}

	byResource := make(map[string][]*usage)
	byTask := make(map[*Task][]*usage)
	resourceByName := make(map[string]Resource)
	for _, r := range p.resources {
		resourceByName[r.Name()] = r
	}

	addUsage := func(u *usage) error {
		if u.dynamic {
			u.join = ctx.DeclareInt(qualifiedVarName("Task", u.task.name, u.task.uid, "join_"+u.resource.Name()))
			u.hasJoin = true
			ctx.AssertGuarded(u.presence, backend.Cmp{Op: backend.OpGe, A: u.join, B: u.task.Start})
			ctx.AssertGuarded(u.presence, backend.Cmp{Op: backend.OpLe, A: u.join, B: u.task.End})
		}
		byResource[u.resource.Name()] = append(byResource[u.resource.Name()], u)
		byTask[u.task] = append(byTask[u.task], u)
		return nil
	}

	for _, t := range p.tasks {
		for _, req := range t.requirements {
			switch {
			case req.resource != nil:
				if req.resource.Name() == t.name {
					return newModelError("task %q: a resource cannot be assigned to itself", t.name)
				}
				if err := addUsage(&usage{task: t, resource: req.resource, presence: t.ScheduledTerm(), dynamic: req.dynamic}); err != nil {
					return err
				}
			case req.choice != nil:
				for _, w := range req.choice.candidates {
					presence := AndTerm(t.ScheduledTerm(), req.choice.pickedTerm(w.Name()))
					if err := addUsage(&usage{task: t, resource: w, presence: presence, dynamic: req.dynamic}); err != nil {
						return err
					}
				}
			}
		}
	}

	for name, usages := range byResource {
		resource := resourceByName[name]
		if resource == nil {
			continue
		}
		if resource.Capacity() == 1 {
			encodeNonOverlap(ctx, usages)
		} else {
			encodeCumulative(ctx, usages, resource.Capacity())
		}
	}

	for t, usages := range byTask {
		if t.workAmount <= 0 {
			continue
		}
		encodeWorkAmount(ctx, t, usages)
	}

	p.resourceUsages = byResource
	return nil
}

// usagesFor returns every (task, resource) usage discovered for the named
// resource, for the resource constraints of constraints_resource.go. Valid
// only after encodeResourceAssignments has run.
func (p *Problem) usagesFor(name string) []*usage { return p.resourceUsages[name] }

// assignPositions declares one bounded "position on resource" integer per
// usage and asserts pairwise distinctness among the usages actually
// present together, the auxiliary variables ResourceNonDelay's and
// ResourceTasksDistance's Hamiltonian-chain-style encodings need.
func assignPositions(ctx *EncoderCtx, label string, usages []*usage) []backend.IntVar {
	n := len(usages)
	pos := make([]backend.IntVar, n)
	for i, u := range usages {
		pos[i] = ctx.DeclareIntRange(qualifiedVarName("Resource", label, "pos", u.task.name), 0, n-1)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			guard := AndTerm(usages[i].presence, usages[j].presence)
			ctx.AssertGuarded(guard, backend.Cmp{Op: backend.OpNe, A: pos[i], B: pos[j]})
		}
	}
	return pos
}

// encodeNonOverlap asserts pairwise disjunction for a capacity-1 resource
//.
func encodeNonOverlap(ctx *EncoderCtx, usages []*usage) {
	for i := 0; i < len(usages); i++ {
		for j := i + 1; j < len(usages); j++ {
			a, b := usages[i], usages[j]
			guard := AndTerm(a.presence, b.presence)
			nonOverlap := OrTerm(
				backend.Cmp{Op: backend.OpLe, A: a.task.End, B: b.task.Start},
				backend.Cmp{Op: backend.OpLe, A: b.task.End, B: a.task.Start},
			)
			ctx.AssertGuarded(guard, nonOverlap)
		}
	}
}

// encodeCumulative asserts, per event instant (every claiming task's start
// and end), that the count of tasks overlapping that instant is <= k
//: for each event e,
// Σ_i ite(start_i <= e < end_i ∧ presence_i, 1, 0) <= k.
func encodeCumulative(ctx *EncoderCtx, usages []*usage, capacity int) {
	var events []backend.IntTerm
	for _, u := range usages {
		events = append(events, u.task.Start, u.task.End)
	}
	for _, e := range events {
		var terms []backend.IntTerm
		for _, u := range usages {
			lower := backend.IntTerm(u.task.Start)
			if u.hasJoin {
				lower = u.join
			}
			within := AndTerm(u.presence,
				backend.Cmp{Op: backend.OpLe, A: lower, B: e},
				backend.Cmp{Op: backend.OpLt, A: e, B: u.task.End},
			)
			terms = append(terms, backend.IntIte{Cond: within, Then: backend.IntConst(1), Else: backend.IntConst(0)})
		}
		ctx.Assert(backend.Cmp{Op: backend.OpLe, A: backend.Sum(terms...), B: backend.IntConst(capacity)})
	}
}

// encodeWorkAmount asserts Σ productivity_w * duration_contribution_w >= W
// for a task with a positive work amount. duration_contribution is the task's full
// duration for non-dynamic assignments, or (end - join) for dynamic ones.
// When every candidate resource has zero productivity the left-hand sum is
// structurally zero, so the assertion is unsatisfiable whenever W > 0 —
// enforcing "W = 0 is required" in that case without a separate special
// case.
func encodeWorkAmount(ctx *EncoderCtx, t *Task, usages []*usage) {
	var terms []backend.IntTerm
	for _, u := range usages {
		prod := u.resource.Productivity()
		if prod == 0 {
			continue
		}
		var contrib backend.IntTerm = t.Duration
		if u.hasJoin {
			contrib = backend.Sub{A: t.End, B: u.join}
		}
		weighted := backend.MulConst{K: prod, Term: contrib}
		terms = append(terms, backend.IntIte{Cond: u.presence, Then: weighted, Else: backend.IntConst(0)})
	}
	ctx.AssertGuarded(t.ScheduledTerm(), backend.Cmp{Op: backend.OpGe, A: backend.Sum(terms...), B: backend.IntConst(t.workAmount)})
}
