package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// overlapFlag is task's presence AND its interval overlapping [Lo, Hi):
// start < Hi && end > Lo, the usual half-open interval overlap test.
func overlapFlag(u *usage, iv TimeInterval) backend.BoolTerm {
	return AndTerm(u.presence,
		backend.Cmp{Op: backend.OpLt, A: u.task.Start, B: backend.IntConst(iv.Hi)},
		backend.Cmp{Op: backend.OpGt, A: u.task.End, B: backend.IntConst(iv.Lo)},
	)
}

// WorkLoad asserts, per interval, Σ over tasks using R of overlap(task,
// interval) [=/>=/<=] the interval's target count.
type WorkLoad struct {
	optional
	R         Resource
	Intervals []TimeInterval
	N         []int // N[i] is the target for Intervals[i]
	Kind      CardinalityKind

	p *Problem
}

// NewWorkLoad attaches a WorkLoad constraint over R; intervals and their
// per-interval targets must be parallel slices.
func (p *Problem) NewWorkLoad(r Resource, intervals []TimeInterval, n []int, kind CardinalityKind) (*WorkLoad, error) {
	if len(intervals) != len(n) {
		return nil, newModelError("work_load %q: intervals and targets length mismatch", r.Name())
	}
	w := &WorkLoad{R: r, Intervals: intervals, N: n, Kind: kind, p: p}
	p.AddConstraint(w)
	return w, nil
}
func (c *WorkLoad) SetOptional() *WorkLoad { c.setOptional(); return c }

func (c *WorkLoad) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	usages := c.p.usagesFor(c.R.Name())
	var clauses []backend.BoolTerm
	for i, iv := range c.Intervals {
		var terms []backend.IntTerm
		for _, u := range usages {
			terms = append(terms, backend.IntIte{Cond: overlapFlag(u, iv), Then: backend.IntConst(1), Else: backend.IntConst(0)})
		}
		clauses = append(clauses, cardinalityCmp(c.Kind, backend.Sum(terms...), c.N[i]))
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...)), nil
}

// NewResourceUnavailable is WorkLoad with n=0, kind=Exact over every
// interval.
func (p *Problem) NewResourceUnavailable(r Resource, intervals []TimeInterval) (*WorkLoad, error) {
	n := make([]int, len(intervals))
	return p.NewWorkLoad(r, intervals, n, Exact)
}

// NewResourceCalendar is sugar over NewResourceUnavailable for the common
// case of describing a resource's off-hours as a calendar of closed
// intervals (weekends, maintenance windows) rather than hand-building the
// equivalent WorkLoad call site by site.
func (p *Problem) NewResourceCalendar(r Resource, unavailable []TimeInterval) (*WorkLoad, error) {
	return p.NewResourceUnavailable(r, unavailable)
}

// ResourceNonDelay asserts that tasks assigned to R, ordered by an
// auxiliary position variable, are contiguous: whichever task immediately
// precedes another on R (position differs by 1) must end exactly where the
// other starts.
type ResourceNonDelay struct {
	optional
	R Resource
	p *Problem
}

func (p *Problem) NewResourceNonDelay(r Resource) *ResourceNonDelay {
	return &ResourceNonDelay{R: r, p: p}
}
func (c *ResourceNonDelay) SetOptional() *ResourceNonDelay { c.setOptional(); return c }

func (c *ResourceNonDelay) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	usages := c.p.usagesFor(c.R.Name())
	pos := assignPositions(ctx, c.R.Name(), usages)
	var clauses []backend.BoolTerm
	for i := range usages {
		for j := range usages {
			if i == j {
				continue
			}
			immediate := backend.Cmp{Op: backend.OpEq, A: backend.Add{Terms: []backend.IntTerm{pos[i], backend.IntConst(1)}}, B: pos[j]}
			guard := AndTerm(usages[i].presence, usages[j].presence, immediate)
			clauses = append(clauses, backend.Implies{
				Cond: guard,
				Then: backend.Cmp{Op: backend.OpEq, A: usages[i].task.End, B: usages[j].task.Start},
			})
		}
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...)), nil
}

// DistanceMode selects the comparison ResourceTasksDistance applies between
// a consecutive pair's gap and d.
type DistanceMode int

const (
	DistanceExact DistanceMode = iota
	DistanceAtLeast
	DistanceAtMost
)

// ResourceTasksDistance asserts, for every consecutive pair on R (optionally
// restricted to tasks overlapping intervals), next.start - prev.end
// [=/>=/<=] d.
type ResourceTasksDistance struct {
	optional
	R         Resource
	D         int
	Intervals []TimeInterval
	Mode      DistanceMode
	p         *Problem
}

func (p *Problem) NewResourceTasksDistance(r Resource, d int, intervals []TimeInterval, mode DistanceMode) *ResourceTasksDistance {
	return &ResourceTasksDistance{R: r, D: d, Intervals: intervals, Mode: mode, p: p}
}
func (c *ResourceTasksDistance) SetOptional() *ResourceTasksDistance { c.setOptional(); return c }

func (c *ResourceTasksDistance) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	usages := c.p.usagesFor(c.R.Name())
	pos := assignPositions(ctx, c.R.Name()+"_dist", usages)
	var clauses []backend.BoolTerm
	for i := range usages {
		for j := range usages {
			if i == j {
				continue
			}
			immediate := backend.Cmp{Op: backend.OpEq, A: backend.Add{Terms: []backend.IntTerm{pos[i], backend.IntConst(1)}}, B: pos[j]}
			guard := AndTerm(usages[i].presence, usages[j].presence, immediate)
			if len(c.Intervals) > 0 {
				var inAnyInterval []backend.BoolTerm
				for _, iv := range c.Intervals {
					inAnyInterval = append(inAnyInterval, AndTerm(overlapFlag(usages[i], iv), overlapFlag(usages[j], iv)))
				}
				guard = AndTerm(guard, OrTerm(inAnyInterval...))
			}
			diff := backend.Sub{A: usages[j].task.Start, B: usages[i].task.End}
			var body backend.BoolTerm
			switch c.Mode {
			case DistanceAtLeast:
				body = backend.Cmp{Op: backend.OpGe, A: diff, B: backend.IntConst(c.D)}
			case DistanceAtMost:
				body = backend.Cmp{Op: backend.OpLe, A: diff, B: backend.IntConst(c.D)}
			default:
				body = backend.Cmp{Op: backend.OpEq, A: diff, B: backend.IntConst(c.D)}
			}
			clauses = append(clauses, backend.Implies{Cond: guard, Then: body})
		}
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...)), nil
}

// DistinctWorkers asserts no candidate is picked by both S1 and S2:
// ¬∃w: picked_w_in_S1 ∧ picked_w_in_S2.
type DistinctWorkers struct {
	optional
	S1, S2 *SelectWorkers
}

func NewDistinctWorkers(s1, s2 *SelectWorkers) *DistinctWorkers {
	return &DistinctWorkers{S1: s1, S2: s2}
}
func (c *DistinctWorkers) SetOptional() *DistinctWorkers { c.setOptional(); return c }

func (c *DistinctWorkers) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	var clauses []backend.BoolTerm
	for _, w := range c.S1.candidates {
		p2, ok := c.S2.picked[w.Name()]
		if !ok {
			continue
		}
		clauses = append(clauses, backend.Not{Term: AndTerm(c.S1.picked[w.Name()], p2)})
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...)), nil
}

// SameWorkers asserts every shared candidate's picked_w booleans agree
// between S1 and S2: ∀w: picked_w_S1 ↔ picked_w_S2.
type SameWorkers struct {
	optional
	S1, S2 *SelectWorkers
}

func NewSameWorkers(s1, s2 *SelectWorkers) *SameWorkers { return &SameWorkers{S1: s1, S2: s2} }
func (c *SameWorkers) SetOptional() *SameWorkers { c.setOptional(); return c }

func (c *SameWorkers) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	var clauses []backend.BoolTerm
	for _, w := range c.S1.candidates {
		p2, ok := c.S2.picked[w.Name()]
		if !ok {
			continue
		}
		p1 := c.S1.picked[w.Name()]
		clauses = append(clauses,
			backend.Implies{Cond: p1, Then: p2},
			backend.Implies{Cond: p2, Then: p1},
		)
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...)), nil
}
