package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// BoundKind selects between a strict and a lax (non-strict) comparison,
// shared by every atomic constraint below that offers both.
type BoundKind int

const (
	Lax BoundKind = iota
	Strict
)

// CardinalityKind selects between exact/at-least/at-most counting
// constraints.
type CardinalityKind int

const (
	Exact CardinalityKind = iota
	AtLeast
	AtMost
)

func cmpFor(kind BoundKind, strictOp, laxOp backend.CmpOp, a, b backend.IntTerm) backend.BoolTerm {
	op := laxOp
	if kind == Strict {
		op = strictOp
	}
	return backend.Cmp{Op: op, A: a, B: b}
}

// TaskStartAt asserts T.start = v.
type TaskStartAt struct {
	optional
	T *Task
	V int
}

func NewTaskStartAt(t *Task, v int) *TaskStartAt { return &TaskStartAt{T: t, V: v} }
func (c *TaskStartAt) SetOptional() *TaskStartAt { c.setOptional(); return c }

func (c *TaskStartAt) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Cmp{Op: backend.OpEq, A: c.T.Start, B: backend.IntConst(c.V)}
	return guarded(ctx, &c.optional, body, c.T), nil
}

// TaskEndAt asserts T.end = v.
type TaskEndAt struct {
	optional
	T *Task
	V int
}

func NewTaskEndAt(t *Task, v int) *TaskEndAt    { return &TaskEndAt{T: t, V: v} }
func (c *TaskEndAt) SetOptional() *TaskEndAt { c.setOptional(); return c }

func (c *TaskEndAt) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Cmp{Op: backend.OpEq, A: c.T.End, B: backend.IntConst(c.V)}
	return guarded(ctx, &c.optional, body, c.T), nil
}

// TaskStartAfter asserts T.start > v (Strict) or T.start >= v (Lax).
type TaskStartAfter struct {
	optional
	T    *Task
	V    int
	Kind BoundKind
}

func NewTaskStartAfter(t *Task, v int, kind BoundKind) *TaskStartAfter {
	return &TaskStartAfter{T: t, V: v, Kind: kind}
}
func (c *TaskStartAfter) SetOptional() *TaskStartAfter { c.setOptional(); return c }

func (c *TaskStartAfter) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := cmpFor(c.Kind, backend.OpGt, backend.OpGe, c.T.Start, backend.IntConst(c.V))
	return guarded(ctx, &c.optional, body, c.T), nil
}

// TaskEndBefore asserts T.end < v (Strict) or T.end <= v (Lax).
type TaskEndBefore struct {
	optional
	T    *Task
	V    int
	Kind BoundKind
}

func NewTaskEndBefore(t *Task, v int, kind BoundKind) *TaskEndBefore {
	return &TaskEndBefore{T: t, V: v, Kind: kind}
}
func (c *TaskEndBefore) SetOptional() *TaskEndBefore { c.setOptional(); return c }

func (c *TaskEndBefore) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := cmpFor(c.Kind, backend.OpLt, backend.OpLe, c.T.End, backend.IntConst(c.V))
	return guarded(ctx, &c.optional, body, c.T), nil
}

// PrecedenceKind selects the three flavors of TaskPrecedence.
type PrecedenceKind int

const (
	PrecedenceLax PrecedenceKind = iota
	PrecedenceStrict
	PrecedenceTight
)

// TaskPrecedence asserts A.end + offset <=/</== B.start.
type TaskPrecedence struct {
	optional
	A, B   *Task
	Kind   PrecedenceKind
	Offset int
}

func NewTaskPrecedence(a, b *Task, kind PrecedenceKind, offset int) *TaskPrecedence {
	return &TaskPrecedence{A: a, B: b, Kind: kind, Offset: offset}
}
func (c *TaskPrecedence) SetOptional() *TaskPrecedence { c.setOptional(); return c }

func (c *TaskPrecedence) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	lhs := backend.Add{Terms: []backend.IntTerm{c.A.End, backend.IntConst(c.Offset)}}
	var body backend.BoolTerm
	switch c.Kind {
	case PrecedenceStrict:
		body = backend.Cmp{Op: backend.OpLt, A: lhs, B: c.B.Start}
	case PrecedenceTight:
		body = backend.Cmp{Op: backend.OpEq, A: lhs, B: c.B.Start}
	default:
		body = backend.Cmp{Op: backend.OpLe, A: lhs, B: c.B.Start}
	}
	return guarded(ctx, &c.optional, body, c.A, c.B), nil
}

// TasksStartSynced asserts A.start = B.start.
type TasksStartSynced struct {
	optional
	A, B *Task
}

func NewTasksStartSynced(a, b *Task) *TasksStartSynced { return &TasksStartSynced{A: a, B: b} }
func (c *TasksStartSynced) SetOptional() *TasksStartSynced { c.setOptional(); return c }

func (c *TasksStartSynced) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Cmp{Op: backend.OpEq, A: c.A.Start, B: c.B.Start}
	return guarded(ctx, &c.optional, body, c.A, c.B), nil
}

// TasksEndSynced asserts A.end = B.end.
type TasksEndSynced struct {
	optional
	A, B *Task
}

func NewTasksEndSynced(a, b *Task) *TasksEndSynced { return &TasksEndSynced{A: a, B: b} }
func (c *TasksEndSynced) SetOptional() *TasksEndSynced { c.setOptional(); return c }

func (c *TasksEndSynced) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Cmp{Op: backend.OpEq, A: c.A.End, B: c.B.End}
	return guarded(ctx, &c.optional, body, c.A, c.B), nil
}

// TasksDontOverlap asserts (A.end <= B.start) || (B.end <= A.start).
type TasksDontOverlap struct {
	optional
	A, B *Task
}

func NewTasksDontOverlap(a, b *Task) *TasksDontOverlap { return &TasksDontOverlap{A: a, B: b} }
func (c *TasksDontOverlap) SetOptional() *TasksDontOverlap { c.setOptional(); return c }

func (c *TasksDontOverlap) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := OrTerm(
		backend.Cmp{Op: backend.OpLe, A: c.A.End, B: c.B.Start},
		backend.Cmp{Op: backend.OpLe, A: c.B.End, B: c.A.Start},
	)
	return guarded(ctx, &c.optional, body, c.A, c.B), nil
}

// TasksContiguous asserts pairwise Ti.end = T(i+1).start over list, in the
// given order.
type TasksContiguous struct {
	optional
	List []*Task
}

func NewTasksContiguous(list []*Task) *TasksContiguous { return &TasksContiguous{List: list} }
func (c *TasksContiguous) SetOptional() *TasksContiguous { c.setOptional(); return c }

func (c *TasksContiguous) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	if len(c.List) < 2 {
		return backend.BoolConst(true), nil
	}
	var clauses []backend.BoolTerm
	for i := 0; i+1 < len(c.List); i++ {
		clauses = append(clauses, backend.Cmp{Op: backend.OpEq, A: c.List[i].End, B: c.List[i+1].Start})
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...), c.List...), nil
}

// OrderedTaskGroup asserts pairwise precedence over list, in the given
// order, under a single PrecedenceKind (no offset).
type OrderedTaskGroup struct {
	optional
	List []*Task
	Kind PrecedenceKind
}

func NewOrderedTaskGroup(list []*Task, kind PrecedenceKind) *OrderedTaskGroup {
	return &OrderedTaskGroup{List: list, Kind: kind}
}
func (c *OrderedTaskGroup) SetOptional() *OrderedTaskGroup { c.setOptional(); return c }

func (c *OrderedTaskGroup) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	if len(c.List) < 2 {
		return backend.BoolConst(true), nil
	}
	var clauses []backend.BoolTerm
	for i := 0; i+1 < len(c.List); i++ {
		a, b := c.List[i], c.List[i+1]
		switch c.Kind {
		case PrecedenceStrict:
			clauses = append(clauses, backend.Cmp{Op: backend.OpLt, A: a.End, B: b.Start})
		case PrecedenceTight:
			clauses = append(clauses, backend.Cmp{Op: backend.OpEq, A: a.End, B: b.Start})
		default:
			clauses = append(clauses, backend.Cmp{Op: backend.OpLe, A: a.End, B: b.Start})
		}
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...), c.List...), nil
}

// UnorderedTaskGroup asserts every task in list lies within [groupStart,
// groupEnd], a window bound by the group itself: group-start <= each
// T.start, each T.end <= group-end.
type UnorderedTaskGroup struct {
	optional
	Name                 string
	List                 []*Task
	GroupStart, GroupEnd backend.IntVar
}

// NewUnorderedTaskGroup returns the constraint; its group-start/group-end
// window variables are declared by contribute, each time it runs.
func NewUnorderedTaskGroup(name string, list []*Task) *UnorderedTaskGroup {
	return &UnorderedTaskGroup{Name: name, List: list}
}
func (c *UnorderedTaskGroup) SetOptional() *UnorderedTaskGroup { c.setOptional(); return c }

func (c *UnorderedTaskGroup) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	c.GroupStart = ctx.DeclareInt(c.Name + "_group_start")
	c.GroupEnd = ctx.DeclareInt(c.Name + "_group_end")
	var clauses []backend.BoolTerm
	for _, t := range c.List {
		clauses = append(clauses,
			backend.Cmp{Op: backend.OpLe, A: c.GroupStart, B: t.Start},
			backend.Cmp{Op: backend.OpLe, A: t.End, B: c.GroupEnd},
		)
	}
	return guarded(ctx, &c.optional, AndTerm(clauses...), c.List...), nil
}

// TimeInterval is a half-open integer window [Lo, Hi) used by
// ScheduleNTasksInTimeIntervals, WorkLoad, and ResourceTasksDistance: a
// task lies inside it when Lo <= start and end <= Hi, and overlaps it when
// start < Hi and end > Lo.
type TimeInterval struct{ Lo, Hi int }

func insideFlag(t *Task, intervals []TimeInterval) backend.BoolTerm {
	var clauses []backend.BoolTerm
	for _, iv := range intervals {
		clauses = append(clauses, AndTerm(
			backend.Cmp{Op: backend.OpGe, A: t.Start, B: backend.IntConst(iv.Lo)},
			backend.Cmp{Op: backend.OpLe, A: t.End, B: backend.IntConst(iv.Hi)},
		))
	}
	return OrTerm(clauses...)
}

func cardinalityCmp(kind CardinalityKind, sum backend.IntTerm, n int) backend.BoolTerm {
	switch kind {
	case AtLeast:
		return backend.Cmp{Op: backend.OpGe, A: sum, B: backend.IntConst(n)}
	case AtMost:
		return backend.Cmp{Op: backend.OpLe, A: sum, B: backend.IntConst(n)}
	default:
		return backend.Cmp{Op: backend.OpEq, A: sum, B: backend.IntConst(n)}
	}
}

// ScheduleNTasksInTimeIntervals asserts Σ insideFlag(Ti, intervals) [=/>=/<=] N.
type ScheduleNTasksInTimeIntervals struct {
	optional
	List      []*Task
	N         int
	Intervals []TimeInterval
	Kind      CardinalityKind
}

func NewScheduleNTasksInTimeIntervals(list []*Task, n int, intervals []TimeInterval, kind CardinalityKind) *ScheduleNTasksInTimeIntervals {
	return &ScheduleNTasksInTimeIntervals{List: list, N: n, Intervals: intervals, Kind: kind}
}
func (c *ScheduleNTasksInTimeIntervals) SetOptional() *ScheduleNTasksInTimeIntervals {
	c.setOptional()
	return c
}

func (c *ScheduleNTasksInTimeIntervals) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	var terms []backend.IntTerm
	for _, t := range c.List {
		flag := AndTerm(t.ScheduledTerm(), insideFlag(t, c.Intervals))
		terms = append(terms, backend.IntIte{Cond: flag, Then: backend.IntConst(1), Else: backend.IntConst(0)})
	}
	body := cardinalityCmp(c.Kind, backend.Sum(terms...), c.N)
	return guarded(ctx, &c.optional, body), nil
}

// ForceScheduleNOptionalTasks asserts Σ Ti.scheduled [=/>=/<=] N.
type ForceScheduleNOptionalTasks struct {
	optional
	List []*Task
	N    int
	Kind CardinalityKind
}

func NewForceScheduleNOptionalTasks(list []*Task, n int, kind CardinalityKind) *ForceScheduleNOptionalTasks {
	return &ForceScheduleNOptionalTasks{List: list, N: n, Kind: kind}
}
func (c *ForceScheduleNOptionalTasks) SetOptional() *ForceScheduleNOptionalTasks {
	c.setOptional()
	return c
}

func (c *ForceScheduleNOptionalTasks) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	var terms []backend.IntTerm
	for _, t := range c.List {
		terms = append(terms, backend.IntIte{Cond: t.ScheduledTerm(), Then: backend.IntConst(1), Else: backend.IntConst(0)})
	}
	body := cardinalityCmp(c.Kind, backend.Sum(terms...), c.N)
	return guarded(ctx, &c.optional, body), nil
}

// OptionalTasksDependency asserts A.scheduled -> B.scheduled.
type OptionalTasksDependency struct {
	optional
	A, B *Task
}

func NewOptionalTasksDependency(a, b *Task) *OptionalTasksDependency {
	return &OptionalTasksDependency{A: a, B: b}
}
func (c *OptionalTasksDependency) SetOptional() *OptionalTasksDependency { c.setOptional(); return c }

func (c *OptionalTasksDependency) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Implies{Cond: c.A.ScheduledTerm(), Then: c.B.ScheduledTerm()}
	return guarded(ctx, &c.optional, body), nil
}

// OptionalTaskConditionSchedule asserts cond -> T.scheduled.
type OptionalTaskConditionSchedule struct {
	optional
	T    *Task
	Cond backend.BoolTerm
}

func NewOptionalTaskConditionSchedule(t *Task, cond backend.BoolTerm) *OptionalTaskConditionSchedule {
	return &OptionalTaskConditionSchedule{T: t, Cond: cond}
}
func (c *OptionalTaskConditionSchedule) SetOptional() *OptionalTaskConditionSchedule {
	c.setOptional()
	return c
}

func (c *OptionalTaskConditionSchedule) contribute(ctx *EncoderCtx) (backend.BoolTerm, error) {
	body := backend.Implies{Cond: c.Cond, Then: c.T.ScheduledTerm()}
	return guarded(ctx, &c.optional, body), nil
}
