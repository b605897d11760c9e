package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// DurationKind selects which Task variant governs how Duration is
// constrained.
type DurationKind int

const (
	ZeroDuration DurationKind = iota
	FixedDuration
	VariableDuration
)

// Task is a time interval with start/end/duration variables and
// optional/release/deadline/priority/work-amount attributes.
type Task struct {
	name, uid string

	durationKind     DurationKind
	fixedDuration    int
	minDuration      int
	maxDuration      int
	allowedDurations []int

	optional          bool
	releaseDate       *int
	dueDate           *int
	dueDateIsDeadline bool
	priority          int
	workAmount        int

	requirements []*requirement

	// populated by contribute()
	Start, End, Duration backend.IntVar
	Scheduled             backend.BoolVar
	hasScheduled          bool
	contributed           bool
}

// requirement is one entry in a task's required-resource list: either a
// single concrete Resource, or a SelectWorkers choice node. "a list of
// concrete resources" is modeled as several requirement
// entries, each mandatory, meaning the task needs all of them
// simultaneously.
type requirement struct {
	resource Resource
	choice   *SelectWorkers
	dynamic  bool
}

func newTask(p *Problem, name string, kind DurationKind) (*Task, error) {
	uid, err := p.registry.register("Task", name)
	if err != nil {
		return nil, err
	}
	return &Task{name: name, uid: uid, durationKind: kind}, nil
}

// NewZeroDurationTask creates a Task whose duration is pinned to 0.
func (p *Problem) NewZeroDurationTask(name string) (*Task, error) {
	t, err := newTask(p, name, ZeroDuration)
	if err != nil {
		return nil, err
	}
	p.tasks = append(p.tasks, t)
	return t, nil
}

// NewFixedDurationTask creates a Task whose duration is a fixed constant.
func (p *Problem) NewFixedDurationTask(name string, duration int) (*Task, error) {
	if duration < 0 {
		return nil, newModelError("task %q: duration must be non-negative, got %d", name, duration)
	}
	t, err := newTask(p, name, FixedDuration)
	if err != nil {
		return nil, err
	}
	t.fixedDuration = duration
	p.tasks = append(p.tasks, t)
	return t, nil
}

// NewVariableDurationTask creates a Task whose duration ranges over
// [minDuration, maxDuration].
func (p *Problem) NewVariableDurationTask(name string, minDuration, maxDuration int) (*Task, error) {
	if minDuration < 0 || maxDuration < minDuration {
		return nil, newModelError("task %q: inconsistent duration bounds [%d, %d]", name, minDuration, maxDuration)
	}
	t, err := newTask(p, name, VariableDuration)
	if err != nil {
		return nil, err
	}
	t.minDuration, t.maxDuration = minDuration, maxDuration
	p.tasks = append(p.tasks, t)
	return t, nil
}

// NewVariableDurationTaskFromSet creates a Task whose duration must be one
// of allowed, a discrete form of the VariableDuration variant.
func (p *Problem) NewVariableDurationTaskFromSet(name string, allowed []int) (*Task, error) {
	if len(allowed) == 0 {
		return nil, newModelError("task %q: allowed_durations must be non-empty", name)
	}
	for _, d := range allowed {
		if d < 0 {
			return nil, newModelError("task %q: allowed durations must be non-negative, got %d", name, d)
		}
	}
	t, err := newTask(p, name, VariableDuration)
	if err != nil {
		return nil, err
	}
	t.allowedDurations = append([]int(nil), allowed...)
	p.tasks = append(p.tasks, t)
	return t, nil
}

func (t *Task) Name() string { return t.name }
func (t *Task) UID() string  { return t.uid }

// SetOptional marks the task optional, introducing a Scheduled decision
// variable at encoding time.
func (t *Task) SetOptional(optional bool) *Task {
	t.optional = optional
	return t
}

func (t *Task) Optional() bool { return t.optional }

func (t *Task) SetReleaseDate(d int) *Task {
	t.releaseDate = &d
	return t
}

func (t *Task) SetDueDate(d int, isDeadline bool) *Task {
	t.dueDate = &d
	t.dueDateIsDeadline = isDeadline
	return t
}

func (t *Task) DueDate() (int, bool) {
	if t.dueDate == nil {
		return 0, false
	}
	return *t.dueDate, true
}

func (t *Task) SetPriority(p int) *Task {
	t.priority = p
	return t
}

func (t *Task) SetWorkAmount(w int) *Task {
	t.workAmount = w
	return t
}

// RequireResource adds a mandatory (non-dynamic) resource requirement.
func (t *Task) RequireResource(r Resource) *Task {
	t.requirements = append(t.requirements, &requirement{resource: r})
	return t
}

// RequireDynamicResource adds a resource that may join the task after its
// start rather than being fixed at the task's start time.
func (t *Task) RequireDynamicResource(r Resource) *Task {
	t.requirements = append(t.requirements, &requirement{resource: r, dynamic: true})
	return t
}

// RequireSelectWorkers attaches a SelectWorkers choice node to the task.
func (t *Task) RequireSelectWorkers(sw *SelectWorkers) *Task {
	t.requirements = append(t.requirements, &requirement{choice: sw})
	return t
}

// ScheduledTerm returns the boolean term standing for "this task is
// scheduled": a constant true for mandatory tasks, the Scheduled variable
// for optional ones. Valid only after contribute() has run.
func (t *Task) ScheduledTerm() backend.BoolTerm {
	if t.optional {
		return t.Scheduled
	}
	return backend.BoolConst(true)
}

// contribute emits the task's own decision variables and invariants
//.
func (t *Task) contribute(ctx *EncoderCtx) error {
	t.Start = ctx.DeclareInt(qualifiedVarName("Task", t.name, t.uid, "start"))
	t.End = ctx.DeclareInt(qualifiedVarName("Task", t.name, t.uid, "end"))
	t.Duration = ctx.DeclareInt(qualifiedVarName("Task", t.name, t.uid, "duration"))

	if t.optional {
		t.Scheduled = ctx.DeclareBool(qualifiedVarName("Task", t.name, t.uid, "scheduled"))
		t.hasScheduled = true
	}

	// end = start + duration; 0 <= start; end <= horizon.
	ctx.Assert(backend.Cmp{Op: backend.OpEq, A: t.End, B: backend.Add{Terms: []backend.IntTerm{t.Start, t.Duration}}})
	ctx.Assert(backend.Cmp{Op: backend.OpGe, A: t.Start, B: backend.IntConst(0)})
	ctx.Assert(backend.Cmp{Op: backend.OpLe, A: t.End, B: ctx.Horizon()})

	if err := t.contributeDurationVariant(ctx); err != nil {
		return err
	}

	guard := t.ScheduledTerm()

	if t.releaseDate != nil {
		ctx.AssertGuarded(guard, backend.Cmp{Op: backend.OpGe, A: t.Start, B: backend.IntConst(*t.releaseDate)})
	}
	if t.dueDate != nil && t.dueDateIsDeadline {
		ctx.AssertGuarded(guard, backend.Cmp{Op: backend.OpLe, A: t.End, B: backend.IntConst(*t.dueDate)})
	}

	t.contributed = true
	return nil
}

func (t *Task) contributeDurationVariant(ctx *EncoderCtx) error {
	switch t.durationKind {
	case ZeroDuration:
		ctx.Assert(backend.Cmp{Op: backend.OpEq, A: t.Duration, B: backend.IntConst(0)})
	case FixedDuration:
		ctx.Assert(backend.Cmp{Op: backend.OpEq, A: t.Duration, B: backend.IntConst(t.fixedDuration)})
	case VariableDuration:
		if len(t.allowedDurations) > 0 {
			var options []backend.BoolTerm
			for _, d := range t.allowedDurations {
				options = append(options, backend.Cmp{Op: backend.OpEq, A: t.Duration, B: backend.IntConst(d)})
			}
			ctx.Assert(OrTerm(options...))
		} else {
			ctx.Assert(backend.Cmp{Op: backend.OpGe, A: t.Duration, B: backend.IntConst(t.minDuration)})
			ctx.Assert(backend.Cmp{Op: backend.OpLe, A: t.Duration, B: backend.IntConst(t.maxDuration)})
		}
	default:
		return newModelError("task %q: unknown duration kind", t.name)
	}
	return nil
}
