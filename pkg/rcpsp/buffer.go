package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// BufferKind selects whether a Buffer's load/unload events must be mutually
// exclusive in time.
type BufferKind int

const (
	ConcurrentBuffer BufferKind = iota
	NonConcurrentBuffer
)

// bufferEvent is one TaskLoadBuffer/TaskUnloadBuffer registration: a signed
// quantity firing at a task's start (unload) or end (load).
type bufferEvent struct {
	task     *Task
	atEnd    bool
	quantity int // already signed: negative for unload
}

// Buffer is a piecewise-constant integer level driven by task load/unload
// events. The level at any sampled time t is defined as
// initial_level plus the sum of every event's signed quantity whose time is
// <= t (guarded by its owning task's scheduled term); this is a
// sort-free reformulation of the usual "sequence of level_0..level_k
// breakpoint variables with level_{i+1} = level_i + delta_i" description —
// algebraically identical at every sampled breakpoint, but it avoids
// introducing an
// explicit event ordering (which would otherwise need its own
// position/Hamiltonian-chain encoding, since event times are themselves
// decision variables) and it needs no intermediate level_i variables:
// Solution extraction evaluates the same term directly against the model.
type Buffer struct {
	name, uid string
	kind      BufferKind

	hasInitial, hasFinal             bool
	initialLevel, finalLevel         int
	hasBounds                        bool
	lowerBound, upperBound           int

	events []bufferEvent
}

func newBuffer(p *Problem, name string, kind BufferKind) (*Buffer, error) {
	uid, err := p.registry.register("Buffer", name)
	if err != nil {
		return nil, err
	}
	b := &Buffer{name: name, uid: uid, kind: kind}
	p.addBuffer(b)
	return b, nil
}

// NewNonConcurrentBuffer creates a Buffer whose load/unload events may never
// coincide in time.
func (p *Problem) NewNonConcurrentBuffer(name string) (*Buffer, error) {
	return newBuffer(p, name, NonConcurrentBuffer)
}

// NewConcurrentBuffer creates a Buffer whose events may coincide freely.
func (p *Problem) NewConcurrentBuffer(name string) (*Buffer, error) {
	return newBuffer(p, name, ConcurrentBuffer)
}

func (b *Buffer) Name() string { return b.name }
func (b *Buffer) UID() string  { return b.uid }

func (b *Buffer) SetInitialLevel(v int) *Buffer {
	b.hasInitial, b.initialLevel = true, v
	return b
}

func (b *Buffer) SetFinalLevel(v int) *Buffer {
	b.hasFinal, b.finalLevel = true, v
	return b
}

// SetBounds fixes the buffer's [lb, ub] level range. A crossing range
// (lb > ub) is a ModelError.
func (b *Buffer) SetBounds(lb, ub int) (*Buffer, error) {
	if lb > ub {
		return nil, newModelError("buffer %q: lower_bound %d exceeds upper_bound %d", b.name, lb, ub)
	}
	b.hasBounds, b.lowerBound, b.upperBound = true, lb, ub
	return b, nil
}

// TaskLoadBuffer records task's load event (+quantity at task.end), the
// buffer linkage counterpart to TaskUnloadBuffer below.
func TaskLoadBuffer(task *Task, buf *Buffer, quantity int) {
	buf.events = append(buf.events, bufferEvent{task: task, atEnd: true, quantity: quantity})
}

// TaskUnloadBuffer records task's unload event (-quantity at task.start).
func TaskUnloadBuffer(task *Task, buf *Buffer, quantity int) {
	buf.events = append(buf.events, bufferEvent{task: task, atEnd: false, quantity: -quantity})
}

func (e bufferEvent) time() backend.IntTerm {
	if e.atEnd {
		return e.task.End
	}
	return e.task.Start
}

// levelAt returns the term for this buffer's level at time t: initial_level
// plus every event at-or-before t whose owning task is scheduled.
func (b *Buffer) levelAt(t backend.IntTerm) backend.IntTerm {
	initial := 0
	if b.hasInitial {
		initial = b.initialLevel
	}
	terms := []backend.IntTerm{backend.IntConst(initial)}
	for _, e := range b.events {
		cond := AndTerm(e.task.ScheduledTerm(), backend.Cmp{Op: backend.OpLe, A: e.time(), B: t})
		terms = append(terms, backend.IntIte{Cond: cond, Then: backend.IntConst(e.quantity), Else: backend.IntConst(0)})
	}
	return backend.Sum(terms...)
}

// contribute asserts the bounds invariant at every event breakpoint, the
// final-level invariant at the horizon, and (for NonConcurrentBuffer) the
// pairwise time-disjointness of every two different tasks' events.
func (b *Buffer) contribute(ctx *EncoderCtx) error {
	if b.hasBounds {
		for _, e := range b.events {
			lvl := b.levelAt(e.time())
			ctx.AssertGuarded(e.task.ScheduledTerm(), backend.Cmp{Op: backend.OpGe, A: lvl, B: backend.IntConst(b.lowerBound)})
			ctx.AssertGuarded(e.task.ScheduledTerm(), backend.Cmp{Op: backend.OpLe, A: lvl, B: backend.IntConst(b.upperBound)})
		}
	}

	if b.hasFinal {
		ctx.Assert(backend.Cmp{Op: backend.OpEq, A: b.levelAt(ctx.Horizon()), B: backend.IntConst(b.finalLevel)})
	}

	if b.kind == NonConcurrentBuffer {
		for i := 0; i < len(b.events); i++ {
			for j := i + 1; j < len(b.events); j++ {
				a, c := b.events[i], b.events[j]
				if a.task == c.task {
					continue
				}
				guard := AndTerm(a.task.ScheduledTerm(), c.task.ScheduledTerm())
				ctx.AssertGuarded(guard, backend.Cmp{Op: backend.OpNe, A: a.time(), B: c.time()})
			}
		}
	}

	return nil
}
