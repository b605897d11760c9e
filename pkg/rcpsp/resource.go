package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// Resource is the common interface of Worker and CumulativeWorker
//.
type Resource interface {
	Name() string
	UID() string
	// Capacity is 1 for a Worker, size for a CumulativeWorker.
	Capacity() int
	Productivity() int
	Cost() Function
}

// Worker processes at most one task per time period.
type Worker struct {
	name, uid    string
	productivity int
	cost         Function
}

// NewWorker creates a Worker resource.
func (p *Problem) NewWorker(name string, productivity int) (*Worker, error) {
	if productivity < 0 {
		return nil, newModelError("worker %q: productivity must be non-negative", name)
	}
	uid, err := p.registry.register("Resource", name)
	if err != nil {
		return nil, err
	}
	w := &Worker{name: name, uid: uid, productivity: productivity}
	p.resources = append(p.resources, w)
	return w, nil
}

func (w *Worker) SetCost(f Function) *Worker { w.cost = f; return w }

func (w *Worker) Name() string       { return w.name }
func (w *Worker) UID() string        { return w.uid }
func (w *Worker) Capacity() int      { return 1 }
func (w *Worker) Productivity() int  { return w.productivity }
func (w *Worker) Cost() Function     { return w.cost }

// CumulativeWorker can host up to size concurrent tasks. Rather than
// modeling it as size internal "virtual slots", each a Worker, this
// encodes its capacity directly as a single event-instant sum constraint,
// which is equivalent and avoids introducing size auxiliary Worker
// identities per task pairing.
type CumulativeWorker struct {
	name, uid    string
	size         int
	productivity int
	cost         Function
}

// NewCumulativeWorker creates a CumulativeWorker resource with the given
// concurrent-slot size.
func (p *Problem) NewCumulativeWorker(name string, size, productivity int) (*CumulativeWorker, error) {
	if size < 1 {
		return nil, newModelError("cumulative worker %q: size must be >= 1, got %d", name, size)
	}
	if productivity < 0 {
		return nil, newModelError("cumulative worker %q: productivity must be non-negative", name)
	}
	uid, err := p.registry.register("Resource", name)
	if err != nil {
		return nil, err
	}
	c := &CumulativeWorker{name: name, uid: uid, size: size, productivity: productivity}
	p.resources = append(p.resources, c)
	return c, nil
}

func (c *CumulativeWorker) SetCost(f Function) *CumulativeWorker { c.cost = f; return c }

func (c *CumulativeWorker) Name() string      { return c.name }
func (c *CumulativeWorker) UID() string       { return c.uid }
func (c *CumulativeWorker) Capacity() int     { return c.size }
func (c *CumulativeWorker) Productivity() int { return c.productivity }
func (c *CumulativeWorker) Cost() Function    { return c.cost }

// SelectWorkersKind selects the cardinality policy of a SelectWorkers
// choice node.
type SelectWorkersKind int

const (
	SelectExact SelectWorkersKind = iota
	SelectMin
	SelectMax
)

// SelectWorkers is a combinatorial choice of n candidates from list,
// under an exact/min/max cardinality policy. It is not itself a Resource;
// it is attached to a Task via Task.RequireSelectWorkers.
type SelectWorkers struct {
	name, uid  string
	candidates []*Worker
	n          int
	kind       SelectWorkersKind

	picked map[string]backend.BoolVar
}

// NewSelectWorkers creates a SelectWorkers choice node.
func (p *Problem) NewSelectWorkers(name string, candidates []*Worker, n int, kind SelectWorkersKind) (*SelectWorkers, error) {
	if len(candidates) == 0 {
		return nil, newModelError("select_workers %q: candidate list must be non-empty", name)
	}
	if n < 0 || n > len(candidates) {
		return nil, newModelError("select_workers %q: n=%d out of range for %d candidates", name, n, len(candidates))
	}
	uid, err := p.registry.register("SelectWorkers", name)
	if err != nil {
		return nil, err
	}
	return &SelectWorkers{name: name, uid: uid, candidates: candidates, n: n, kind: kind, picked: make(map[string]backend.BoolVar)}, nil
}

func (sw *SelectWorkers) Name() string { return sw.name }

// contribute emits one picked_w boolean per candidate and the cardinality
// constraint over them. Safe to call multiple times (once per
// task that references this node); only declares variables once.
func (sw *SelectWorkers) contribute(ctx *EncoderCtx) error {
	if len(sw.picked) > 0 {
		return nil
	}
	var pickedSum []backend.IntTerm
	for _, w := range sw.candidates {
		b := ctx.DeclareBool(qualifiedVarName("SelectWorkers", sw.name, sw.uid, "picked_"+w.Name()))
		sw.picked[w.Name()] = b
		pickedSum = append(pickedSum, backend.IntIte{Cond: b, Then: backend.IntConst(1), Else: backend.IntConst(0)})
	}
	sum := backend.Sum(pickedSum...)
	switch sw.kind {
	case SelectExact:
		ctx.Assert(backend.Cmp{Op: backend.OpEq, A: sum, B: backend.IntConst(sw.n)})
	case SelectMin:
		ctx.Assert(backend.Cmp{Op: backend.OpGe, A: sum, B: backend.IntConst(sw.n)})
	case SelectMax:
		ctx.Assert(backend.Cmp{Op: backend.OpLe, A: sum, B: backend.IntConst(sw.n)})
	default:
		return newModelError("select_workers %q: unknown cardinality kind", sw.name)
	}
	return nil
}

// pickedTerm returns the picked_w boolean for the named candidate.
func (sw *SelectWorkers) pickedTerm(name string) backend.BoolTerm {
	return sw.picked[name]
}
