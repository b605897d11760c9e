package fdbackend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"

	"github.com/gitrdm/rcpspsmt/internal/parallel"
)

type intVarInfo struct {
	name   string
	lb, ub int
}

// level is one push() frame: the assertions and tracked assertions posted
// since the matching push, popped together in one Pop() call.
type level struct {
	asserts []backend.BoolTerm
	tracked map[string]backend.BoolTerm
}

// Backend is the reference in-process implementation of backend.Backend.
// It is not safe for concurrent use by multiple goroutines — Solver
// instances are not thread-safe; the rcpsp driver never shares one Backend
// across goroutines.
type Backend struct {
	intVars  []intVarInfo
	boolVars []string

	levels []level

	minimizeTerms []backend.IntTerm
	maximizeTerms []backend.IntTerm

	logic string
	// maxNodes bounds the search tree so Check() always returns instead of
	// running away on an unexpectedly large problem; configurable via
	// SetParam("max_nodes", n). 0 means unlimited (bounded only by ctx).
	maxNodes int

	// parallel mirrors Options.Parallel: when set, minimizeOne
	// probes candidate bounds concurrently via a taskPool
	// instead of the sequential ascending scan.
	parallel bool
	// parallelStrategy mirrors Options.ParallelStrategy, selecting which
	// taskPool implementation workerPool() builds. Empty means
	// rcpsp.ParallelShared.
	parallelStrategy string
	pool             taskPool
	poolOnce         sync.Once

	lastModel  *Model
	lastCore   []string
	paretoSeen [][]int
}

// New creates an empty reference backend.
func New() *Backend {
	return &Backend{
		levels:   []level{{tracked: make(map[string]backend.BoolTerm)}},
		maxNodes: 2_000_000,
	}
}

func (b *Backend) DeclareInt(name string, lb, ub int) backend.IntVar {
	id := len(b.intVars)
	b.intVars = append(b.intVars, intVarInfo{name: name, lb: lb, ub: ub})
	return backend.IntVar{Name: name, ID: id}
}

func (b *Backend) DeclareBool(name string) backend.BoolVar {
	id := len(b.boolVars)
	b.boolVars = append(b.boolVars, name)
	return backend.BoolVar{Name: name, ID: id}
}

func (b *Backend) Assert(t backend.BoolTerm) {
	top := &b.levels[len(b.levels)-1]
	top.asserts = append(top.asserts, t)
}

func (b *Backend) AssertTracked(label string, t backend.BoolTerm) {
	top := &b.levels[len(b.levels)-1]
	top.tracked[label] = t
}

func (b *Backend) Push() {
	b.levels = append(b.levels, level{tracked: make(map[string]backend.BoolTerm)})
}

func (b *Backend) Pop() {
	if len(b.levels) <= 1 {
		return
	}
	b.levels = b.levels[:len(b.levels)-1]
}

func (b *Backend) SetLogic(logic string) { b.logic = logic }

func (b *Backend) SetParam(key string, value any) {
	switch key {
	case "max_nodes":
		if n, ok := value.(int); ok {
			b.maxNodes = n
		}
	case "parallel":
		if v, ok := value.(bool); ok {
			b.parallel = v
		}
	case "parallel_strategy":
		if v, ok := value.(string); ok {
			b.parallelStrategy = v
		}
	}
}

// taskPool is the subset of internal/parallel's pool implementations that
// minimizeOneParallel needs: submit a probe, and tear the pool down once
// done with it. WorkerPool and WorkStealingWorkerPool both satisfy it.
type taskPool interface {
	Submit(ctx context.Context, task func()) error
	Shutdown()
}

// workerPool lazily starts the portfolio pool minimizeOne uses when
// b.parallel is set, sized to the host's CPU count via
// internal/parallel's default. b.parallelStrategy picks between the
// shared-queue WorkerPool (default) and the per-worker-deque
// WorkStealingWorkerPool.
func (b *Backend) workerPool() taskPool {
	b.poolOnce.Do(func() {
		switch b.parallelStrategy {
		case "work-stealing":
			b.pool = parallel.NewWorkStealingWorkerPool(0, 0)
		default:
			b.pool = parallel.NewWorkerPool(0)
		}
	})
	return b.pool
}

func (b *Backend) Minimize(t backend.IntTerm) {
	b.minimizeTerms = append(b.minimizeTerms, t)
}

func (b *Backend) Maximize(t backend.IntTerm) {
	negated := backend.MulConst{K: -1, Term: t}
	b.minimizeTerms = append(b.minimizeTerms, negated)
	b.maximizeTerms = append(b.maximizeTerms, t)
}

// allAssertions flattens every open push level into one assertion list.
func (b *Backend) allAssertions() []backend.BoolTerm {
	var out []backend.BoolTerm
	for _, lvl := range b.levels {
		out = append(out, lvl.asserts...)
	}
	return out
}

func (b *Backend) trackedByLabel(label string) (backend.BoolTerm, bool) {
	for i := len(b.levels) - 1; i >= 0; i-- {
		if t, ok := b.levels[i].tracked[label]; ok {
			return t, true
		}
	}
	return nil, false
}

func (b *Backend) Check(ctx context.Context, assumptions ...string) (backend.Status, error) {
	terms := b.allAssertions()
	for _, label := range assumptions {
		t, ok := b.trackedByLabel(label)
		if !ok {
			return backend.StatusUnknown, fmt.Errorf("fdbackend: unknown assumption label %q", label)
		}
		terms = append(terms, t)
	}

	model, status, err := b.search(ctx, terms)
	if err != nil {
		return backend.StatusUnknown, err
	}
	if status == backend.StatusSat {
		b.lastModel = model
		b.lastCore = nil
	} else if status == backend.StatusUnsat && len(assumptions) > 0 {
		b.lastCore = b.minimalCore(ctx, assumptions)
	}
	return status, nil
}

func (b *Backend) Model() backend.Model {
	return b.lastModel
}

func (b *Backend) UnsatCore() []string {
	return b.lastCore
}

// minimalCore implements a deletion-based (QuickXplain-lite) minimization:
// starting from the full assumption set known to be jointly unsatisfiable,
// drop one label at a time and keep the drop only if the remainder is
// still unsatisfiable, leaving a subset that is unsatisfiable but would
// become satisfiable if any one more label were removed.
func (b *Backend) minimalCore(ctx context.Context, assumptions []string) []string {
	core := append([]string(nil), assumptions...)
	for i := 0; i < len(core); {
		candidate := append(append([]string(nil), core[:i]...), core[i+1:]...)
		terms := b.allAssertions()
		for _, label := range candidate {
			if t, ok := b.trackedByLabel(label); ok {
				terms = append(terms, t)
			}
		}
		_, status, err := b.search(ctx, terms)
		if err == nil && status == backend.StatusUnsat {
			core = candidate
			continue
		}
		i++
	}
	return core
}

func (b *Backend) CheckOptimize(ctx context.Context, priority backend.Priority) (backend.Status, error) {
	switch priority {
	case backend.PriorityPareto:
		return b.checkPareto(ctx)
	case backend.PriorityBox, backend.PriorityLex:
		return b.checkLex(ctx)
	default:
		return backend.StatusUnknown, fmt.Errorf("fdbackend: unknown priority mode %v", priority)
	}
}

// checkLex optimizes each registered minimize term in registration order,
// fixing each to its optimal value before moving to the next — the "lex"
// priority policy. "box" mode delegates here too: box mode typically
// returns the lex solution when objectives cannot be reached simultaneously,
// and the reference backend does not attempt to additionally report
// per-objective independent optima.
func (b *Backend) checkLex(ctx context.Context) (backend.Status, error) {
	b.Push()
	defer b.Pop()

	var lastStatus backend.Status
	for _, obj := range b.minimizeTerms {
		status, best, model, err := b.minimizeOne(ctx, obj)
		if err != nil {
			return backend.StatusUnknown, err
		}
		if status != backend.StatusSat {
			return status, nil
		}
		b.lastModel = model
		lastStatus = status
		b.Assert(backend.Cmp{Op: backend.OpEq, A: obj, B: backend.IntConst(best)})
	}
	if len(b.minimizeTerms) == 0 {
		return b.Check(ctx)
	}
	return lastStatus, nil
}

// minimizeOne finds the minimum feasible value of obj via linear scan over
// its possible range, re-checking satisfiability at each candidate bound.
// This is a reference-quality, not performance-quality, implementation:
// real SMT optimize() backends use branch-and-bound / OMT techniques; here
// correctness over the bounded integer domains the rcpsp encoder produces
// matters more than search efficiency.
func (b *Backend) minimizeOne(ctx context.Context, obj backend.IntTerm) (backend.Status, int, *Model, error) {
	if b.parallel {
		return b.minimizeOneParallel(ctx, obj)
	}
	lo, hi := b.rangeOf(obj)
	var bestModel *Model
	best := 0
	found := false
	for v := lo; v <= hi; v++ {
		b.Push()
		b.Assert(backend.Cmp{Op: backend.OpLe, A: obj, B: backend.IntConst(v)})
		model, status, err := b.search(ctx, b.allAssertions())
		b.Pop()
		if err != nil {
			return backend.StatusUnknown, 0, nil, err
		}
		if status == backend.StatusSat {
			best = v
			bestModel = model
			found = true
			break
		}
	}
	if !found {
		return backend.StatusUnsat, 0, nil, nil
	}
	return backend.StatusSat, best, bestModel, nil
}

// minimizeOneParallel is minimizeOne's Options.Parallel-gated counterpart:
// instead of scanning candidate bounds one at a time, it submits one
// independent search per candidate to b.workerPool() (shared-queue or
// work-stealing, per Options.ParallelStrategy) and keeps the smallest
// satisfiable bound. Every submitted search builds its own terms slice and
// its own local node counter (see backtrack), so concurrent searches never
// share mutable Backend state beyond the read-only variable tables declared
// before Check.
func (b *Backend) minimizeOneParallel(ctx context.Context, obj backend.IntTerm) (backend.Status, int, *Model, error) {
	lo, hi := b.rangeOf(obj)
	base := b.allAssertions()
	pool := b.workerPool()

	type probe struct {
		model *Model
		ok    bool
	}
	n := hi - lo + 1
	results := make([]probe, n)

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	for i := 0; i < n; i++ {
		i, v := i, lo+i
		terms := append(append([]backend.BoolTerm(nil), base...), backend.Cmp{Op: backend.OpLe, A: obj, B: backend.IntConst(v)})
		wg.Add(1)
		if err := pool.Submit(searchCtx, func() {
			defer wg.Done()
			model, status, err := b.search(searchCtx, terms)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			if status == backend.StatusSat {
				results[i] = probe{model: model, ok: true}
			}
		}); err != nil {
			wg.Done()
			errOnce.Do(func() { firstErr = err })
		}
	}
	wg.Wait()

	if firstErr != nil {
		return backend.StatusUnknown, 0, nil, firstErr
	}
	for i, r := range results {
		if r.ok {
			return backend.StatusSat, lo + i, r.model, nil
		}
	}
	return backend.StatusUnsat, 0, nil, nil
}

// rangeOf bounds an objective term using the declared bounds of the
// integer variables it mentions, conservative but always safe for the
// linear (Add/Sub/MulConst) terms the encoder builds.
func (b *Backend) rangeOf(t backend.IntTerm) (lo, hi int) {
	switch term := t.(type) {
	case backend.IntConst:
		return int(term), int(term)
	case backend.IntVar:
		info := b.intVars[term.ID]
		return info.lb, info.ub
	case backend.Add:
		for _, sub := range term.Terms {
			l, h := b.rangeOf(sub)
			lo += l
			hi += h
		}
		return lo, hi
	case backend.Sub:
		al, ah := b.rangeOf(term.A)
		bl, bh := b.rangeOf(term.B)
		return al - bh, ah - bl
	case backend.MulConst:
		l, h := b.rangeOf(term.Term)
		if term.K >= 0 {
			return term.K * l, term.K * h
		}
		return term.K * h, term.K * l
	default:
		return -1 << 30, 1 << 30
	}
}

// checkPareto returns one new objective-value combination per call. It
// blocks previously returned objective-value combinations so repeated calls
// enumerate distinct combinations, stopping (StatusUnsat) once no
// unreturned combination remains satisfiable. Dominated combinations are
// not filtered out, so the points returned are not necessarily
// Pareto-optimal.
func (b *Backend) checkPareto(ctx context.Context) (backend.Status, error) {
	b.Push()
	defer b.Pop()

	for _, seen := range b.paretoSeen {
		var diffs []backend.BoolTerm
		for i, obj := range b.minimizeTerms {
			diffs = append(diffs, backend.Cmp{Op: backend.OpNe, A: obj, B: backend.IntConst(seen[i])})
		}
		b.Assert(backend.Or{Terms: diffs})
	}

	model, status, err := b.search(ctx, b.allAssertions())
	if err != nil {
		return backend.StatusUnknown, err
	}
	if status != backend.StatusSat {
		return status, nil
	}
	b.lastModel = model
	vec := make([]int, len(b.minimizeTerms))
	for i, obj := range b.minimizeTerms {
		vec[i] = model.Eval(obj)
	}
	b.paretoSeen = append(b.paretoSeen, vec)
	return backend.StatusSat, nil
}

// search runs a smallest-domain-first backtracking DFS, the classic
// SolverConfig-style variable-ordering heuristic, to find any assignment
// satisfying all of terms.
func (b *Backend) search(ctx context.Context, terms []backend.BoolTerm) (*Model, backend.Status, error) {
	intSet := make(map[int]bool)
	boolSet := make(map[int]bool)
	for _, t := range terms {
		boolVarsIn(t, boolSet, intSet)
	}
	// Every declared variable participates even if some assertion omits
	// it, so a full model is always returned.
	for i := range b.intVars {
		intSet[i] = true
	}
	for i := range b.boolVars {
		boolSet[i] = true
	}

	order := b.buildOrder(intSet, boolSet)
	a := newAssignment()
	var nodeCounter int64

	ok, err := b.backtrack(ctx, terms, order, 0, a, &nodeCounter)
	if err != nil {
		return nil, backend.StatusUnknown, err
	}
	if !ok {
		return nil, backend.StatusUnsat, nil
	}
	return &Model{ints: a.ints, bools: a.bools}, backend.StatusSat, nil
}

type orderEntry struct {
	isBool bool
	id     int
	lb, ub int
}

func (b *Backend) buildOrder(intSet, boolSet map[int]bool) []orderEntry {
	var order []orderEntry
	for id := range boolSet {
		order = append(order, orderEntry{isBool: true, id: id})
	}
	for id := range intSet {
		info := b.intVars[id]
		order = append(order, orderEntry{isBool: false, id: id, lb: info.lb, ub: info.ub})
	}
	sort.Slice(order, func(i, j int) bool {
		si := domainSize(order[i])
		sj := domainSize(order[j])
		if si != sj {
			return si < sj
		}
		if order[i].isBool != order[j].isBool {
			return order[i].isBool // bools first on ties
		}
		return order[i].id < order[j].id
	})
	return order
}

func domainSize(e orderEntry) int {
	if e.isBool {
		return 2
	}
	return e.ub - e.lb + 1
}

// backtrack takes its node budget as a per-call counter (rather than a
// Backend field) so concurrent search calls sharing one Backend's read-only
// variable tables, as minimizeOneParallel makes, never race on it.
func (b *Backend) backtrack(ctx context.Context, terms []backend.BoolTerm, order []orderEntry, idx int, a *assignment, nodeCounter *int64) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	n := atomic.AddInt64(nodeCounter, 1)
	if b.maxNodes > 0 && n > int64(b.maxNodes) {
		return false, fmt.Errorf("fdbackend: exceeded max_nodes=%d without finding a model", b.maxNodes)
	}

	if idx == len(order) {
		for _, t := range terms {
			v, ok := evalBool(t, a)
			if !ok || !v {
				return false, nil
			}
		}
		return true, nil
	}

	entry := order[idx]
	if entry.isBool {
		for _, v := range [2]bool{false, true} {
			a.setBool(entry.id, v)
			if b.partialOK(terms, a) {
				ok, err := b.backtrack(ctx, terms, order, idx+1, a, nodeCounter)
				if err != nil || ok {
					return ok, err
				}
			}
		}
		delete(a.bools, entry.id)
		delete(a.boolSet, entry.id)
		return false, nil
	}

	for v := entry.lb; v <= entry.ub; v++ {
		a.setInt(entry.id, v)
		if b.partialOK(terms, a) {
			ok, err := b.backtrack(ctx, terms, order, idx+1, a, nodeCounter)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	delete(a.ints, entry.id)
	delete(a.intSet, entry.id)
	return false, nil
}

// partialOK forward-checks every term that is already fully determined by
// the current partial assignment, pruning branches as early as possible.
func (b *Backend) partialOK(terms []backend.BoolTerm, a *assignment) bool {
	for _, t := range terms {
		if v, ok := evalBool(t, a); ok && !v {
			return false
		}
	}
	return true
}
