package rcpsp

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// Stats reports diagnostics about a Solver's run: a small counting/timing
// accumulator handed back as a plain value type rather than printed.
type Stats struct {
	CheckCalls     int
	TotalCheckTime time.Duration
	LastStatus     backend.Status
}

// Solver drives a Problem to a Solution against a concrete Backend,
// implementing the incremental-bisection and backend-optimize strategies.
// Not safe for concurrent use; a Solver owns its Backend's push/pop stack
// exclusively.
type Solver struct {
	p    *Problem
	be   backend.Backend
	opts Options

	ctx     *EncoderCtx
	limiter *rate.Limiter

	lastSolution *Solution
	lastModel    backend.Model
	stats        Stats
}

// NewSolver creates a Solver. The Problem is encoded against be lazily, on
// the first Solve call.
func NewSolver(p *Problem, be backend.Backend, opts Options) *Solver {
	return &Solver{p: p, be: be, opts: opts}
}

// Stats returns a snapshot of diagnostics accumulated across every
// checkedCheck call issued so far.
func (s *Solver) Stats() Stats { return s.stats }

func (s *Solver) encode() error {
	if s.ctx != nil {
		return nil
	}
	if s.opts.MaxHorizon > 0 {
		s.p.maxHorizon = s.opts.MaxHorizon
	}
	hTerm, maxH := s.p.horizonTerm()
	s.ctx = newEncoderCtx(s.be, hTerm, maxH, s.opts.Debug)

	if s.opts.Logic != "" {
		s.be.SetLogic(s.opts.Logic)
	}
	if s.opts.MaxNodes > 0 {
		s.be.SetParam("max_nodes", s.opts.MaxNodes)
	}
	s.be.SetParam("parallel", s.opts.Parallel)
	if s.opts.ParallelStrategy != "" {
		s.be.SetParam("parallel_strategy", string(s.opts.ParallelStrategy))
	}
	s.be.SetParam("random_values", s.opts.RandomValues)
	if s.opts.CheckRateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.opts.CheckRateLimit), 1)
	}

	if err := s.p.encode(s.ctx); err != nil {
		return err
	}
	for _, ind := range s.p.indicators {
		if ind.postHoc == nil {
			if _, err := ind.Term(s.ctx); err != nil {
				return err
			}
		}
	}
	s.p.registry.seal()
	return nil
}

// checkedCheck applies Options.CheckRateLimit before delegating to the
// backend's Check. Any error is classified uniformly regardless of which
// call site issued it: a context deadline or cancellation is always
// KindTimeout, everything else is KindBackendFailure.
func (s *Solver) checkedCheck(ctx context.Context, assumptions ...string) (backend.Status, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return backend.StatusUnknown, classifyCheckErr(err)
		}
	}
	start := time.Now()
	status, err := s.be.Check(ctx, assumptions...)
	s.stats.CheckCalls++
	s.stats.TotalCheckTime += time.Since(start)
	s.stats.LastStatus = status
	if err != nil {
		return status, classifyCheckErr(err)
	}
	return status, nil
}

func classifyCheckErr(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newTimeoutFailure(err)
	}
	return newBackendFailure(err)
}

func (s *Solver) unsatError() error {
	e := &Error{Kind: KindUnsatisfiable, Message: "no satisfying schedule"}
	if s.opts.Debug {
		e.Core = s.be.UnsatCore()
	}
	return e
}

// Solve encodes the Problem (once) and runs the configured strategy. A
// positive Options.MaxTime bounds the whole call via a derived deadline,
// the familiar optConfig.timeLimit pattern.
func (s *Solver) Solve(ctx context.Context) (*Solution, error) {
	if err := s.encode(); err != nil {
		return nil, err
	}
	if s.opts.MaxTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MaxTime)
		defer cancel()
	}
	if s.opts.Optimizer == OptimizerOptimize {
		return s.solveOptimize(ctx)
	}
	return s.solveIncremental(ctx)
}

// objectiveSign returns the signed weight to fold an Objective into the
// incremental mode's single minimization sum E: maximization
// objectives are negated. ObjExact is treated the same as Minimize — an
// Open Question decision (see DESIGN.md): "exact" names a kind without
// ever defining a target value to match, so it is folded into the same
// signed sum as a plain minimization term.
func objectiveSign(o *Objective) int {
	if o.kind == Maximize {
		return -o.weight
	}
	return o.weight
}

// solveIncremental runs the incremental-bisection loop: a single push(),
// repeated tighten-and-check, pop() on exit.
func (s *Solver) solveIncremental(ctx context.Context) (*Solution, error) {
	if len(s.p.objectives) == 0 {
		status, err := s.checkedCheck(ctx)
		if err != nil {
			return nil, err
		}
		switch status {
		case backend.StatusUnsat:
			return nil, s.unsatError()
		case backend.StatusUnknown:
			return nil, &Error{Kind: KindUnknown, Message: "backend returned unknown"}
		}
		m := s.be.Model()
		sol, err := extractSolution(s.p, m, true)
		if err != nil {
			return nil, err
		}
		s.lastSolution, s.lastModel = sol, m
		return sol, nil
	}

	var terms []backend.IntTerm
	for _, o := range s.p.objectives {
		val, err := o.indicator.Term(s.ctx)
		if err != nil {
			return nil, err
		}
		terms = append(terms, backend.MulConst{K: objectiveSign(o), Term: val})
	}
	E := backend.Sum(terms...)

	s.be.Push()
	defer s.be.Pop()

	status, err := s.checkedCheck(ctx)
	if err != nil {
		return nil, err
	}
	if status == backend.StatusUnsat {
		return nil, s.unsatError()
	}
	if status == backend.StatusUnknown {
		return nil, &Error{Kind: KindUnknown, Message: "backend returned unknown"}
	}

	m := s.be.Model()
	v := m.Eval(E)
	incumbent, err := extractSolution(s.p, m, false)
	if err != nil {
		return nil, err
	}
	s.lastModel = m

	for {
		s.be.Assert(backend.Cmp{Op: backend.OpLt, A: E, B: backend.IntConst(v)})
		status, err = s.checkedCheck(ctx)
		if err != nil {
			incumbent.optimal = false
			s.lastSolution = incumbent
			return incumbent, err
		}
		if status != backend.StatusSat {
			break
		}
		m = s.be.Model()
		v = m.Eval(E)
		next, err := extractSolution(s.p, m, false)
		if err != nil {
			return nil, err
		}
		incumbent, s.lastModel = next, m
	}

	incumbent.optimal = status == backend.StatusUnsat
	s.lastSolution = incumbent
	return incumbent, nil
}

func mapPriority(p OptimizePriority) backend.Priority {
	switch p {
	case PriorityBox:
		return backend.PriorityBox
	case PriorityPareto:
		return backend.PriorityPareto
	default:
		return backend.PriorityLex
	}
}

// solveOptimize runs the backend-optimize strategy: register every
// objective with the backend's minimize/maximize API, then run one
// CheckOptimize under the configured priority.
func (s *Solver) solveOptimize(ctx context.Context) (*Solution, error) {
	for _, o := range s.p.objectives {
		val, err := o.indicator.Term(s.ctx)
		if err != nil {
			return nil, err
		}
		switch o.kind {
		case Maximize:
			s.be.Maximize(val)
		default:
			s.be.Minimize(val)
		}
	}

	status, err := s.be.CheckOptimize(ctx, mapPriority(s.opts.OptimizePriority))
	if err != nil {
		return nil, classifyCheckErr(err)
	}
	switch status {
	case backend.StatusUnsat:
		return nil, s.unsatError()
	case backend.StatusUnknown:
		return nil, &Error{Kind: KindUnknown, Message: "backend returned unknown"}
	}

	m := s.be.Model()
	sol, err := extractSolution(s.p, m, true)
	if err != nil {
		return nil, err
	}
	s.lastSolution, s.lastModel = sol, m
	return sol, nil
}

// EnumerateParetoFront repeatedly calls CheckOptimize under PriorityPareto
// until the backend reports exhaustion (Unsat), collecting one Solution per
// distinct Pareto-optimal point. limit bounds the number of
// points returned; zero means unbounded.
func (s *Solver) EnumerateParetoFront(ctx context.Context, limit int) ([]*Solution, error) {
	if err := s.encode(); err != nil {
		return nil, err
	}
	for _, o := range s.p.objectives {
		val, err := o.indicator.Term(s.ctx)
		if err != nil {
			return nil, err
		}
		switch o.kind {
		case Maximize:
			s.be.Maximize(val)
		default:
			s.be.Minimize(val)
		}
	}

	var front []*Solution
	for limit == 0 || len(front) < limit {
		status, err := s.be.CheckOptimize(ctx, backend.PriorityPareto)
		if err != nil {
			return front, classifyCheckErr(err)
		}
		if status != backend.StatusSat {
			break
		}
		sol, err := extractSolution(s.p, s.be.Model(), true)
		if err != nil {
			return front, err
		}
		front = append(front, sol)
	}
	return front, nil
}

// FindAnotherSolution asserts v != its value in the most recent solution,
// checks, and pops the assertion before returning. A nil, nil result means the backend proved no other value of v
// is reachable; an unknown result is returned as a KindUnknown error.
func (s *Solver) FindAnotherSolution(ctx context.Context, v backend.IntVar) (*Solution, error) {
	if s.lastModel == nil {
		return nil, newEncodingError("find_another_solution: no prior solution to diverge from")
	}
	x0 := s.lastModel.Int(v)

	s.be.Push()
	defer s.be.Pop()
	s.be.Assert(backend.Cmp{Op: backend.OpNe, A: v, B: backend.IntConst(x0)})

	status, err := s.checkedCheck(ctx)
	if err != nil {
		return nil, err
	}
	if status == backend.StatusUnknown {
		return nil, &Error{Kind: KindUnknown, Message: "backend returned unknown"}
	}
	if status != backend.StatusSat {
		return nil, nil
	}

	m := s.be.Model()
	sol, err := extractSolution(s.p, m, true)
	if err != nil {
		return nil, err
	}
	s.lastSolution, s.lastModel = sol, m
	return sol, nil
}
