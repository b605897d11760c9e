package rcpsp

import "time"

// OptimizerKind selects the solver driver's top-level strategy.
type OptimizerKind string

const (
	OptimizerIncremental OptimizerKind = "incremental"
	OptimizerOptimize    OptimizerKind = "optimize"
)

// OptimizePriority selects the multi-objective composition policy used
// when OptimizerKind is OptimizerOptimize.
type OptimizePriority string

const (
	PriorityLex    OptimizePriority = "lex"
	PriorityBox    OptimizePriority = "box"
	PriorityPareto OptimizePriority = "pareto"
)

// ParallelStrategy selects which internal/parallel pool implementation
// backs a Parallel-enabled search: a shared task queue, or per-worker
// deques with work stealing.
type ParallelStrategy string

const (
	// ParallelShared submits every candidate-bound probe to a single
	// shared task queue drained by a fixed worker set.
	ParallelShared ParallelStrategy = "shared"

	// ParallelWorkStealing gives each worker its own deque and lets idle
	// workers steal from busier ones, trading shared-queue contention for
	// steal overhead; better suited to probe sets with uneven per-item
	// search cost.
	ParallelWorkStealing ParallelStrategy = "work-stealing"
)

// Options configures a Solver, following the familiar SolverConfig /
// DefaultSolverConfig shape of a struct-of-knobs with a sensible-defaults
// constructor.
type Options struct {
	// Debug enables unsat-core mode: every assertion is
	// reified behind a tracking literal and Check runs with all literals
	// as assumptions, so an Unsatisfiable result carries a minimal core.
	Debug bool

	// MaxTime bounds wall-clock solving time; zero means no deadline.
	MaxTime time.Duration

	// Parallel is a backend hint only: it never changes the
	// driver's sequential control flow, only whether the backend may use
	// an internal portfolio / parallel propagation strategy.
	Parallel bool

	// RandomValues asks the backend to prefer randomized value ordering
	// where it has a choice, primarily useful for find_another_solution
	// diversity and for sampling among equally good schedules.
	RandomValues bool

	// Logic is an optional SMT-LIB logic hint forwarded verbatim to the
	// backend's set_logic (e.g. "QF_IDL", "QF_LIA", "QF_UFIDL"); empty
	// leaves the backend default.
	Logic string

	Verbosity int

	Optimizer        OptimizerKind
	OptimizePriority OptimizePriority

	// MaxHorizon is the large constant ceiling used as the horizon when
	// Problem.Horizon is not fixed (the horizon is then this constant, not
	// a decision variable); ignored when Problem.Horizon is fixed.
	MaxHorizon int

	// CheckRateLimit caps how often the driver is willing to call the
	// backend's check() in the incremental loop, useful when the backend
	// is a slow external process; zero disables limiting. Wired on
	// golang.org/x/time/rate in the driver.
	CheckRateLimit float64

	// MaxNodes bounds the reference fdbackend's search tree; forwarded
	// via SetParam("max_nodes", ...). Zero keeps the backend default.
	MaxNodes int

	// ParallelStrategy selects the internal/parallel pool implementation
	// used when Parallel is set. Empty defaults to ParallelShared.
	ParallelStrategy ParallelStrategy
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Optimizer:        OptimizerIncremental,
		OptimizePriority: PriorityLex,
		MaxHorizon:       100000,
		MaxTime:          30 * time.Second,
	}
}
