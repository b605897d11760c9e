package rcpsp

import (
	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// Problem is the root container entities attach to: a Problem owns the
// name registry, the horizon, and every Task/Resource/Buffer/Constraint/
// Indicator/Objective built against it. It is not safe for
// concurrent use while being built; Solve seals it against further
// registrations.
type Problem struct {
	name     string
	registry *registry

	horizonFixed bool
	horizonValue int
	maxHorizon   int

	tasks       []*Task
	resources   []Resource
	buffers     []*Buffer
	constraints []Constraint
	indicators  []*Indicator
	objectives  []*Objective

	resourceUsages map[string][]*usage
}

// NewProblem creates an empty Problem. maxHorizon bounds every task's
// [0, maxHorizon] domain and is itself the horizon when none is fixed;
// it is overridable per-Solve via Options.MaxHorizon.
func NewProblem(name string) *Problem {
	return &Problem{name: name, registry: newRegistry(), maxHorizon: DefaultOptions().MaxHorizon}
}

func (p *Problem) Name() string { return p.name }

// SetHorizon fixes the scheduling horizon to a constant; without a call to this, the
// horizon is itself bounded by Options.MaxHorizon but not otherwise
// constrained.
func (p *Problem) SetHorizon(h int) *Problem {
	p.horizonFixed = true
	p.horizonValue = h
	return p
}

// SetMaxHorizon overrides the variable-domain ceiling used when no fixed
// horizon is set.
func (p *Problem) SetMaxHorizon(h int) *Problem {
	p.maxHorizon = h
	return p
}

func (p *Problem) addBuffer(b *Buffer) { p.buffers = append(p.buffers, b) }

// AddConstraint attaches a top-level Constraint, asserted unconditionally
//.
func (p *Problem) AddConstraint(c Constraint) *Problem {
	p.constraints = append(p.constraints, c)
	return p
}

// AddIndicator registers a named Indicator so it can be retrieved from the
// Solution after solving.
func (p *Problem) AddIndicator(ind *Indicator) *Problem {
	p.indicators = append(p.indicators, ind)
	return p
}

// AddObjective appends a weighted objective term to the driver's signed sum
//.
func (p *Problem) AddObjective(o *Objective) *Problem {
	p.objectives = append(p.objectives, o)
	return p
}

// encode walks every attached entity in dependency order and emits its
// assertions against ctx: tasks first (so their Start/End/Duration/
// Scheduled fields exist), then resource assignments (which read those
// fields), then buffers, then top-level constraints, leaving indicators to
// build lazily (they may be referenced by several objectives) and
// objectives to the driver, a fixed encoding order.
func (p *Problem) encode(ctx *EncoderCtx) error {
	for _, t := range p.tasks {
		if err := t.contribute(ctx); err != nil {
			return err
		}
	}

	if err := p.encodeResourceAssignments(ctx); err != nil {
		return err
	}

	for _, b := range p.buffers {
		if err := b.contribute(ctx); err != nil {
			return err
		}
	}

	for _, c := range p.constraints {
		term, err := c.contribute(ctx)
		if err != nil {
			return err
		}
		ctx.Assert(term)
	}

	return nil
}

// horizonTerm returns the IntTerm every task's end is bounded by, and the
// numeric ceiling used to size variable domains.
func (p *Problem) horizonTerm() (backend.IntTerm, int) {
	maxH := p.maxHorizon
	if p.horizonFixed {
		return backend.IntConst(p.horizonValue), p.horizonValue
	}
	return backend.IntConst(maxH), maxH
}

// indicatorByName and objectiveNames back Solution's name-keyed accessors.
func (p *Problem) indicatorByName(name string) *Indicator {
	for _, ind := range p.indicators {
		if ind.Name() == name {
			return ind
		}
	}
	return nil
}
