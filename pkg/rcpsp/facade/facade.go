// Package facade renders a solved rcpsp.Solution into a serializable,
// presentation-neutral schedule document. The core package keeps its
// Solution type opaque (accessor methods, not exported fields) so the
// solving path never depends on an encoding; facade is the one place that
// walks a Solution and produces something a CLI, a file, or a web handler
// can hand off as-is.
package facade

import (
	"fmt"
	"io"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp"
	"gopkg.in/yaml.v3"
)

// Schedule is the exported mirror of a rcpsp.Solution, built once via
// NewSchedule and safe to marshal with any struct-tag-aware encoder.
type Schedule struct {
	Problem    string                         `yaml:"problem"`
	Horizon    int                            `yaml:"horizon"`
	Optimal    bool                           `yaml:"optimal"`
	Tasks      map[string]rcpsp.TaskRecord    `yaml:"tasks"`
	Buffers    map[string][]rcpsp.BufferPoint `yaml:"buffers,omitempty"`
	Indicators map[string]int                `yaml:"indicators,omitempty"`
}

// NewSchedule walks sol via its exported accessors and copies every task,
// buffer, and indicator into an ordinary, tag-bearing struct.
func NewSchedule(problemName string, sol *rcpsp.Solution) *Schedule {
	sch := &Schedule{
		Problem: problemName,
		Horizon: sol.Horizon(),
		Optimal: sol.Optimal(),
		Tasks:   make(map[string]rcpsp.TaskRecord),
	}

	for _, name := range sol.TaskNames() {
		rec, _ := sol.Task(name)
		sch.Tasks[name] = rec
	}

	if names := sol.BufferNames(); len(names) > 0 {
		sch.Buffers = make(map[string][]rcpsp.BufferPoint, len(names))
		for _, name := range names {
			pts, _ := sol.Buffer(name)
			sch.Buffers[name] = pts
		}
	}

	if names := sol.IndicatorNames(); len(names) > 0 {
		sch.Indicators = make(map[string]int, len(names))
		for _, name := range names {
			v, _ := sol.Indicator(name)
			sch.Indicators[name] = v
		}
	}

	return sch
}

// WriteYAML marshals the schedule to w.
func (s *Schedule) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("facade: marshal schedule: %w", err)
	}
	_, err = w.Write(data)
	return err
}
