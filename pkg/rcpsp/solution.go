package rcpsp

import (
	"sort"

	"github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"
)

// TaskRecord is a task's concrete schedule, extracted from a solved model
//. Struct tags back the façade's schedule export.
type TaskRecord struct {
	Start     int      `yaml:"start"`
	End       int      `yaml:"end"`
	Duration  int      `yaml:"duration"`
	Scheduled bool     `yaml:"scheduled"`
	Assigned  []string `yaml:"assigned,omitempty"`
}

// BufferPoint is one breakpoint of a buffer's level timeline.
type BufferPoint struct {
	Time  int `yaml:"time"`
	Level int `yaml:"level"`
}

// Solution is an immutable snapshot of one satisfying (or, in incremental
// mode, incumbent-optimal) assignment. Optimal reports
// whether the driver proved the value returned cannot be improved further
// (false after a timeout with an incumbent still available).
type Solution struct {
	horizon    int
	tasks      map[string]TaskRecord
	buffers    map[string][]BufferPoint
	indicators map[string]int
	optimal    bool
}

func (s *Solution) Horizon() int { return s.horizon }
func (s *Solution) Optimal() bool { return s.optimal }

func (s *Solution) Task(name string) (TaskRecord, bool) {
	r, ok := s.tasks[name]
	return r, ok
}

func (s *Solution) Buffer(name string) ([]BufferPoint, bool) {
	r, ok := s.buffers[name]
	return r, ok
}

func (s *Solution) Indicator(name string) (int, bool) {
	v, ok := s.indicators[name]
	return v, ok
}

// TaskNames, BufferNames and IndicatorNames enumerate the entities carried
// by this snapshot in stable (sorted) order, for callers outside the
// package that need to walk the full solution — e.g. the façade's schedule
// export (SPEC_FULL.md §3.7).
func (s *Solution) TaskNames() []string { return sortedKeys(s.tasks) }

func (s *Solution) BufferNames() []string { return sortedKeysBuf(s.buffers) }

func (s *Solution) IndicatorNames() []string { return sortedKeysInt(s.indicators) }

func sortedKeys(m map[string]TaskRecord) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysBuf(m map[string][]BufferPoint) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeysInt(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func extractBufferTimeline(m backend.Model, buf *Buffer) []BufferPoint {
	initial := 0
	if buf.hasInitial {
		initial = buf.initialLevel
	}
	pts := []BufferPoint{{Time: 0, Level: initial}}
	for _, e := range buf.events {
		if !evalPresence(m, e.task.ScheduledTerm()) {
			continue
		}
		t := m.Eval(e.time())
		lvl := m.Eval(buf.levelAt(e.time()))
		pts = append(pts, BufferPoint{Time: t, Level: lvl})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	return pts
}

// extractSolution builds a Solution snapshot from a solved model, per
// Problem.encode's fixed entity set.
func extractSolution(p *Problem, m backend.Model, optimal bool) (*Solution, error) {
	_, maxH := p.horizonTerm()
	sol := &Solution{
		horizon:    maxH,
		tasks:      make(map[string]TaskRecord, len(p.tasks)),
		buffers:    make(map[string][]BufferPoint, len(p.buffers)),
		indicators: make(map[string]int, len(p.indicators)),
		optimal:    optimal,
	}

	for _, t := range p.tasks {
		scheduled := true
		if t.optional {
			scheduled = m.Bool(t.Scheduled)
		}
		rec := TaskRecord{
			Start:     m.Int(t.Start),
			End:       m.Int(t.End),
			Duration:  m.Int(t.Duration),
			Scheduled: scheduled,
		}
		for name, usages := range p.resourceUsages {
			for _, u := range usages {
				if u.task == t && evalPresence(m, u.presence) {
					rec.Assigned = append(rec.Assigned, name)
				}
			}
		}
		sol.tasks[t.name] = rec
	}

	for _, b := range p.buffers {
		sol.buffers[b.name] = extractBufferTimeline(m, b)
	}

	for _, ind := range p.indicators {
		if ind.postHoc != nil {
			v, err := ind.postHoc(m)
			if err != nil {
				return nil, err
			}
			sol.indicators[ind.name] = v
			continue
		}
		sol.indicators[ind.name] = m.Int(ind.val)
	}

	return sol, nil
}
