package fdbackend

import "github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"

// Model is the concrete assignment returned by a satisfying Backend.Check.
type Model struct {
	ints  map[int]int
	bools map[int]bool
}

func (m *Model) Int(v backend.IntVar) int {
	return m.ints[v.ID]
}

func (m *Model) Bool(v backend.BoolVar) bool {
	return m.bools[v.ID]
}

func (m *Model) Eval(t backend.IntTerm) int {
	a := &assignment{ints: m.ints, intSet: setOf(m.ints), bools: m.bools, boolSet: boolSetOf(m.bools)}
	v, _ := evalInt(t, a)
	return v
}

func setOf(m map[int]int) map[int]bool {
	out := make(map[int]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}

func boolSetOf(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
