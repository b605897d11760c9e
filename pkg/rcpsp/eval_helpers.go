package rcpsp

import "github.com/gitrdm/rcpspsmt/pkg/rcpsp/backend"

// evalPresence evaluates the small vocabulary of BoolTerm shapes this
// package builds for a usage's "presence" guard (BoolConst, a single
// BoolVar, or an And of those) against a solved model. It exists because
// backend.Model only evaluates IntTerm directly (Eval); boolean terms are
// otherwise only ever consumed by the backend itself.
func evalPresence(m backend.Model, t backend.BoolTerm) bool {
	switch v := t.(type) {
	case backend.BoolConst:
		return bool(v)
	case backend.BoolVar:
		return m.Bool(v)
	case backend.And:
		for _, sub := range v.Terms {
			if !evalPresence(m, sub) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
