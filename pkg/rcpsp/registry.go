package rcpsp

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// registry is a process-wide-per-Problem uniqueness guard: every named
// modeling object registers a (kind, name) pair at construction; a second
// registration under the same pair fails.
//
// registry also mints each entity's opaque UID, used for SMT variable
// naming (kind_name_uid_attr). Generalizes a plain atomic fresh-name
// counter to use google/uuid for a collision-free short UID instead of a
// bare incrementing int64.
type registry struct {
	mu    sync.Mutex
	names map[string]map[string]bool
	// sealed is set once the owning Problem's solve() has been invoked;
	// further registrations are rejected.
	sealed bool
}

func newRegistry() *registry {
	return &registry{names: make(map[string]map[string]bool)}
}

// register claims (kind, name). It returns a fresh opaque UID on success,
// or a *DuplicateName / model-lifecycle error on failure.
func (r *registry) register(kind, name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return "", newModelError("cannot register %s %q: problem is sealed (solve() already invoked)", kind, name)
	}
	if name == "" {
		return "", newModelError("%s name must not be empty", kind)
	}

	bucket, ok := r.names[kind]
	if !ok {
		bucket = make(map[string]bool)
		r.names[kind] = bucket
	}
	if bucket[name] {
		return "", &DuplicateName{Kind: kind, Name: name}
	}
	bucket[name] = true

	return uuid.New().String()[:8], nil
}

func (r *registry) seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// qualifiedVarName builds the kind_name_uid_attr SMT variable name.
func qualifiedVarName(kind, name, uid, attr string) string {
	return fmt.Sprintf("%s_%s_%s_%s", kind, name, uid, attr)
}
