package handle

import (
	"fmt"
	"sort"
	"sync"

	"jsbind/pkg/errors"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

const debugWrap = false

// Entry is one registered (path, result kind) pair.
type Entry struct {
	Path *member.Path
	Kind Kind
}

// Registry maps callable member paths to the handle kind their call results
// are re-wrapped as. Paths are keyed structurally, so a path rebuilt from the
// same names finds the same entry. Registration is normally finished during
// package initialisation; late registration is safe.
type Registry struct {
	entries map[string]Entry
	mutex   sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Wrappers is the process-wide registry used by Declare and CallMember.
var Wrappers = NewRegistry()

// Register records kind as the result kind of path. Registering the same
// pair again is a no-op; a different kind for a known path is an error.
func (r *Registry) Register(path *member.Path, kind Kind) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	key := path.Key()
	if prev, ok := r.entries[key]; ok {
		if prev.Kind != kind {
			return fmt.Errorf("handle: %s already registered as %s, cannot re-register as %s", key, prev.Kind, kind)
		}
		return nil
	}
	r.entries[key] = Entry{Path: path, Kind: kind}
	return nil
}

// Declare registers path at its declaration site and returns it, so it can
// be used as a field or variable initialiser. It panics on a conflicting
// registration.
func (r *Registry) Declare(path *member.Path, kind Kind) *member.Path {
	if err := r.Register(path, kind); err != nil {
		panic(err)
	}
	return path
}

// Declare registers path in Wrappers.
func Declare(path *member.Path, kind Kind) *member.Path {
	return Wrappers.Declare(path, kind)
}

// Lookup returns the kind registered for path.
func (r *Registry) Lookup(path *member.Path) (Kind, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	e, ok := r.entries[path.Key()]
	return e.Kind, ok
}

// MustLookup is Lookup for callers that need the registration to exist,
// such as the generator. A missing entry is an UnregisteredWrapper error.
func (r *Registry) MustLookup(path *member.Path) (Kind, error) {
	if kind, ok := r.Lookup(path); ok {
		return kind, nil
	}
	return KindObject, &errors.UnregisteredWrapperError{Path: path.String()}
}

// Entries returns every registration ordered by path.
func (r *Registry) Entries() []Entry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path.Key() < out[j].Path.Key() })
	return out
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entries)
}

// WrapResult wraps raw in the kind registered for path, falling back to an
// object handle when the path was never registered. It never fails.
func (r *Registry) WrapResult(rt *vm.Realm, path *member.Path, raw vm.Value) Handle {
	kind, ok := r.Lookup(path)
	if debugWrap {
		fmt.Printf("[handle] wrap %s -> %s (registered=%v)\n", path, kind, ok)
	}
	return Wrap(rt, raw, kind)
}
