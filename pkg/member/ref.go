package member

import (
	"fmt"

	"jsbind/pkg/vm"
)

const debugResolve = false

// Ref is a path bound to a scope in a realm. The scope is what a rooted
// path reads off; Undefined means the realm's global object. A qualified
// path first resolves its qualifier in the same scope and then reads its
// identifier from that result.
type Ref struct {
	rt    *vm.Realm
	path  *Path
	scope vm.Value
}

// With binds p to scope. Passing vm.Undefined binds to the realm global.
func (p *Path) With(rt *vm.Realm, scope vm.Value) Ref {
	return Ref{rt: rt, path: p, scope: scope}
}

// Global binds p to the realm's global object.
func (p *Path) Global(rt *vm.Realm) Ref { return p.With(rt, vm.Undefined) }

func (r Ref) Path() *Path      { return r.path }
func (r Ref) Realm() *vm.Realm { return r.rt }
func (r Ref) Scope() vm.Value  { return r.scope }
func (r Ref) String() string   { return r.path.String() }

func (r Ref) root() vm.Value {
	if r.scope.IsUndefined() {
		return r.rt.Global()
	}
	return r.scope
}

// Base resolves everything but the last identifier: the object the final
// read, write or delete applies to. An absent intermediate makes the base
// Undefined rather than failing.
func (r Ref) Base() (vm.Value, error) {
	if r.path.IsRooted() {
		return r.root(), nil
	}
	return r.path.qualifier.With(r.rt, r.scope).Resolve()
}

// Resolve reads the value the path denotes. Absent properties, and any
// chain continuing through an absent intermediate, resolve to Undefined;
// only a throwing getter produces an error.
func (r Ref) Resolve() (vm.Value, error) {
	base, err := r.Base()
	if err != nil {
		return vm.Undefined, err
	}
	v, err := r.rt.Get(base, r.path.Name())
	if debugResolve {
		fmt.Printf("[member] resolve %s on %s -> %s\n", r.path, base.Inspect(), v.Inspect())
	}
	return v, err
}

// Read is Resolve under the name of the canonical property operation.
func (r Ref) Read() (vm.Value, error) { return r.Resolve() }

// Write stores value at the path and returns what was actually stored,
// which differs from value when the runtime coerces (array `length`).
// Read-only targets and primitive bases fail with PropertyUnwritable, a
// null or undefined base with TypeError.
func (r Ref) Write(value vm.Value) (vm.Value, error) {
	base, err := r.Base()
	if err != nil {
		return vm.Undefined, err
	}
	if debugResolve {
		fmt.Printf("[member] write %s on %s = %s\n", r.path, base.Inspect(), value.Inspect())
	}
	return r.rt.Set(base, r.path.Name(), value)
}

// Delete removes the property and reports whether it existed and was
// removable. Non-configurable properties report false, never an error; the
// error result only carries a throwing getter met while resolving the base.
func (r Ref) Delete() (bool, error) {
	base, err := r.Base()
	if err != nil {
		return false, err
	}
	name := r.path.Name()
	if !r.rt.HasOwn(base, name) {
		return false, nil
	}
	return r.rt.Delete(base, name), nil
}

// Exists reports whether the property is reachable on its base, own or
// inherited.
func (r Ref) Exists() (bool, error) {
	base, err := r.Base()
	if err != nil {
		return false, err
	}
	return r.rt.Has(base, r.path.Name()), nil
}
