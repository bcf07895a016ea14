// Package handle provides typed views over runtime values.
//
// A handle reads its value through a shared one-slot cell. Copies of a
// handle are aliases: Assign through any copy re-points all of them and
// never touches the object previously denoted. Handles created separately
// over the same object have separate cells, so re-pointing one leaves the
// others alone while mutations of the object itself are visible to all.
package handle

import (
	"fmt"

	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

// Kind identifies a handle type.
type Kind uint8

const (
	KindObject Kind = iota // most general; the fallback for unregistered results
	KindArray
	KindFunction
	KindString
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	case KindFunction:
		return "Function"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindBoolean:
		return "Boolean"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for k := KindObject; k <= KindBoolean; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return KindObject, fmt.Errorf("handle: unknown kind %q", name)
}

// Handle is implemented by every typed view in this package.
type Handle interface {
	vm.Valuer
	Kind() Kind
	Realm() *vm.Realm
	// Current returns the handle as currently observed. Handles bound to a
	// member re-read it first; all others return themselves.
	Current() (Handle, error)
	view() base
}

type cell struct {
	v   vm.Value
	ref *member.Ref // set for late-bound handles until the next Assign
}

type base struct {
	rt   *vm.Realm
	cell *cell
}

func newBase(rt *vm.Realm, v vm.Value) base {
	return base{rt: rt, cell: &cell{v: v}}
}

func (b base) JSValue() vm.Value { return b.cell.v }
func (b base) Realm() *vm.Realm  { return b.rt }
func (b base) view() base        { return b }

// IsLateBound reports whether the handle re-reads a member on Current.
func (b base) IsLateBound() bool { return b.cell.ref != nil }

func (b base) refresh() error {
	if b.cell.ref == nil {
		return nil
	}
	v, err := b.cell.ref.Read()
	if err != nil {
		return err
	}
	b.cell.v = v
	return nil
}

func (b base) assign(x any) {
	b.cell.v = b.rt.FromGo(x)
	b.cell.ref = nil
}

// --- Member operations shared by all handles ---

// Ref binds p to the handle's value.
func (b base) Ref(p *member.Path) member.Ref { return p.With(b.rt, b.cell.v) }

// ReadMember reads p off the handle's value.
func (b base) ReadMember(p *member.Path) (vm.Value, error) { return b.Ref(p).Read() }

// WriteMember writes p on the handle's value and returns the stored value.
func (b base) WriteMember(p *member.Path, value any) (vm.Value, error) {
	return b.Ref(p).Write(b.rt.FromGo(value))
}

// DeleteMember deletes p from the handle's value.
func (b base) DeleteMember(p *member.Path) (bool, error) { return b.Ref(p).Delete() }

// Get reads the named property.
func (b base) Get(name string) (vm.Value, error) { return b.ReadMember(member.Root(name)) }

// TypeOf returns the `typeof` of the current value.
func (b base) TypeOf() string { return b.cell.v.TypeOf() }

func (b base) String() string { return b.cell.v.Inspect() }

// --- Construction ---

// Wrap returns a handle of the given kind over v.
func Wrap(rt *vm.Realm, v vm.Value, kind Kind) Handle {
	return wrapBase(newBase(rt, v), kind)
}

func wrapBase(b base, kind Kind) Handle {
	switch kind {
	case KindArray:
		return Array{b}
	case KindFunction:
		return Function{b}
	case KindString:
		return String{b}
	case KindNumber:
		return Number{b}
	case KindBoolean:
		return Boolean{b}
	}
	return Object{b}
}

// KindOf returns the handle kind matching the runtime type of v. Null and
// undefined map to KindObject.
func KindOf(v vm.Value) Kind {
	switch v.Type() {
	case vm.TypeArray:
		return KindArray
	case vm.TypeFunction:
		return KindFunction
	case vm.TypeString:
		return KindString
	case vm.TypeNumber:
		return KindNumber
	case vm.TypeBoolean:
		return KindBoolean
	}
	return KindObject
}

// WrapValue wraps x in the handle kind its runtime type calls for.
func WrapValue(rt *vm.Realm, x any) Handle {
	v := rt.FromGo(x)
	return Wrap(rt, v, KindOf(v))
}

// As narrows h to the handle type H when the current value has the runtime
// type H views. The result aliases h.
func As[H Handle](h Handle) (H, bool) {
	var zero H
	if typed, ok := h.(H); ok {
		return typed, true
	}
	b := h.view()
	v := b.cell.v
	var out Handle
	switch any(zero).(type) {
	case Object:
		if v.IsObject() {
			out = Object{b}
		}
	case Array:
		if v.IsArray() {
			out = Array{b}
		}
	case Function:
		if v.IsCallable() {
			out = Function{b}
		}
	case String:
		if v.IsString() {
			out = String{b}
		}
	case Number:
		if v.IsNumber() {
			out = Number{b}
		}
	case Boolean:
		if v.IsBoolean() {
			out = Boolean{b}
		}
	}
	if out == nil {
		return zero, false
	}
	return out.(H), true
}

// At returns a late-bound handle of kind over p resolved against h's
// current value. Current re-reads the member, so later writes through other
// handles are observed.
func At(h Handle, p *member.Path, kind Kind) (Handle, error) {
	return bind(p.With(h.Realm(), h.JSValue()), kind)
}

// Global returns a late-bound handle of kind over p on the realm global.
func Global(rt *vm.Realm, p *member.Path, kind Kind) (Handle, error) {
	return bind(p.Global(rt), kind)
}

func bind(ref member.Ref, kind Kind) (Handle, error) {
	v, err := ref.Read()
	if err != nil {
		return nil, err
	}
	b := newBase(ref.Realm(), v)
	b.cell.ref = &ref
	return wrapBase(b, kind), nil
}
