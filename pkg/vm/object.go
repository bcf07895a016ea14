package vm

import (
	"sort"
	"unsafe"
)

// Property is an own property slot. Data properties use Value and Writable;
// accessor properties use Getter/Setter (either may be Undefined).
type Property struct {
	Value        Value
	Getter       Value
	Setter       Value
	Writable     bool
	Enumerable   bool
	Configurable bool
	Accessor     bool
}

// DataProperty returns a writable, enumerable, configurable data property,
// the attributes a plain assignment creates.
func DataProperty(v Value) Property {
	return Property{Value: v, Getter: Undefined, Setter: Undefined, Writable: true, Enumerable: true, Configurable: true}
}

type PlainObject struct {
	prototype  Value
	properties map[string]*Property
	keys       []string // insertion order
	extensible bool
}

func newPlainObject(proto Value) PlainObject {
	if !proto.IsObject() {
		proto = Null
	}
	return PlainObject{prototype: proto, properties: make(map[string]*Property), extensible: true}
}

// NewObject creates a plain object with the given prototype (Null for none).
func NewObject(proto Value) Value {
	po := newPlainObject(proto)
	return Value{typ: TypeObject, obj: unsafe.Pointer(&po)}
}

// GetOwn looks up a direct (own) property by name. Returns (value, true) if present.
// Accessor properties report Undefined; use Get on the realm to run getters.
func (o *PlainObject) GetOwn(name string) (Value, bool) {
	p, ok := o.properties[name]
	if !ok {
		return Undefined, false
	}
	if p.Accessor {
		return Undefined, true
	}
	return p.Value, true
}

// GetOwnProperty returns a copy of the own property descriptor.
func (o *PlainObject) GetOwnProperty(name string) (Property, bool) {
	p, ok := o.properties[name]
	if !ok {
		return Property{}, false
	}
	return *p, true
}

// HasOwn reports whether name is an own property.
func (o *PlainObject) HasOwn(name string) bool {
	_, ok := o.properties[name]
	return ok
}

// SetOwn sets or defines an own data property with assignment attributes.
// If the property exists and is non-writable this is a no-op; callers that
// need to observe the failure go through Realm.Set.
func (o *PlainObject) SetOwn(name string, v Value) {
	if p, ok := o.properties[name]; ok {
		if !p.Accessor && p.Writable {
			p.Value = v
		}
		return
	}
	o.DefineOwnProperty(name, DataProperty(v))
}

// SetOwnNonEnumerable defines a builtin-style slot: writable, configurable, not enumerable.
func (o *PlainObject) SetOwnNonEnumerable(name string, v Value) {
	p := DataProperty(v)
	p.Enumerable = false
	o.DefineOwnProperty(name, p)
}

// DefineOwnProperty creates or replaces an own property with exactly the given attributes.
func (o *PlainObject) DefineOwnProperty(name string, p Property) {
	if _, exists := o.properties[name]; !exists {
		o.keys = append(o.keys, name)
	}
	cp := p
	o.properties[name] = &cp
}

// DefineAccessor defines a getter/setter pair. Pass Undefined for a missing half.
func (o *PlainObject) DefineAccessor(name string, getter, setter Value, enumerable, configurable bool) {
	o.DefineOwnProperty(name, Property{
		Value:        Undefined,
		Getter:       getter,
		Setter:       setter,
		Enumerable:   enumerable,
		Configurable: configurable,
		Accessor:     true,
	})
}

// DeleteOwn removes an own property if present and configurable.
// Returns true if the property is gone afterwards (including when it never existed).
func (o *PlainObject) DeleteOwn(name string) bool {
	p, ok := o.properties[name]
	if !ok {
		// Deleting an absent own property succeeds
		return true
	}
	if !p.Configurable {
		return false
	}
	delete(o.properties, name)
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// OwnKeys returns enumerable own property names, integer-like keys first in
// ascending order, then the rest in insertion order.
func (o *PlainObject) OwnKeys() []string {
	return o.ownKeys(true)
}

// OwnPropertyNames returns all own property names, enumerable or not.
func (o *PlainObject) OwnPropertyNames() []string {
	return o.ownKeys(false)
}

func (o *PlainObject) ownKeys(enumerableOnly bool) []string {
	var indices []int
	var rest []string
	for _, k := range o.keys {
		if enumerableOnly && !o.properties[k].Enumerable {
			continue
		}
		if idx, ok := ArrayIndex(k); ok {
			indices = append(indices, idx)
			continue
		}
		rest = append(rest, k)
	}
	sort.Ints(indices)
	out := make([]string, 0, len(indices)+len(rest))
	for _, idx := range indices {
		out = append(out, indexKey(idx))
	}
	return append(out, rest...)
}

// GetPrototype returns the object's prototype.
func (o *PlainObject) GetPrototype() Value {
	return o.prototype
}

// SetPrototype sets the object's prototype.
// Returns false if the object is non-extensible or the new prototype would create a cycle.
func (o *PlainObject) SetPrototype(proto Value) bool {
	if !proto.IsObject() {
		proto = Null
	}
	if proto.Is(o.prototype) {
		return true
	}
	if !o.extensible {
		return false
	}
	for p := proto; p.IsObject(); p = p.AsPlainObject().prototype {
		if p.AsPlainObject() == o {
			return false
		}
	}
	o.prototype = proto
	return true
}

func (o *PlainObject) IsExtensible() bool { return o.extensible }

// PreventExtensions stops new properties from being added.
func (o *PlainObject) PreventExtensions() { o.extensible = false }

// Freeze makes every own property non-writable and non-configurable and
// prevents extensions.
func (o *PlainObject) Freeze() {
	for _, p := range o.properties {
		if !p.Accessor {
			p.Writable = false
		}
		p.Configurable = false
	}
	o.extensible = false
}

// ArrayIndex checks if a string represents a valid array index.
// Valid array indices are non-negative integers in range [0, 2^32-1) without leading zeros.
func ArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	// Leading zeros not allowed (except "0" itself)
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	idx := 0
	for _, ch := range key {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + int(ch-'0')
		// Max array index is 2^32 - 2
		if idx > 4294967294 {
			return 0, false
		}
	}
	return idx, true
}
