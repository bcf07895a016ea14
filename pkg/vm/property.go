package vm

import (
	"fmt"

	"jsbind/pkg/errors"
)

const debugProperty = false

// getOwnProperty returns the own property of an object value, including the
// virtual slots arrays expose (`length` and element indices).
func getOwnProperty(v Value, key string) (Property, bool) {
	if v.typ == TypeArray {
		arr := v.AsArray()
		if key == "length" {
			return Property{Value: IntegerValue(arr.Length()), Writable: !arr.frozen}, true
		}
		if idx, ok := ArrayIndex(key); ok {
			if !arr.HasIndex(idx) {
				return Property{}, false
			}
			return Property{Value: arr.Get(idx), Writable: !arr.frozen, Enumerable: true, Configurable: !arr.frozen}, true
		}
	}
	return v.AsPlainObject().GetOwnProperty(key)
}

// findProperty walks the prototype chain starting at the object v.
func findProperty(v Value, key string) (Property, bool) {
	for cur := v; cur.IsObject(); cur = cur.AsPlainObject().prototype {
		if p, ok := getOwnProperty(cur, key); ok {
			return p, true
		}
	}
	return Property{}, false
}

// getFromObject reads key starting at object v, running getters with receiver as `this`.
func getFromObject(v Value, key string, receiver Value) (Value, error) {
	p, ok := findProperty(v, key)
	if !ok {
		return Undefined, nil
	}
	if !p.Accessor {
		return p.Value, nil
	}
	if !p.Getter.IsCallable() {
		return Undefined, nil
	}
	return Call(p.Getter, receiver, nil)
}

// protoFor returns the prototype used to look up properties on a primitive.
func (rt *Realm) protoFor(base Value) Value {
	switch base.typ {
	case TypeString:
		return rt.StringPrototype
	case TypeNumber:
		return rt.NumberPrototype
	case TypeBoolean:
		return rt.BooleanPrototype
	}
	return Null
}

// Get reads base[key]. Missing properties, and any property of null or
// undefined, read as Undefined; only a throwing getter produces an error.
func (rt *Realm) Get(base Value, key string) (Value, error) {
	if debugProperty {
		fmt.Printf("[vm] get %s[%q]\n", base.Inspect(), key)
	}
	switch {
	case base.IsNullish():
		return Undefined, nil
	case base.IsObject():
		return getFromObject(base, key, base)
	case base.typ == TypeString:
		s := base.AsString()
		if key == "length" {
			return IntegerValue(UTF16Length(s)), nil
		}
		if idx, ok := ArrayIndex(key); ok {
			if unit, ok := UTF16At(s, idx); ok {
				return NewString(unit), nil
			}
			return Undefined, nil
		}
	}
	proto := rt.protoFor(base)
	if !proto.IsObject() {
		return Undefined, nil
	}
	return getFromObject(proto, key, base)
}

// Has reports whether key is reachable on base, own or inherited.
func (rt *Realm) Has(base Value, key string) bool {
	switch {
	case base.IsNullish():
		return false
	case base.IsObject():
		_, ok := findProperty(base, key)
		return ok
	case base.typ == TypeString:
		if key == "length" {
			return true
		}
		if idx, ok := ArrayIndex(key); ok {
			return idx < UTF16Length(base.AsString())
		}
	}
	proto := rt.protoFor(base)
	if !proto.IsObject() {
		return false
	}
	_, ok := findProperty(proto, key)
	return ok
}

// Set performs base[key] = value and returns the value actually stored.
// Writes to array `length` store the coerced integer length.
func (rt *Realm) Set(base Value, key string, value Value) (Value, error) {
	if debugProperty {
		fmt.Printf("[vm] set %s[%q] = %s\n", base.Inspect(), key, value.Inspect())
	}
	if base.IsNullish() {
		return Undefined, errors.NewTypeError("Cannot set properties of %s (setting '%s')", base.TypeOf(), key)
	}
	if base.IsPrimitive() {
		return Undefined, errors.Unwritable(key, "cannot create property on %s primitive", base.TypeOf())
	}

	if base.typ == TypeArray {
		if stored, handled, err := setArraySlot(base.AsArray(), key, value); handled {
			return stored, err
		}
	}

	obj := base.AsPlainObject()
	if own, ok := obj.properties[key]; ok {
		return writeProperty(own, base, key, value)
	}

	// Inherited: accessors run, non-writable data blocks the write.
	if proto := obj.prototype; proto.IsObject() {
		if p, ok := findProperty(proto, key); ok {
			if p.Accessor {
				if !p.Setter.IsCallable() {
					return Undefined, errors.Unwritable(key, "property has only a getter")
				}
				if _, err := Call(p.Setter, base, []Value{value}); err != nil {
					return Undefined, err
				}
				return value, nil
			}
			if !p.Writable {
				return Undefined, errors.Unwritable(key, "inherited property is read-only")
			}
		}
	}

	if !obj.extensible {
		return Undefined, errors.Unwritable(key, "object is not extensible")
	}
	obj.DefineOwnProperty(key, DataProperty(value))
	return value, nil
}

func writeProperty(p *Property, base Value, key string, value Value) (Value, error) {
	if p.Accessor {
		if !p.Setter.IsCallable() {
			return Undefined, errors.Unwritable(key, "property has only a getter")
		}
		if _, err := Call(p.Setter, base, []Value{value}); err != nil {
			return Undefined, err
		}
		return value, nil
	}
	if !p.Writable {
		return Undefined, errors.Unwritable(key, "property is read-only")
	}
	p.Value = value
	return value, nil
}

func setArraySlot(arr *ArrayObject, key string, value Value) (Value, bool, error) {
	if key == "length" {
		if arr.frozen {
			return Undefined, true, errors.Unwritable(key, "array is frozen")
		}
		n, err := ToNumber(value)
		if err != nil {
			return Undefined, true, err
		}
		length := uint32(int64(n))
		if float64(length) != n {
			return Undefined, true, errors.NewTypeError("Invalid array length")
		}
		if int(length) > maxDenseLength {
			return Undefined, true, errors.NewTypeError("array length %d exceeds dense storage", length)
		}
		arr.SetLength(int(length))
		return IntegerValue(int(length)), true, nil
	}
	idx, ok := ArrayIndex(key)
	if !ok {
		return Undefined, false, nil
	}
	if arr.frozen {
		return Undefined, true, errors.Unwritable(key, "array is frozen")
	}
	if idx >= arr.Length() && !arr.extensible {
		return Undefined, true, errors.Unwritable(key, "array is not extensible")
	}
	if idx >= maxDenseLength {
		return Undefined, true, errors.NewTypeError("array length %d exceeds dense storage", idx+1)
	}
	arr.Set(idx, value)
	return value, true, nil
}

// Delete performs `delete base[key]`: true when the property is gone
// afterwards, false when it is non-configurable or base cannot hold it.
func (rt *Realm) Delete(base Value, key string) bool {
	switch {
	case base.IsNullish():
		return false
	case base.typ == TypeString:
		if key == "length" {
			return false
		}
		if idx, ok := ArrayIndex(key); ok {
			return idx >= UTF16Length(base.AsString())
		}
		return true
	case base.IsPrimitive():
		return true
	}
	if base.typ == TypeArray {
		arr := base.AsArray()
		if key == "length" {
			return false
		}
		if idx, ok := ArrayIndex(key); ok {
			return arr.DeleteIndex(idx)
		}
	}
	return base.AsPlainObject().DeleteOwn(key)
}

// HasOwn reports whether key is an own property of base. Primitive strings
// own `length` and their indices.
func (rt *Realm) HasOwn(base Value, key string) bool {
	switch {
	case base.IsObject():
		_, ok := getOwnProperty(base, key)
		return ok
	case base.typ == TypeString:
		if key == "length" {
			return true
		}
		if idx, ok := ArrayIndex(key); ok {
			return idx < UTF16Length(base.AsString())
		}
	}
	return false
}

// --- Computed keys ---

// GetIndex reads base[key] where key is a runtime value.
func (rt *Realm) GetIndex(base Value, key Value) (Value, error) {
	k, err := ToPropertyKey(key)
	if err != nil {
		return Undefined, err
	}
	return rt.Get(base, k)
}

// SetIndex writes base[key] where key is a runtime value.
func (rt *Realm) SetIndex(base Value, key Value, value Value) (Value, error) {
	k, err := ToPropertyKey(key)
	if err != nil {
		return Undefined, err
	}
	return rt.Set(base, k, value)
}

// DeleteIndex performs `delete base[key]` where key is a runtime value.
// A key whose conversion fails reports false.
func (rt *Realm) DeleteIndex(base Value, key Value) bool {
	k, err := ToPropertyKey(key)
	if err != nil {
		return false
	}
	return rt.Delete(base, k)
}
