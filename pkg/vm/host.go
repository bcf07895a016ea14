package vm

import (
	"fmt"
	"reflect"
	"sort"

	"jsbind/pkg/errors"
)

// Valuer is implemented by anything that denotes a runtime value, typed
// handles in particular.
type Valuer interface {
	JSValue() Value
}

// ValueOf converts a host operand to a runtime value: Values and Valuers
// pass through, Go nil is null, booleans, numbers and strings map to their
// primitives. Composite host values need a realm; use Realm.FromGo.
func ValueOf(x any) Value {
	if v, ok := primitiveOf(x); ok {
		return v
	}
	panic(fmt.Sprintf("vm.ValueOf: cannot convert %T without a realm", x))
}

func primitiveOf(x any) (Value, bool) {
	switch t := x.(type) {
	case nil:
		return Null, true
	case Value:
		return t, true
	case Valuer:
		return t.JSValue(), true
	case bool:
		return BooleanValue(t), true
	case string:
		return NewString(t), true
	case float64:
		return NumberValue(t), true
	case float32:
		return NumberValue(float64(t)), true
	case int:
		return NumberValue(float64(t)), true
	case int8:
		return NumberValue(float64(t)), true
	case int16:
		return NumberValue(float64(t)), true
	case int32:
		return NumberValue(float64(t)), true
	case int64:
		return NumberValue(float64(t)), true
	case uint:
		return NumberValue(float64(t)), true
	case uint8:
		return NumberValue(float64(t)), true
	case uint16:
		return NumberValue(float64(t)), true
	case uint32:
		return NumberValue(float64(t)), true
	case uint64:
		return NumberValue(float64(t)), true
	}
	return Undefined, false
}

// FromGo converts any host value, allocating arrays for slices and plain
// objects for string-keyed maps in this realm. Map keys are inserted in
// sorted order. It panics on host types ConvertGo rejects.
func (rt *Realm) FromGo(x any) Value {
	v, err := rt.ConvertGo(x)
	if err != nil {
		panic(fmt.Sprintf("vm.FromGo: %s", err))
	}
	return v
}

// ConvertGo is FromGo reporting unsupported host types (structs, funcs,
// channels, maps with non-string keys) as a TypeError.
func (rt *Realm) ConvertGo(x any) (Value, error) {
	if v, ok := primitiveOf(x); ok {
		return v, nil
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			v, err := rt.ConvertGo(rv.Index(i).Interface())
			if err != nil {
				return Undefined, err
			}
			elems[i] = v
		}
		return rt.NewArray(elems...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		obj := rt.NewObject()
		po := obj.AsPlainObject()
		for _, k := range keys {
			v, err := rt.ConvertGo(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())
			if err != nil {
				return Undefined, err
			}
			po.SetOwn(k, v)
		}
		return obj, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, nil
		}
		return rt.ConvertGo(rv.Elem().Interface())
	}
	return Undefined, errors.NewTypeError("unsupported host type %T", x)
}
