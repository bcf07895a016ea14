package vm

import (
	"unsafe"

	"jsbind/pkg/errors"
)

// NativeFn is the Go body of a function. this is Undefined for plain calls.
type NativeFn func(rt *Realm, this Value, args []Value) (Value, error)

// ConstructFn overrides the default [[Construct]] behaviour of a function.
type ConstructFn func(rt *Realm, args []Value) (Value, error)

type FunctionObject struct {
	PlainObject
	Name      string
	Arity     int
	fn        NativeFn
	construct ConstructFn
	realm     *Realm
	ctor      bool
}

// IsConstructor reports whether the function may be used with `new`.
func (f *FunctionObject) IsConstructor() bool { return f.ctor }

// Realm returns the realm the function was created in.
func (f *FunctionObject) Realm() *Realm { return f.realm }

// NewFunction creates a non-constructible function, the shape builtins and
// methods have.
func (rt *Realm) NewFunction(name string, arity int, fn NativeFn) Value {
	f := &FunctionObject{PlainObject: newPlainObject(rt.FunctionPrototype), Name: name, Arity: arity, fn: fn, realm: rt}
	f.defineFunctionSlots()
	return Value{typ: TypeFunction, obj: unsafe.Pointer(f)}
}

// NewConstructor creates a function that can also be invoked with `new`.
// It gets a fresh `prototype` object whose `constructor` points back at it.
// construct may be nil, in which case construction allocates an object
// inheriting from `prototype` and calls fn with it as receiver.
func (rt *Realm) NewConstructor(name string, arity int, fn NativeFn, construct ConstructFn) Value {
	f := &FunctionObject{PlainObject: newPlainObject(rt.FunctionPrototype), Name: name, Arity: arity, fn: fn, construct: construct, realm: rt, ctor: true}
	f.defineFunctionSlots()
	v := Value{typ: TypeFunction, obj: unsafe.Pointer(f)}

	proto := NewObject(rt.ObjectPrototype)
	proto.AsPlainObject().SetOwnNonEnumerable("constructor", v)
	f.DefineOwnProperty("prototype", Property{Value: proto, Writable: true})
	return v
}

func (f *FunctionObject) defineFunctionSlots() {
	f.DefineOwnProperty("length", Property{Value: IntegerValue(f.Arity), Configurable: true})
	f.DefineOwnProperty("name", Property{Value: NewString(f.Name), Configurable: true})
}

// Call invokes callee with the given receiver. Non-callable callees raise
// NotCallable; the check is made here, at call time.
func Call(callee Value, this Value, args []Value) (Value, error) {
	if !callee.IsCallable() {
		return Undefined, errors.NotCallable("%s is not a function", describe(callee))
	}
	f := callee.AsFunction()
	if f.fn == nil {
		return Undefined, nil
	}
	return f.fn(f.realm, this, args)
}

// Construct runs [[Construct]] on callee.
func Construct(callee Value, args []Value) (Value, error) {
	if !callee.IsCallable() || !callee.AsFunction().ctor {
		return Undefined, errors.NotCallable("%s is not a constructor", describe(callee))
	}
	f := callee.AsFunction()
	if f.construct != nil {
		return f.construct(f.realm, args)
	}

	protoVal, err := getFromObject(callee, "prototype", callee)
	if err != nil {
		return Undefined, err
	}
	if !protoVal.IsObject() {
		protoVal = f.realm.ObjectPrototype
	}
	obj := NewObject(protoVal)
	if f.fn == nil {
		return obj, nil
	}
	result, err := f.fn(f.realm, obj, args)
	if err != nil {
		return Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return obj, nil
}

// describe renders a value for error messages without invoking user code.
func describe(v Value) string {
	switch v.typ {
	case TypeString:
		return `"` + v.AsString() + `"`
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	}
	return v.Inspect()
}
