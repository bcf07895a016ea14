package vm

import (
	"math"
	"strconv"
	"strings"

	"jsbind/pkg/errors"
)

// Realm is one emulated global environment: the implicit root object that
// rooted member paths resolve against, plus the intrinsic prototypes.
// Only the builtins the coercion model itself depends on are installed;
// the rest of the standard library is supplied by wrapper layers.
type Realm struct {
	global Value

	// Built-in prototypes
	ObjectPrototype   Value
	FunctionPrototype Value
	ArrayPrototype    Value
	StringPrototype   Value
	NumberPrototype   Value
	BooleanPrototype  Value

	// Constructors
	ObjectConstructor   Value
	FunctionConstructor Value
	ArrayConstructor    Value
	StringConstructor   Value
	NumberConstructor   Value
	BooleanConstructor  Value

	joining map[*ArrayObject]bool // cycle guard for Array.prototype.join
}

// NewRealm builds a realm with its global object and intrinsics installed.
func NewRealm() *Realm {
	rt := &Realm{joining: make(map[*ArrayObject]bool)}

	rt.ObjectPrototype = NewObject(Null)
	rt.FunctionPrototype = NewObject(rt.ObjectPrototype)
	rt.ArrayPrototype = NewObject(rt.ObjectPrototype)
	rt.StringPrototype = NewObject(rt.ObjectPrototype)
	rt.NumberPrototype = NewObject(rt.ObjectPrototype)
	rt.BooleanPrototype = NewObject(rt.ObjectPrototype)
	rt.global = NewObject(rt.ObjectPrototype)

	rt.initObject()
	rt.initFunction()
	rt.initArray()
	rt.initPrimitiveWrappers()
	rt.initGlobals()
	return rt
}

// Global returns the implicit root object.
func (rt *Realm) Global() Value { return rt.global }

// NewObject creates an empty object inheriting from Object.prototype.
func (rt *Realm) NewObject() Value { return NewObject(rt.ObjectPrototype) }

// NewArray creates an array inheriting from Array.prototype.
func (rt *Realm) NewArray(elements ...Value) Value {
	return NewArray(rt.ArrayPrototype, elements...)
}

// ArrayLikeToList implements CreateListFromArrayLike: arrays and objects
// with a `length` expand to their elements, null and undefined to nothing.
func (rt *Realm) ArrayLikeToList(v Value) ([]Value, error) {
	switch {
	case v.IsNullish():
		return nil, nil
	case v.IsArray():
		return v.AsArray().Elements(), nil
	case !v.IsObject():
		return nil, errors.NewTypeError("CreateListFromArrayLike called on non-object")
	}
	lenVal, err := rt.Get(v, "length")
	if err != nil {
		return nil, err
	}
	n, err := ToIntegerOrInfinity(lenVal)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if n > maxDenseLength {
		return nil, errors.NewTypeError("array-like length %v is too large", n)
	}
	list := make([]Value, int(n))
	for i := range list {
		if list[i], err = rt.Get(v, indexKey(i)); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func argOrUndefined(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

func (rt *Realm) method(target Value, name string, arity int, fn NativeFn) {
	target.AsPlainObject().SetOwnNonEnumerable(name, rt.NewFunction(name, arity, fn))
}

// linkConstructor wires ctor.prototype and prototype.constructor.
func linkConstructor(ctor, proto Value) {
	ctor.AsPlainObject().DefineOwnProperty("prototype", Property{Value: proto})
	proto.AsPlainObject().SetOwnNonEnumerable("constructor", ctor)
}

// --- Object ---

func classOf(v Value) string {
	switch v.typ {
	case TypeUndefined:
		return "Undefined"
	case TypeNull:
		return "Null"
	case TypeArray:
		return "Array"
	case TypeFunction:
		return "Function"
	case TypeString:
		return "String"
	case TypeNumber:
		return "Number"
	case TypeBoolean:
		return "Boolean"
	}
	return "Object"
}

func (rt *Realm) initObject() {
	proto := rt.ObjectPrototype
	rt.method(proto, "valueOf", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return this, nil
	})
	rt.method(proto, "toString", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return NewString("[object " + classOf(this) + "]"), nil
	})
	rt.method(proto, "hasOwnProperty", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		key, err := ToPropertyKey(argOrUndefined(args, 0))
		if err != nil {
			return Undefined, err
		}
		return BooleanValue(rt.HasOwn(this, key)), nil
	})

	toObject := func(rt *Realm, args []Value) (Value, error) {
		if v := argOrUndefined(args, 0); v.IsObject() {
			return v, nil
		}
		return rt.NewObject(), nil
	}
	rt.ObjectConstructor = rt.NewConstructor("Object", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		return toObject(rt, args)
	}, toObject)
	linkConstructor(rt.ObjectConstructor, proto)
}

// --- Function ---

func (rt *Realm) initFunction() {
	proto := rt.FunctionPrototype
	rt.method(proto, "call", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		var rest []Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return Call(this, argOrUndefined(args, 0), rest)
	})
	rt.method(proto, "apply", 2, func(rt *Realm, this Value, args []Value) (Value, error) {
		if !this.IsCallable() {
			return Undefined, errors.NotCallable("Function.prototype.apply was called on %s, which is not a function", describe(this))
		}
		list, err := rt.ArrayLikeToList(argOrUndefined(args, 1))
		if err != nil {
			return Undefined, err
		}
		return Call(this, argOrUndefined(args, 0), list)
	})
	rt.method(proto, "toString", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		if !this.IsCallable() {
			return Undefined, errors.NewTypeError("Function.prototype.toString requires that 'this' be a Function")
		}
		return NewString("function " + this.AsFunction().Name + "() { [native code] }"), nil
	})

	rt.FunctionConstructor = rt.NewConstructor("Function", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		return Undefined, errors.NewTypeError("dynamic function bodies are not supported")
	}, func(rt *Realm, args []Value) (Value, error) {
		return Undefined, errors.NewTypeError("dynamic function bodies are not supported")
	})
	linkConstructor(rt.FunctionConstructor, proto)
}

// --- Array ---

// newArrayFromArgs follows the Array constructor: a single numeric argument
// is a length, anything else is the element list.
func newArrayFromArgs(rt *Realm, args []Value) (Value, error) {
	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].AsFloat()
		if n < 0 || n != math.Trunc(n) || n > MaxArrayLength {
			return Undefined, errors.NewTypeError("Invalid array length")
		}
		if n > maxDenseLength {
			return Undefined, errors.NewTypeError("array length %v exceeds dense storage", n)
		}
		arr := rt.NewArray()
		arr.AsArray().SetLength(int(n))
		return arr, nil
	}
	return rt.NewArray(args...), nil
}

func (rt *Realm) initArray() {
	proto := rt.ArrayPrototype
	join := func(rt *Realm, this Value, args []Value) (Value, error) {
		sep := ","
		if s := argOrUndefined(args, 0); !s.IsUndefined() {
			var err error
			if sep, err = ToString(s); err != nil {
				return Undefined, err
			}
		}
		list, err := rt.ArrayLikeToList(this)
		if err != nil {
			return Undefined, err
		}
		if this.IsArray() {
			arr := this.AsArray()
			if rt.joining[arr] {
				return NewString(""), nil
			}
			rt.joining[arr] = true
			defer delete(rt.joining, arr)
		}
		parts := make([]string, len(list))
		for i, el := range list {
			if el.IsNullish() {
				continue
			}
			if parts[i], err = ToString(el); err != nil {
				return Undefined, err
			}
		}
		return NewString(strings.Join(parts, sep)), nil
	}
	rt.method(proto, "join", 1, join)
	rt.method(proto, "toString", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return join(rt, this, nil)
	})
	rt.method(proto, "push", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		if !this.IsArray() {
			return Undefined, errors.NewTypeError("Array.prototype.push called on non-array")
		}
		arr := this.AsArray()
		for _, a := range args {
			if _, err := rt.Set(this, indexKey(arr.Length()), a); err != nil {
				return Undefined, err
			}
		}
		return IntegerValue(arr.Length()), nil
	})

	rt.ArrayConstructor = rt.NewConstructor("Array", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		return newArrayFromArgs(rt, args)
	}, newArrayFromArgs)
	linkConstructor(rt.ArrayConstructor, proto)
}

// --- String, Number, Boolean ---

func thisPrimitive(this Value, typ ValueType, method string) (Value, error) {
	if this.typ != typ {
		return Undefined, errors.NewTypeError("%s requires that 'this' be a %s", method, typ)
	}
	return this, nil
}

func (rt *Realm) initPrimitiveWrappers() {
	// String
	rt.method(rt.StringPrototype, "toString", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return thisPrimitive(this, TypeString, "String.prototype.toString")
	})
	rt.method(rt.StringPrototype, "valueOf", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return thisPrimitive(this, TypeString, "String.prototype.valueOf")
	})
	rt.StringConstructor = rt.NewFunction("String", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return NewString(""), nil
		}
		s, err := ToString(args[0])
		return NewString(s), err
	})
	linkConstructor(rt.StringConstructor, rt.StringPrototype)

	// Number
	rt.method(rt.NumberPrototype, "valueOf", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return thisPrimitive(this, TypeNumber, "Number.prototype.valueOf")
	})
	rt.method(rt.NumberPrototype, "toString", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		n, err := thisPrimitive(this, TypeNumber, "Number.prototype.toString")
		if err != nil {
			return Undefined, err
		}
		f := n.AsFloat()
		if r := argOrUndefined(args, 0); r.IsNumber() && r.AsFloat() != 10 {
			radix := int(r.AsFloat())
			if radix < 2 || radix > 36 {
				return Undefined, errors.NewTypeError("toString() radix must be between 2 and 36")
			}
			if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
				return NewString(strconv.FormatInt(int64(f), radix)), nil
			}
		}
		return NewString(NumberToString(f)), nil
	})
	rt.NumberConstructor = rt.NewFunction("Number", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		if len(args) == 0 {
			return IntegerValue(0), nil
		}
		n, err := ToNumber(args[0])
		return NumberValue(n), err
	})
	linkConstructor(rt.NumberConstructor, rt.NumberPrototype)

	// Boolean
	rt.method(rt.BooleanPrototype, "valueOf", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		return thisPrimitive(this, TypeBoolean, "Boolean.prototype.valueOf")
	})
	rt.method(rt.BooleanPrototype, "toString", 0, func(rt *Realm, this Value, args []Value) (Value, error) {
		b, err := thisPrimitive(this, TypeBoolean, "Boolean.prototype.toString")
		if err != nil {
			return Undefined, err
		}
		return NewString(primitiveToString(b)), nil
	})
	rt.BooleanConstructor = rt.NewFunction("Boolean", 1, func(rt *Realm, this Value, args []Value) (Value, error) {
		return BooleanValue(ToBoolean(argOrUndefined(args, 0))), nil
	})
	linkConstructor(rt.BooleanConstructor, rt.BooleanPrototype)
}

// --- Globals ---

func (rt *Realm) initGlobals() {
	g := rt.global.AsPlainObject()
	constant := func(name string, v Value) {
		g.DefineOwnProperty(name, Property{Value: v})
	}
	constant("undefined", Undefined)
	constant("NaN", NaN)
	constant("Infinity", NumberValue(math.Inf(1)))

	g.SetOwnNonEnumerable("globalThis", rt.global)
	g.SetOwnNonEnumerable("Object", rt.ObjectConstructor)
	g.SetOwnNonEnumerable("Function", rt.FunctionConstructor)
	g.SetOwnNonEnumerable("Array", rt.ArrayConstructor)
	g.SetOwnNonEnumerable("String", rt.StringConstructor)
	g.SetOwnNonEnumerable("Number", rt.NumberConstructor)
	g.SetOwnNonEnumerable("Boolean", rt.BooleanConstructor)
}
