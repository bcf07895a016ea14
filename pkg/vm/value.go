package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull

	TypeBoolean
	TypeNumber
	TypeString

	TypeObject
	TypeArray
	TypeFunction
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	default:
		return "unknown"
	}
}

type StringObject struct {
	value string
}

// Value is a tagged union over every value the emulated runtime can hold.
// Reference types (object, array, function) share the pointed-to object, so
// copies of a Value alias the same underlying object.
type Value struct {
	typ     ValueType
	payload uint64
	obj     unsafe.Pointer
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, payload: 1}
	False     = Value{typ: TypeBoolean, payload: 0}
	NaN       = Value{typ: TypeNumber, payload: math.Float64bits(math.NaN())}
)

func NumberValue(value float64) Value {
	return Value{typ: TypeNumber, payload: math.Float64bits(value)}
}

func IntegerValue(value int) Value {
	return NumberValue(float64(value))
}

func BooleanValue(value bool) Value {
	if value {
		return True
	}
	return False
}

func NewString(value string) Value {
	return Value{typ: TypeString, obj: unsafe.Pointer(&StringObject{value: value})}
}

// --- Predicates ---

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }

// IsNullish reports whether v is one of the two "nothing" sentinels.
func (v Value) IsNullish() bool { return v.typ == TypeUndefined || v.typ == TypeNull }

func (v Value) IsBoolean() bool  { return v.typ == TypeBoolean }
func (v Value) IsNumber() bool   { return v.typ == TypeNumber }
func (v Value) IsString() bool   { return v.typ == TypeString }
func (v Value) IsArray() bool    { return v.typ == TypeArray }
func (v Value) IsFunction() bool { return v.typ == TypeFunction }

// IsCallable reports whether v can be invoked.
func (v Value) IsCallable() bool { return v.typ == TypeFunction }

// IsObject reports whether v is any reference type: plain object, array or function.
func (v Value) IsObject() bool {
	return v.typ == TypeObject || v.typ == TypeArray || v.typ == TypeFunction
}

// IsPrimitive is the complement of IsObject.
func (v Value) IsPrimitive() bool { return !v.IsObject() }

// IsNaN reports whether v is the not-a-number sentinel.
func (v Value) IsNaN() bool { return v.typ == TypeNumber && math.IsNaN(v.AsFloat()) }

// TypeOf returns the result of the `typeof` operator.
func (v Value) TypeOf() string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull, TypeObject, TypeArray:
		return "object"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeFunction:
		return "function"
	default:
		return fmt.Sprintf("<unknown type: %d>", v.typ)
	}
}

// --- Accessors ---

func (v Value) AsFloat() float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return math.Float64frombits(v.payload)
}

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.payload == 1
}

func (v Value) AsString() string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return (*StringObject)(v.obj).value
}

// AsPlainObject returns the property storage of any reference value.
// Arrays and functions embed a PlainObject for their named properties.
func (v Value) AsPlainObject() *PlainObject {
	switch v.typ {
	case TypeObject:
		return (*PlainObject)(v.obj)
	case TypeArray:
		return &(*ArrayObject)(v.obj).PlainObject
	case TypeFunction:
		return &(*FunctionObject)(v.obj).PlainObject
	}
	panic("value is not an object")
}

func (v Value) AsArray() *ArrayObject {
	if v.typ != TypeArray {
		panic("value is not an array")
	}
	return (*ArrayObject)(v.obj)
}

func (v Value) AsFunction() *FunctionObject {
	if v.typ != TypeFunction {
		panic("value is not a function")
	}
	return (*FunctionObject)(v.obj)
}

// --- Truthiness ---

// IsFalsey checks if the value is considered falsey according to ECMAScript rules.
// null, undefined, false, +0, -0, NaN, "" are falsey. Everything else is truthy.
func (v Value) IsFalsey() bool {
	switch v.typ {
	case TypeNull, TypeUndefined:
		return true
	case TypeBoolean:
		return !v.AsBoolean()
	case TypeNumber:
		f := v.AsFloat()
		return f == 0 || math.IsNaN(f) // Catches +0, -0, NaN
	case TypeString:
		return v.AsString() == ""
	default:
		// Objects, arrays and functions are always truthy
		return false
	}
}

// IsTruthy checks if the value is considered truthy (opposite of IsFalsey).
func (v Value) IsTruthy() bool {
	return !v.IsFalsey()
}

// --- Equality ---

// Is compares two values using SameValueZero: NaN is NaN, +0 is -0.
func (v Value) Is(other Value) bool {
	if v.typ == TypeNumber && other.typ == TypeNumber {
		vf, of := v.AsFloat(), other.AsFloat()
		if math.IsNaN(vf) && math.IsNaN(of) {
			return true
		}
		return vf == of
	}
	return v.StrictlyEquals(other)
}

// StrictlyEquals compares two values using the ECMAScript Strict Equality Comparison (`===`).
// Types must match, no coercion. NaN !== NaN. +0 === -0. Reference types are
// equal only when they denote the same object.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false // Different types are never strictly equal
	}

	switch v.typ {
	case TypeUndefined, TypeNull:
		return true // Singleton types are always equal to themselves
	case TypeBoolean:
		return v.payload == other.payload
	case TypeNumber:
		vf := v.AsFloat()
		of := other.AsFloat()
		// Standard float comparison already makes NaN unequal to everything
		return vf == of
	case TypeString:
		a, b := v.AsString(), other.AsString()
		return len(a) == len(b) && a == b
	case TypeObject, TypeArray, TypeFunction:
		return v.obj == other.obj
	default:
		panic(fmt.Sprintf("Unhandled type in StrictlyEquals comparison: %v", v.typ))
	}
}

// --- Display ---

// Inspect returns a developer-friendly representation of Value, similar to a REPL.
func (v Value) Inspect() string {
	return v.inspectWithDepth(false, 0, 8)
}

func (v Value) inspectWithDepth(nested bool, depth int, maxDepth int) string {
	if depth >= maxDepth {
		return "<…>"
	}
	switch v.typ {
	case TypeString:
		if nested {
			return strconv.Quote(v.AsString())
		}
		return v.AsString()
	case TypeNumber:
		return NumberToString(v.AsFloat())
	case TypeBoolean, TypeNull, TypeUndefined:
		return primitiveToString(v)
	case TypeFunction:
		fn := v.AsFunction()
		if fn.Name != "" {
			return fmt.Sprintf("[Function: %s]", fn.Name)
		}
		return "[Function (anonymous)]"
	case TypeArray:
		arr := v.AsArray()
		parts := make([]string, arr.Length())
		for i := range parts {
			parts[i] = arr.Get(i).inspectWithDepth(true, depth+1, maxDepth)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeObject:
		obj := v.AsPlainObject()
		keys := obj.OwnKeys()
		if len(keys) == 0 {
			return "{}"
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			val, _ := obj.GetOwn(k)
			parts = append(parts, k+": "+val.inspectWithDepth(true, depth+1, maxDepth))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	}
	return fmt.Sprintf("<unknown type %d>", v.typ)
}

func (v Value) String() string { return v.Inspect() }
