// Package coerce implements the operators whose semantics depend on the
// runtime's implicit conversions: loose and strict equality, their
// negations, short-circuit AND/OR, the conditional operator and `+`.
//
// Operands are vm.Values, anything implementing vm.Valuer (typed handles)
// or host primitives (bool, string, numbers, nil as null). The second
// operand of And/Or and both branches of Cond are Lazy, so the branch not
// taken is never evaluated.
package coerce

import (
	"jsbind/pkg/vm"
)

// Lazy is a deferred operand, evaluated at most once by the operator it is
// passed to and only when the operator needs its value.
type Lazy[T any] func() (T, error)

// Eager wraps an already computed value as a Lazy operand.
func Eager[T any](v T) Lazy[T] {
	return func() (T, error) { return v, nil }
}

func valueOf(x any) vm.Value { return vm.ValueOf(x) }

// Truthy applies the boolean conversion: false, 0, -0, NaN, "", null and
// undefined are falsy; everything else, every object included, is truthy.
func Truthy(x any) bool { return vm.ToBoolean(valueOf(x)) }

// --- Equality ---

// Eqs is strict equality (`===`): no conversions, NaN is unequal to itself,
// objects are equal only when they are the same object.
func Eqs(a, b any) bool {
	return valueOf(a).StrictlyEquals(valueOf(b))
}

// Neqs is `!==`.
func Neqs(a, b any) bool { return !Eqs(a, b) }

// Eq is loose equality (`==`). Same-type operands compare strictly;
// null and undefined equal each other; strings convert to numbers against
// numbers; booleans convert to 0 or 1; objects convert to primitives
// (valueOf, then toString) against primitives. The error result carries a
// failure raised by a conversion method.
func Eq(a, b any) (bool, error) {
	x, y := valueOf(a), valueOf(b)
	for {
		if x.Type() == y.Type() || (x.IsObject() && y.IsObject()) {
			return x.StrictlyEquals(y), nil
		}
		if x.IsNullish() && y.IsNullish() {
			return true, nil
		}
		if x.IsNullish() || y.IsNullish() {
			return false, nil
		}

		if x.IsNumber() && y.IsString() {
			return x.AsFloat() == vm.StringToNumber(y.AsString()), nil
		}
		if x.IsString() && y.IsNumber() {
			return vm.StringToNumber(x.AsString()) == y.AsFloat(), nil
		}

		// Booleans become numbers and the comparison restarts
		if x.IsBoolean() {
			x = boolToNumber(x)
			continue
		}
		if y.IsBoolean() {
			y = boolToNumber(y)
			continue
		}

		// Object against primitive: convert the object and restart
		var err error
		if x.IsObject() {
			if x, err = vm.ToPrimitive(x, vm.HintDefault); err != nil {
				return false, err
			}
			continue
		}
		if y.IsObject() {
			if y, err = vm.ToPrimitive(y, vm.HintDefault); err != nil {
				return false, err
			}
			continue
		}
		return false, nil
	}
}

// Neq is `!=`.
func Neq(a, b any) (bool, error) {
	eq, err := Eq(a, b)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func boolToNumber(v vm.Value) vm.Value {
	if v.AsBoolean() {
		return vm.IntegerValue(1)
	}
	return vm.IntegerValue(0)
}

// --- Short-circuit operators ---

// And is `a && b`: a when a is falsy, otherwise the value of b. b is not
// evaluated when a is falsy.
func And[T any](a T, b Lazy[T]) (T, error) {
	if !Truthy(a) {
		return a, nil
	}
	return b()
}

// Or is `a || b`: a when a is truthy, otherwise the value of b. b is not
// evaluated when a is truthy.
func Or[T any](a T, b Lazy[T]) (T, error) {
	if Truthy(a) {
		return a, nil
	}
	return b()
}

// Cond is `test ? then : els`. Only the branch taken is evaluated.
func Cond[T any](test any, then, els Lazy[T]) (T, error) {
	if Truthy(test) {
		return then()
	}
	return els()
}

// --- Addition ---

// Add is the `+` operator: both operands are converted to primitives; if
// either is a string the result is the concatenation of both as strings,
// otherwise their numeric sum.
func Add(a, b any) (vm.Value, error) {
	x, err := vm.ToPrimitive(valueOf(a), vm.HintDefault)
	if err != nil {
		return vm.Undefined, err
	}
	y, err := vm.ToPrimitive(valueOf(b), vm.HintDefault)
	if err != nil {
		return vm.Undefined, err
	}
	if x.IsString() || y.IsString() {
		xs, err := vm.ToString(x)
		if err != nil {
			return vm.Undefined, err
		}
		ys, err := vm.ToString(y)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NewString(xs + ys), nil
	}
	xn, err := vm.ToNumber(x)
	if err != nil {
		return vm.Undefined, err
	}
	yn, err := vm.ToNumber(y)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(xn + yn), nil
}
