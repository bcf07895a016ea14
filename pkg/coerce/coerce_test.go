package coerce

import (
	"errors"
	"math"
	"testing"

	"github.com/robertkrimen/otto"

	"jsbind/pkg/handle"
	"jsbind/pkg/vm"
)

// operand pairs a JavaScript source expression with the equivalent value
// built on a realm.
type operand struct {
	js    string
	build func(rt *vm.Realm) vm.Value
}

func lit(js string, v vm.Value) operand {
	return operand{js: js, build: func(*vm.Realm) vm.Value { return v }}
}

func withValueOf(js string, n float64) operand {
	return operand{js: js, build: func(rt *vm.Realm) vm.Value {
		obj := rt.NewObject()
		obj.AsPlainObject().SetOwn("valueOf", rt.NewFunction("valueOf", 0, func(rt *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
			return vm.NumberValue(n), nil
		}))
		return obj
	}}
}

var operands = []operand{
	lit("undefined", vm.Undefined),
	lit("null", vm.Null),
	lit("true", vm.True),
	lit("false", vm.False),
	lit("0", vm.IntegerValue(0)),
	lit("1", vm.IntegerValue(1)),
	lit("-0", vm.NumberValue(math.Copysign(0, -1))),
	lit("NaN", vm.NaN),
	lit("Infinity", vm.NumberValue(math.Inf(1))),
	lit(`""`, vm.NewString("")),
	lit(`"1"`, vm.NewString("1")),
	lit(`" 1 "`, vm.NewString(" 1 ")),
	lit(`"0x10"`, vm.NewString("0x10")),
	lit(`"16"`, vm.NewString("16")),
	lit(`"abc"`, vm.NewString("abc")),
	lit(`"true"`, vm.NewString("true")),
	{js: "[]", build: func(rt *vm.Realm) vm.Value { return rt.NewArray() }},
	{js: "[1]", build: func(rt *vm.Realm) vm.Value { return rt.NewArray(vm.IntegerValue(1)) }},
	{js: "[1,2]", build: func(rt *vm.Realm) vm.Value { return rt.NewArray(vm.IntegerValue(1), vm.IntegerValue(2)) }},
	{js: "({})", build: func(rt *vm.Realm) vm.Value { return rt.NewObject() }},
	withValueOf("({valueOf: function() { return 1 }})", 1),
}

func oracle(t *testing.T, src string) otto.Value {
	t.Helper()
	v, err := otto.New().Run(src)
	if err != nil {
		t.Fatalf("otto: %s: %v", src, err)
	}
	return v
}

func oracleBool(t *testing.T, src string) bool {
	t.Helper()
	b, err := oracle(t, src).ToBoolean()
	if err != nil {
		t.Fatalf("otto: %s: %v", src, err)
	}
	return b
}

func TestEqualityMatchesOracle(t *testing.T) {
	rt := vm.NewRealm()
	for _, a := range operands {
		for _, b := range operands {
			x, y := a.build(rt), b.build(rt)

			t.Run(a.js+" == "+b.js, func(t *testing.T) {
				want := oracleBool(t, "("+a.js+") == ("+b.js+")")
				got, err := Eq(x, y)
				if err != nil {
					t.Fatal(err)
				}
				if got != want {
					t.Errorf("Eq = %v, engine says %v", got, want)
				}
				if ne, _ := Neq(x, y); ne == got {
					t.Errorf("Neq is not the complement of Eq")
				}
			})

			// Object literals evaluate to fresh objects on each side, so
			// only primitives are compared strictly against the engine.
			if x.IsObject() || y.IsObject() {
				continue
			}
			t.Run(a.js+" === "+b.js, func(t *testing.T) {
				want := oracleBool(t, "("+a.js+") === ("+b.js+")")
				if got := Eqs(x, y); got != want {
					t.Errorf("Eqs = %v, engine says %v", got, want)
				}
				if Neqs(x, y) == Eqs(x, y) {
					t.Errorf("Neqs is not the complement of Eqs")
				}
			})
		}
	}
}

func TestTruthyMatchesOracle(t *testing.T) {
	rt := vm.NewRealm()
	for _, op := range operands {
		t.Run(op.js, func(t *testing.T) {
			want := oracleBool(t, "!!("+op.js+")")
			if got := Truthy(op.build(rt)); got != want {
				t.Errorf("Truthy = %v, engine says %v", got, want)
			}
		})
	}
}

func TestAddMatchesOracle(t *testing.T) {
	rt := vm.NewRealm()
	for _, a := range operands {
		for _, b := range operands {
			t.Run(a.js+" + "+b.js, func(t *testing.T) {
				src := "String((" + a.js + ") + (" + b.js + "))"
				want, err := oracle(t, src).ToString()
				if err != nil {
					t.Fatal(err)
				}
				got, err := Add(a.build(rt), b.build(rt))
				if err != nil {
					t.Fatal(err)
				}
				if s, _ := vm.ToString(got); s != want {
					t.Errorf("Add = %q, engine says %q", s, want)
				}
			})
		}
	}
}

func TestStrictEqualityProperties(t *testing.T) {
	rt := vm.NewRealm()
	if Eqs(1, "1") {
		t.Errorf(`eqs(1, "1") should be false`)
	}
	if eq, _ := Eq(1, "1"); !eq {
		t.Errorf(`eq(1, "1") should be true`)
	}
	if Eqs(vm.NaN, vm.NaN) {
		t.Errorf("NaN must not be strictly equal to itself")
	}
	if eq, _ := Eq(math.NaN(), math.NaN()); eq {
		t.Errorf("NaN must not be loosely equal to itself")
	}

	a := handle.NewArray(rt, 1, 2)
	b := handle.NewArray(rt, 1, 2)
	if Eqs(a, b) {
		t.Errorf("distinct arrays with equal contents must not be strictly equal")
	}
	same := handle.ArrayOf(rt, a.JSValue())
	if !Eqs(a, same) {
		t.Errorf("two handles over the same array must be strictly equal")
	}
	if eq, _ := Eq(a, b); eq {
		t.Errorf("loose equality between two objects is identity too")
	}
}

var errEvaluated = errors.New("lazy operand was evaluated")

func raising[T any]() Lazy[T] {
	return func() (T, error) {
		var zero T
		return zero, errEvaluated
	}
}

func TestAndShortCircuits(t *testing.T) {
	got, err := And[any](0, raising[any]())
	if err != nil {
		t.Fatalf("And(0, raising) evaluated its second operand: %v", err)
	}
	if got != 0 {
		t.Errorf("And(0, raising) = %v, want 0", got)
	}

	got, err = And[any]("x", Eager[any](7))
	if err != nil || got != 7 {
		t.Errorf("And(truthy, 7) = %v, %v", got, err)
	}
	if _, err := And[any](true, raising[any]()); !errors.Is(err, errEvaluated) {
		t.Errorf("And(true, raising) should evaluate and surface the error, got %v", err)
	}
}

func TestOrShortCircuits(t *testing.T) {
	got, err := Or[any]("x", raising[any]())
	if err != nil {
		t.Fatalf("Or(\"x\", raising) evaluated its second operand: %v", err)
	}
	if got != "x" {
		t.Errorf("Or(\"x\", raising) = %v", got)
	}

	got, err = Or[any]("", Eager[any]("fallback"))
	if err != nil || got != "fallback" {
		t.Errorf("Or(\"\", fallback) = %v, %v", got, err)
	}
}

func TestShortCircuitReturnsOperandUnconverted(t *testing.T) {
	rt := vm.NewRealm()
	empty := handle.NewString(rt, "")
	other := handle.NewString(rt, "other")
	got, err := And(empty, Eager(other))
	if err != nil {
		t.Fatal(err)
	}
	if got.JSValue().AsString() != "" {
		t.Errorf("And should return the falsy handle itself")
	}

	arr := handle.NewArray(rt)
	got2, err := Or(arr, raising[handle.Array]())
	if err != nil || !Eqs(got2, arr) {
		t.Errorf("Or should return the truthy (empty) array unevaluated: %v", err)
	}
}

func TestCond(t *testing.T) {
	got, err := Cond(true, Eager("x"), raising[string]())
	if err != nil || got != "x" {
		t.Errorf("Cond(true, x, raising) = %q, %v", got, err)
	}
	got, err = Cond(false, raising[string](), Eager("y"))
	if err != nil || got != "y" {
		t.Errorf("Cond(false, raising, y) = %q, %v", got, err)
	}
	got, err = Cond(vm.NaN, Eager("then"), Eager("else"))
	if err != nil || got != "else" {
		t.Errorf("NaN test should take the else branch, got %q", got)
	}
}

func TestConversionErrorsPropagate(t *testing.T) {
	rt := vm.NewRealm()
	boom := errors.New("boom")
	obj := rt.NewObject()
	obj.AsPlainObject().SetOwn("valueOf", rt.NewFunction("valueOf", 0, func(rt *vm.Realm, this vm.Value, args []vm.Value) (vm.Value, error) {
		return vm.Undefined, boom
	}))
	if _, err := Eq(obj, 1); !errors.Is(err, boom) {
		t.Errorf("Eq should surface the valueOf failure, got %v", err)
	}
	if _, err := Add(obj, 1); !errors.Is(err, boom) {
		t.Errorf("Add should surface the valueOf failure, got %v", err)
	}
}
