package handle

import (
	"jsbind/pkg/args"
	"jsbind/pkg/errors"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

var lengthPath = member.Root("length")

// --- Object ---

// Object is the most general handle. Every other kind embeds its behaviour.
type Object struct{ base }

// ObjectOf views x as an object handle.
func ObjectOf(rt *vm.Realm, x any) Object { return Object{newBase(rt, rt.FromGo(x))} }

// NewObject allocates an empty object.
func NewObject(rt *vm.Realm) Object { return Object{newBase(rt, rt.NewObject())} }

func (o Object) Kind() Kind { return KindObject }

func (o Object) Current() (Handle, error) { return o, o.refresh() }

// Assign re-points the handle (and its aliases) at x.
func (o Object) Assign(x any) Object {
	o.assign(x)
	return o
}

// Set writes the named property.
func (o Object) Set(name string, value any) (vm.Value, error) {
	return o.WriteMember(member.Root(name), value)
}

// Delete deletes the named property.
func (o Object) Delete(name string) (bool, error) { return o.DeleteMember(member.Root(name)) }

// --- Array ---

// Array views an array-like value. Element access takes runtime-computed
// indices and goes through computed-key access, never a member path.
type Array struct{ base }

func ArrayOf(rt *vm.Realm, x any) Array { return Array{newBase(rt, rt.FromGo(x))} }

// NewArray allocates an array holding elements.
func NewArray(rt *vm.Realm, elements ...any) Array {
	vals := make([]vm.Value, len(elements))
	for i, el := range elements {
		vals[i] = rt.FromGo(el)
	}
	return Array{newBase(rt, rt.NewArray(vals...))}
}

func (a Array) Kind() Kind { return KindArray }

func (a Array) Current() (Handle, error) { return a, a.refresh() }

func (a Array) Assign(x any) Array {
	a.assign(x)
	return a
}

// Get reads element index, which may be any runtime key.
func (a Array) Get(index any) (vm.Value, error) {
	return a.rt.GetIndex(a.cell.v, a.rt.FromGo(index))
}

// Set writes element index and returns the stored value.
func (a Array) Set(index any, value any) (vm.Value, error) {
	return a.rt.SetIndex(a.cell.v, a.rt.FromGo(index), a.rt.FromGo(value))
}

// Delete removes element index, reporting whether it existed and was
// removable. Length is unchanged.
func (a Array) Delete(index any) bool {
	key := a.rt.FromGo(index)
	k, err := vm.ToPropertyKey(key)
	if err != nil || !a.rt.HasOwn(a.cell.v, k) {
		return false
	}
	return a.rt.Delete(a.cell.v, k)
}

// Length reads `length` and converts it to an integer.
func (a Array) Length() (int, error) { return readLength(a.base) }

// SetLength writes `length` and returns the stored length.
func (a Array) SetLength(n any) (int, error) {
	stored, err := a.WriteMember(lengthPath, n)
	if err != nil {
		return 0, err
	}
	return toLength(stored)
}

func readLength(b base) (int, error) {
	v, err := b.ReadMember(lengthPath)
	if err != nil {
		return 0, err
	}
	return toLength(v)
}

// toLength clamps a length to [0, vm.MaxArrayLength] as ToLength does for
// array-likes.
func toLength(v vm.Value) (int, error) {
	n, err := vm.ToIntegerOrInfinity(v)
	switch {
	case err != nil:
		return 0, err
	case n <= 0:
		return 0, nil
	case n > vm.MaxArrayLength:
		return vm.MaxArrayLength, nil
	}
	return int(n), nil
}

// --- Function ---

// Function views a callable. Whether the value really is callable is only
// checked when it is called, as the runtime does.
type Function struct{ base }

func FunctionOf(rt *vm.Realm, x any) Function { return Function{newBase(rt, rt.FromGo(x))} }

// NewFunction wraps a native body in a fresh function value.
func NewFunction(rt *vm.Realm, name string, arity int, fn vm.NativeFn) Function {
	return Function{newBase(rt, rt.NewFunction(name, arity, fn))}
}

func (f Function) Kind() Kind { return KindFunction }

func (f Function) Current() (Handle, error) { return f, f.refresh() }

func (f Function) Assign(x any) Function {
	f.assign(x)
	return f
}

// Invoke calls the function with an undefined receiver.
func (f Function) Invoke(a *args.List) (vm.Value, error) {
	return vm.Call(f.cell.v, vm.Undefined, a.Seal())
}

// Construct runs the function as a constructor.
func (f Function) Construct(a *args.List) (Object, error) {
	v, err := vm.Construct(f.cell.v, a.Seal())
	if err != nil {
		return Object{}, err
	}
	return Object{newBase(f.rt, v)}, nil
}

// CallAsMethod calls the function with receiver as `this`.
func (f Function) CallAsMethod(receiver any, a *args.List) (vm.Value, error) {
	return vm.Call(f.cell.v, f.rt.FromGo(receiver), a.Seal())
}

// ApplyWithArgsArray calls the function with receiver as `this` and the
// elements of an array-like as positional arguments.
func (f Function) ApplyWithArgsArray(receiver any, argsArray any) (vm.Value, error) {
	fn := f.cell.v
	if !fn.IsCallable() {
		return vm.Undefined, errors.NotCallable("%s is not a function", fn.Inspect())
	}
	list, err := f.rt.ArrayLikeToList(f.rt.FromGo(argsArray))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.Call(fn, f.rt.FromGo(receiver), list)
}

// Name reads the function's `name`.
func (f Function) Name() (string, error) {
	v, err := f.Get("name")
	if err != nil {
		return "", err
	}
	return vm.ToString(v)
}

// --- String ---

type String struct{ base }

func StringOf(rt *vm.Realm, x any) String { return String{newBase(rt, rt.FromGo(x))} }

// NewString returns a handle over the string primitive s.
func NewString(rt *vm.Realm, s string) String { return String{newBase(rt, vm.NewString(s))} }

func (s String) Kind() Kind { return KindString }

func (s String) Current() (Handle, error) { return s, s.refresh() }

func (s String) Assign(x any) String {
	s.assign(x)
	return s
}

// Length is the length in UTF-16 code units.
func (s String) Length() (int, error) { return readLength(s.base) }

// Value converts the current value to a Go string.
func (s String) Value() (string, error) { return vm.ToString(s.cell.v) }

// CharAt reads the code unit at index; out of range reads undefined.
func (s String) CharAt(index int) (vm.Value, error) {
	return s.rt.GetIndex(s.cell.v, vm.IntegerValue(index))
}

// --- Number ---

type Number struct{ base }

func NumberOf(rt *vm.Realm, x any) Number { return Number{newBase(rt, rt.FromGo(x))} }

func (n Number) Kind() Kind { return KindNumber }

func (n Number) Current() (Handle, error) { return n, n.refresh() }

func (n Number) Assign(x any) Number {
	n.assign(x)
	return n
}

// Float converts the current value with ToNumber.
func (n Number) Float() (float64, error) { return vm.ToNumber(n.cell.v) }

// --- Boolean ---

type Boolean struct{ base }

func BooleanOf(rt *vm.Realm, x any) Boolean { return Boolean{newBase(rt, rt.FromGo(x))} }

func (b Boolean) Kind() Kind { return KindBoolean }

func (b Boolean) Current() (Handle, error) { return b, b.refresh() }

func (b Boolean) Assign(x any) Boolean {
	b.assign(x)
	return b
}

// Bool converts the current value with ToBoolean.
func (b Boolean) Bool() bool { return vm.ToBoolean(b.cell.v) }
