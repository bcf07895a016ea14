package handle

import (
	"math"
	"testing"

	"jsbind/pkg/args"
	"jsbind/pkg/errors"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

func TestAssignAliases(t *testing.T) {
	rt := vm.NewRealm()
	a := NewArray(rt, 1, 2)
	original := a.JSValue()
	alias := a
	other := ArrayOf(rt, original)

	replacement := NewArray(rt, 3)
	alias.Assign(replacement)

	if !a.JSValue().StrictlyEquals(replacement.JSValue()) {
		t.Errorf("assigning through an alias should re-point every copy")
	}
	if !other.JSValue().StrictlyEquals(original) {
		t.Errorf("a separately created handle must keep its own value")
	}
	if n, _ := other.Length(); n != 2 {
		t.Errorf("re-pointing must not mutate the old array, length now %d", n)
	}
}

func TestMutationVisibleThroughEveryHandle(t *testing.T) {
	rt := vm.NewRealm()
	a := NewArray(rt, 1, 2)
	b := ArrayOf(rt, a)
	if _, err := a.Set(0, "x"); err != nil {
		t.Fatal(err)
	}
	v, err := b.Get(0)
	if err != nil || v.AsString() != "x" {
		t.Errorf("b.Get(0) = %v, %v", v, err)
	}
	if !a.JSValue().StrictlyEquals(b.JSValue()) {
		t.Errorf("handles over the same array should be strictly equal")
	}
}

func TestArrayOperations(t *testing.T) {
	rt := vm.NewRealm()
	a := NewArray(rt, "a", "b", "c")

	if v, _ := a.Get("1"); v.AsString() != "b" {
		t.Errorf("string index should address the element, got %s", v.Inspect())
	}
	if v, _ := a.Get(10); !v.IsUndefined() {
		t.Errorf("out of range read = %s", v.Inspect())
	}
	if !a.Delete(1) || a.Delete(1) {
		t.Errorf("delete should succeed once and then report the element absent")
	}
	if n, _ := a.Length(); n != 3 {
		t.Errorf("delete must not change length, got %d", n)
	}
	n, err := a.SetLength("1")
	if err != nil || n != 1 {
		t.Errorf("SetLength = %d, %v", n, err)
	}
	if got := a.String(); got != `["a"]` {
		t.Errorf("array after truncation = %s", got)
	}
}

func TestArrayLikeLengthIsClamped(t *testing.T) {
	rt := vm.NewRealm()
	tests := []struct {
		name   string
		length vm.Value
		want   int
	}{
		{"infinite", vm.NumberValue(math.Inf(1)), vm.MaxArrayLength},
		{"too large", vm.NumberValue(1e20), vm.MaxArrayLength},
		{"negative infinite", vm.NumberValue(math.Inf(-1)), 0},
		{"negative", vm.NumberValue(-5), 0},
		{"NaN", vm.NaN, 0},
		{"fractional", vm.NumberValue(3.7), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := rt.NewObject()
			obj.AsPlainObject().SetOwn("length", tt.length)
			got, err := ArrayOf(rt, obj).Length()
			if err != nil {
				t.Fatalf("Length: %v", err)
			}
			if got != tt.want {
				t.Errorf("Length() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStringHandle(t *testing.T) {
	rt := vm.NewRealm()
	s := NewString(rt, "a😀")
	if n, _ := s.Length(); n != 3 {
		t.Errorf("length = %d, want 3 UTF-16 units", n)
	}
	if c, _ := s.CharAt(0); c.AsString() != "a" {
		t.Errorf("CharAt(0) = %s", c.Inspect())
	}
	if _, err := s.WriteMember(member.Root("length"), 1); !errors.IsKind(err, errors.KindPropertyUnwritable) {
		t.Errorf("writing a string's length: %v", err)
	}
}

func TestInvocationShapes(t *testing.T) {
	rt := vm.NewRealm()
	var seenThis vm.Value
	var seenArgs []vm.Value
	record := NewFunction(rt, "record", 0, func(rt *vm.Realm, this vm.Value, argv []vm.Value) (vm.Value, error) {
		seenThis, seenArgs = this, argv
		return vm.IntegerValue(len(argv)), nil
	})

	if _, err := record.Invoke(args.Empty().Add(1).Add(2).Add(3)); err != nil {
		t.Fatal(err)
	}
	if len(seenArgs) != 3 || seenArgs[0].AsFloat() != 1 || seenArgs[2].AsFloat() != 3 || !seenThis.IsUndefined() {
		t.Errorf("Invoke flattened to %v with this=%s", seenArgs, seenThis.Inspect())
	}

	recv := NewObject(rt)
	if _, err := record.CallAsMethod(recv, args.Of("x")); err != nil {
		t.Fatal(err)
	}
	if !seenThis.StrictlyEquals(recv.JSValue()) {
		t.Errorf("CallAsMethod receiver = %s", seenThis.Inspect())
	}

	list := NewArray(rt, 1, 2)
	if _, err := record.ApplyWithArgsArray(recv, list); err != nil {
		t.Fatal(err)
	}
	if len(seenArgs) != 2 {
		t.Errorf("ApplyWithArgsArray passed %d arguments, want 2", len(seenArgs))
	}
	if _, err := record.ApplyWithArgsArray(nil, nil); err != nil || len(seenArgs) != 0 {
		t.Errorf("null args array should mean no arguments: %v %v", seenArgs, err)
	}
}

func TestNotCallableIsRuntimeCheck(t *testing.T) {
	rt := vm.NewRealm()
	notFn := FunctionOf(rt, 42)

	tests := []struct {
		name string
		call func() error
	}{
		{"Invoke", func() error { _, err := notFn.Invoke(nil); return err }},
		{"CallAsMethod", func() error { _, err := notFn.CallAsMethod(nil, nil); return err }},
		{"ApplyWithArgsArray", func() error { _, err := notFn.ApplyWithArgsArray(nil, NewArray(rt)); return err }},
		{"Construct", func() error { _, err := notFn.Construct(nil); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.IsKind(err, errors.KindNotCallable) {
				t.Errorf("expected NotCallable, got %v", err)
			}
		})
	}
}

func TestConstructThroughGlobal(t *testing.T) {
	rt := vm.NewRealm()
	h, err := Global(rt, member.Root("Array"), KindFunction)
	if err != nil {
		t.Fatal(err)
	}
	ctor, ok := As[Function](h)
	if !ok {
		t.Fatalf("Array should narrow to a function handle")
	}
	obj, err := ctor.Construct(args.Of(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got := obj.String(); got != "[1, 2]" {
		t.Errorf("new Array(1, 2) = %s", got)
	}
}

func TestAsNarrowing(t *testing.T) {
	rt := vm.NewRealm()
	h := WrapValue(rt, []int{1})
	if h.Kind() != KindArray {
		t.Fatalf("WrapValue kind = %s", h.Kind())
	}
	obj, ok := As[Object](h)
	if !ok {
		t.Fatalf("arrays are objects")
	}
	if _, ok := As[Function](h); ok {
		t.Errorf("an array must not narrow to a function")
	}
	if _, ok := As[String](obj); ok {
		t.Errorf("an array must not narrow to a string")
	}
	back, ok := As[Array](obj)
	if !ok {
		t.Fatalf("narrowing back to Array failed")
	}
	back.Assign("replaced")
	if !h.JSValue().IsString() {
		t.Errorf("narrowed handles should alias the original")
	}
}

func TestLateBoundHandle(t *testing.T) {
	rt := vm.NewRealm()
	holder := NewObject(rt)
	first := NewArray(rt, 1)
	if _, err := holder.Set("items", first); err != nil {
		t.Fatal(err)
	}

	items, err := At(holder, member.Root("items"), KindArray)
	if err != nil {
		t.Fatal(err)
	}
	second := NewArray(rt, 1, 2, 3)
	if _, err := holder.Set("items", second); err != nil {
		t.Fatal(err)
	}
	if !items.JSValue().StrictlyEquals(first.JSValue()) {
		t.Errorf("value should only change on Current")
	}
	cur, err := items.Current()
	if err != nil {
		t.Fatal(err)
	}
	if !cur.JSValue().StrictlyEquals(second.JSValue()) {
		t.Errorf("Current should re-read the member")
	}

	plain := NewArray(rt)
	if got, _ := plain.Current(); !got.JSValue().StrictlyEquals(plain.JSValue()) {
		t.Errorf("Current on an unbound handle is the identity")
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	slice := member.Root("slice")
	reg.Declare(slice, KindArray)

	if err := reg.Register(member.Root("slice"), KindArray); err != nil {
		t.Errorf("re-registering the same pair: %v", err)
	}
	if err := reg.Register(member.Root("slice"), KindString); err == nil {
		t.Errorf("conflicting registration should fail")
	}
	if kind, ok := reg.Lookup(member.Root("slice")); !ok || kind != KindArray {
		t.Errorf("Lookup = %s, %v", kind, ok)
	}
	if _, err := reg.MustLookup(member.Root("nope")); !errors.IsKind(err, errors.KindUnregisteredWrapper) {
		t.Errorf("MustLookup on unregistered path: %v", err)
	}

	reg.Declare(member.Root("concat"), KindArray)
	entries := reg.Entries()
	if len(entries) != 2 || entries[0].Path.Name() != "concat" {
		t.Errorf("Entries not sorted by path: %v", entries)
	}
}

func TestRegistryKeepsBracketedRootsApart(t *testing.T) {
	r := NewRegistry()
	bare := member.Root("a b")
	viaGlobal := member.Root("globalThis").Member("a b")
	if err := r.Register(bare, KindArray); err != nil {
		t.Fatal(err)
	}
	if kind, ok := r.Lookup(viaGlobal); ok {
		t.Fatalf("Lookup(%s) = %s for a path never registered", viaGlobal, kind)
	}
	if err := r.Register(viaGlobal, KindString); err != nil {
		t.Fatalf("Register(%s): %v", viaGlobal, err)
	}
	if kind, _ := r.Lookup(bare); kind != KindArray {
		t.Errorf("Lookup(%s) = %s, want Array", bare, kind)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestWrapResultFallsBackToObject(t *testing.T) {
	rt := vm.NewRealm()
	reg := NewRegistry()
	h := reg.WrapResult(rt, member.Root("unknown"), rt.NewArray())
	if h.Kind() != KindObject {
		t.Errorf("unregistered result wrapped as %s, want Object", h.Kind())
	}
}

func TestCallMember(t *testing.T) {
	rt := vm.NewRealm()
	reg := NewRegistry()
	join := reg.Declare(member.Root("join"), KindString)
	push := reg.Declare(member.Root("push"), KindNumber)

	arr := NewArray(rt, 1, 2)
	n, err := reg.CallMember(arr, push, args.Of(3))
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind() != KindNumber || n.JSValue().AsFloat() != 3 {
		t.Errorf("push returned %s %s", n.Kind(), n.JSValue().Inspect())
	}

	s, err := reg.CallMember(arr, join, args.Of("-"))
	if err != nil {
		t.Fatal(err)
	}
	str, ok := As[String](s)
	if !ok {
		t.Fatalf("join result should be a string handle, got %s", s.Kind())
	}
	if v, _ := str.Value(); v != "1-2-3" {
		t.Errorf("join = %q", v)
	}

	if _, err := reg.CallMember(arr, member.Root("missing"), nil); !errors.IsKind(err, errors.KindNotCallable) {
		t.Errorf("calling a missing member: %v", err)
	}
}

func TestCallMemberQualifiedReceiver(t *testing.T) {
	rt := vm.NewRealm()
	obj := NewObject(rt)
	inner := NewObject(rt)
	inner.Set("tag", "inner")
	obj.Set("inner", inner)
	inner.Set("who", NewFunction(rt, "who", 0, func(rt *vm.Realm, this vm.Value, argv []vm.Value) (vm.Value, error) {
		return rt.Get(this, "tag")
	}))

	got, err := CallMember(obj, member.Root("inner").Member("who"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := got.JSValue(); !v.IsString() || v.AsString() != "inner" {
		t.Errorf("qualified call receiver: got %s", v.Inspect())
	}
}

func TestIndexExpr(t *testing.T) {
	if got := IndexExpr("arr", "i + 1"); got != "arr[i + 1]" {
		t.Errorf("IndexExpr = %q", got)
	}
}
