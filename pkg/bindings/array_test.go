package bindings

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"testing"

	"jsbind/pkg/bindgen"
	"jsbind/pkg/errors"
	"jsbind/pkg/handle"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

func stringValue(t *testing.T, s handle.String) string {
	t.Helper()
	v, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	return v
}

func TestArrayWrappers(t *testing.T) {
	rt := vm.NewRealm()
	arr := handle.NewArray(rt, 1, 2)

	joined, err := Join(arr, "-")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := stringValue(t, joined); got != "1-2" {
		t.Errorf("Join = %q, want 1-2", got)
	}

	n, err := Push(arr, 3, "four")
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if f, _ := n.Float(); f != 4 {
		t.Errorf("Push returned %v, want 4", f)
	}
	if length, _ := arr.Length(); length != 4 {
		t.Errorf("Length after Push = %d, want 4", length)
	}

	s, err := ToString(arr)
	if err != nil {
		t.Fatalf("ToString: %v", err)
	}
	if got := stringValue(t, s); got != "1,2,3,four" {
		t.Errorf("ToString = %q", got)
	}

	other := handle.NewArray(rt, "a", "b")
	s, err = JoinCall(arr, other, "+")
	if err != nil {
		t.Fatalf("JoinCall: %v", err)
	}
	if got := stringValue(t, s); got != "a+b" {
		t.Errorf("JoinCall = %q, want a+b", got)
	}
}

func TestWrappersConvertHostOperands(t *testing.T) {
	rt := vm.NewRealm()
	arr := handle.NewArray(rt)
	if _, err := Push(arr, []int{5, 6}, map[string]any{"k": 1}); err != nil {
		t.Fatalf("Push with composite operands: %v", err)
	}
	if got := arr.String(); got != "[[5, 6], { k: 1 }]" {
		t.Errorf("array after Push = %s", got)
	}
	if _, err := Push(arr, struct{ X int }{1}); !errors.IsKind(err, errors.KindTypeError) {
		t.Fatalf("Push with a struct: got %v, want TypeError", err)
	}
	if n, _ := arr.Length(); n != 2 {
		t.Errorf("a rejected Push changed length to %d", n)
	}
}

func TestWrapperOnShadowedMember(t *testing.T) {
	rt := vm.NewRealm()
	arr := handle.NewArray(rt, 1)
	if _, err := arr.WriteMember(member.Root("join"), 5); err != nil {
		t.Fatalf("WriteMember: %v", err)
	}
	_, err := Join(arr, ",")
	if !errors.IsKind(err, errors.KindNotCallable) {
		t.Fatalf("Join on a shadowed member: got %v, want NotCallable", err)
	}
}

func TestRegistryEntries(t *testing.T) {
	want := map[string]handle.Kind{
		"join":      handle.KindString,
		"push":      handle.KindNumber,
		"toString":  handle.KindString,
		"join.call": handle.KindString,
	}
	entries := arrayWrappers.Entries()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for _, e := range entries {
		if kind, ok := want[e.Path.String()]; !ok || kind != e.Kind {
			t.Errorf("entry %s -> %s not expected", e.Path, e.Kind)
		}
	}
}

func funcNames(t *testing.T, name string, src []byte) []string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), name, src, 0)
	if err != nil {
		t.Fatalf("parsing %s: %v", name, err)
	}
	var names []string
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok {
			names = append(names, fn.Name.Name)
		}
	}
	sort.Strings(names)
	return names
}

func TestGeneratedFileIsCurrent(t *testing.T) {
	manifest, err := os.Open("array.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer manifest.Close()
	m, err := bindgen.LoadManifest(manifest)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	fresh, err := bindgen.Generate(bindgen.DefaultConfig(), m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	checkedIn, err := os.ReadFile("array_gen.go")
	if err != nil {
		t.Fatal(err)
	}

	got := funcNames(t, "array_gen.go", checkedIn)
	want := funcNames(t, "fresh.go", fresh)
	if len(got) != len(want) {
		t.Fatalf("array_gen.go declares %v, manifest generates %v; run go generate", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("array_gen.go declares %v, manifest generates %v; run go generate", got, want)
			break
		}
	}
}
