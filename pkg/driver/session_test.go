package driver

import (
	"bytes"
	"strings"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`eq 1, "1"`, "true"},
		{`eqs 1, "1"`, "false"},
		{`neq null, undefined`, "false"},
		{`neqs null, undefined`, "true"},
		{`eqs NaN, NaN`, "false"},
		{`eq [], false`, "true"},
		{`eq "0x10", 16`, "true"},
		{`eqs [1, 2], [1, 2]`, "false"},
		{`and 0, $unbound`, "0"},
		{`or "x", $unbound`, "x"},
		{`and "x", [1]`, "[1]"},
		{`cond true, 1, $unbound`, "1"},
		{`cond "", $unbound, 2`, "2"},
		{`add 1, "2"`, "12"},
		{`add 1, 2`, "3"},
		{`add [1, 2], {a: 1}`, "1,2[object Object]"},
		{`add true, null`, "1"},
		{`truthy []`, "true"},
		{`truthy "0"`, "true"},
		{`truthy -0.0`, "false"},
		{`typeof null`, "object"},
		{`typeof "undefined"`, "string"},
		{`typeof undefined`, "undefined"},
		{`path Array.prototype.constructor.name`, "Array"},
		{`path Number.prototype.missing`, "undefined"},
		{`path nothing.here.at.all`, "undefined"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := NewSession(&bytes.Buffer{})
			v, err := s.Eval(tt.line)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tt.line, err)
			}
			if got := v.Inspect(); got != tt.want {
				t.Errorf("Eval(%q) = %s, want %s", tt.line, got, tt.want)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		line    string
		errPart string
	}{
		{`frobnicate 1`, "unknown command"},
		{`eq 1`, "takes 2 operand(s)"},
		{`and 1, $unbound`, "unbound name $unbound"},
		{`eq [1, 2`, "bad operands"},
		{`let = 1`, "usage"},
		{`path a..b`, "not an identifier"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s := NewSession(&bytes.Buffer{})
			_, err := s.Eval(tt.line)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestBindingsPreserveIdentity(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)
	script := strings.Join([]string{
		"# arrays compare by identity",
		"let a = [1, 2]",
		"let b = [1, 2]",
		"eqs $a, $a",
		"eqs $a, $b",
		"let o = {inner: {x: 5}}",
		"path $o.inner.x",
		"",
		":bindings",
	}, "\n")
	if !s.RunLines(strings.NewReader(script)) {
		t.Fatalf("script failed:\n%s", out.String())
	}
	want := strings.Join([]string{
		"[1, 2]",
		"[1, 2]",
		"true",
		"false",
		"{ inner: { x: 5 } }",
		"5",
		"$a = [1, 2]",
		"$b = [1, 2]",
		"$o = { inner: { x: 5 } }",
		"",
	}, "\n")
	if got := out.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRunLinesReportsFailures(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)
	if s.RunLines(strings.NewReader("eq 1, 1\nbogus\neq 2, 2\n:quit\neq 3, 3\n")) {
		t.Errorf("a failing line should make RunLines report false")
	}
	got := out.String()
	if strings.Count(got, "true") != 2 {
		t.Errorf("lines after :quit must not run; output:\n%s", got)
	}
	if !strings.Contains(got, "Uncaught: unknown command") {
		t.Errorf("error not displayed; output:\n%s", got)
	}
}

func TestRuntimeErrorsAreDisplayedWithKind(t *testing.T) {
	var out bytes.Buffer
	s := NewSession(&out)
	if !s.DisplayResult(s.Eval(`path Function.prototype.apply`)) {
		t.Fatalf("resolving a builtin failed: %s", out.String())
	}
	if got := out.String(); got != "[Function: apply]\n" {
		t.Errorf("output = %q", got)
	}
	out.Reset()
	if s.DisplayResult(s.Eval(`add {valueOf: 1, toString: 2}, 1`)) {
		t.Fatalf("expected a conversion failure")
	}
	if !strings.Contains(out.String(), "TypeError Error: Cannot convert object to primitive value") {
		t.Errorf("unexpected error output: %q", out.String())
	}
}

func TestCompleter(t *testing.T) {
	got := completer("ne")
	if len(got) != 2 || got[0] != "neq " || got[1] != "neqs " {
		t.Errorf("completer(\"ne\") = %v", got)
	}
	if got := completer(":q"); len(got) != 1 || got[0] != ":quit" {
		t.Errorf("completer(\":q\") = %v", got)
	}
}
