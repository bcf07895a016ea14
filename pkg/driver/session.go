// Package driver runs the operator playground behind `jsbind repl` and
// `jsbind -e`: one line per operator application, operands written as YAML
// flow literals.
package driver

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"jsbind/pkg/coerce"
	"jsbind/pkg/errors"
	"jsbind/pkg/member"
	"jsbind/pkg/vm"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// Session is an operator playground: one realm plus the names bound with
// `let`. Bindings hold values, so `$a` names the same object each time and
// identity can be observed with eqs.
type Session struct {
	rt       *vm.Realm
	bindings map[string]vm.Value
	out      io.Writer
}

// NewSession creates a playground writing results to out.
func NewSession(out io.Writer) *Session {
	return &Session{rt: vm.NewRealm(), bindings: make(map[string]vm.Value), out: out}
}

func (s *Session) Realm() *vm.Realm { return s.rt }

// Bindings returns the bound names in sorted order.
func (s *Session) Bindings() []string {
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type command struct {
	arity int // operands, or -1 for commands that parse their own input
	run   func(s *Session, ops []lazyOperand, rest string) (vm.Value, error)
}

var commands = map[string]command{
	"eq": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		return binaryBool(ops, coerce.Eq)
	}},
	"neq": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		return binaryBool(ops, coerce.Neq)
	}},
	"eqs": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		return binaryBool(ops, func(a, b any) (bool, error) { return coerce.Eqs(a, b), nil })
	}},
	"neqs": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		return binaryBool(ops, func(a, b any) (bool, error) { return coerce.Neqs(a, b), nil })
	}},
	"and": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		a, err := ops[0]()
		if err != nil {
			return vm.Undefined, err
		}
		return coerce.And(a, coerce.Lazy[vm.Value](ops[1]))
	}},
	"or": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		a, err := ops[0]()
		if err != nil {
			return vm.Undefined, err
		}
		return coerce.Or(a, coerce.Lazy[vm.Value](ops[1]))
	}},
	"cond": {3, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		test, err := ops[0]()
		if err != nil {
			return vm.Undefined, err
		}
		return coerce.Cond(test, coerce.Lazy[vm.Value](ops[1]), coerce.Lazy[vm.Value](ops[2]))
	}},
	"add": {2, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		a, b, err := forceBoth(ops)
		if err != nil {
			return vm.Undefined, err
		}
		return coerce.Add(a, b)
	}},
	"truthy": {1, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		v, err := ops[0]()
		return vm.BooleanValue(coerce.Truthy(v)), err
	}},
	"typeof": {1, func(s *Session, ops []lazyOperand, _ string) (vm.Value, error) {
		v, err := ops[0]()
		return vm.NewString(v.TypeOf()), err
	}},
	"let":  {-1, (*Session).let},
	"path": {-1, (*Session).path},
}

func forceBoth(ops []lazyOperand) (vm.Value, vm.Value, error) {
	a, err := ops[0]()
	if err != nil {
		return vm.Undefined, vm.Undefined, err
	}
	b, err := ops[1]()
	return a, b, err
}

func binaryBool(ops []lazyOperand, op func(a, b any) (bool, error)) (vm.Value, error) {
	a, b, err := forceBoth(ops)
	if err != nil {
		return vm.Undefined, err
	}
	r, err := op(a, b)
	return vm.BooleanValue(r), err
}

// Eval runs one playground line.
func (s *Session) Eval(line string) (vm.Value, error) {
	line = strings.TrimSpace(line)
	name, rest, _ := strings.Cut(line, " ")
	cmd, ok := commands[name]
	if !ok {
		return vm.Undefined, fmt.Errorf("unknown command %q (try :help)", name)
	}
	rest = strings.TrimSpace(rest)
	debugPrintf("[driver] %s %q\n", name, rest)
	if cmd.arity < 0 {
		return cmd.run(s, nil, rest)
	}
	ops, err := s.operands(rest)
	if err != nil {
		return vm.Undefined, err
	}
	if len(ops) != cmd.arity {
		return vm.Undefined, fmt.Errorf("%s takes %d operand(s), got %d", name, cmd.arity, len(ops))
	}
	return cmd.run(s, ops, rest)
}

// let binds a name: `let x = [1, 2]`.
func (s *Session) let(_ []lazyOperand, rest string) (vm.Value, error) {
	name, lit, ok := strings.Cut(rest, "=")
	name = strings.TrimSpace(name)
	if !ok || !member.IsIdentifierName(name) {
		return vm.Undefined, fmt.Errorf("usage: let name = literal")
	}
	ops, err := s.operands(lit)
	if err != nil {
		return vm.Undefined, err
	}
	if len(ops) != 1 {
		return vm.Undefined, fmt.Errorf("let takes exactly one literal")
	}
	v, err := ops[0]()
	if err != nil {
		return vm.Undefined, err
	}
	s.bindings[name] = v
	return v, nil
}

// path resolves a member path against the global object, or against a
// binding when it starts with `$name.`.
func (s *Session) path(_ []lazyOperand, rest string) (vm.Value, error) {
	scope := vm.Undefined
	src := rest
	if strings.HasPrefix(rest, "$") {
		name, tail, _ := strings.Cut(rest[1:], ".")
		v, ok := s.bindings[name]
		if !ok {
			return vm.Undefined, fmt.Errorf("unbound name $%s", name)
		}
		if tail == "" {
			return v, nil
		}
		scope, src = v, tail
	}
	p, err := member.Parse(src)
	if err != nil {
		return vm.Undefined, err
	}
	return p.With(s.rt, scope).Read()
}

// DisplayResult prints the value or the error and reports success.
func (s *Session) DisplayResult(value vm.Value, err error) bool {
	if err != nil {
		errors.DisplayErrors(s.out, []error{err})
		return false
	}
	fmt.Fprintln(s.out, value.Inspect())
	return true
}

// --- Operands ---

type lazyOperand func() (vm.Value, error)

// operands splits a comma-separated operand list by reading it as a YAML
// flow sequence. Each operand is converted only when forced.
func (s *Session) operands(src string) ([]lazyOperand, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte("["+src+"]"), &doc); err != nil {
		return nil, fmt.Errorf("bad operands: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("bad operands %q", src)
	}
	items := doc.Content[0].Content
	ops := make([]lazyOperand, len(items))
	for i, node := range items {
		node := node
		ops[i] = func() (vm.Value, error) { return s.literal(node) }
	}
	return ops, nil
}

// literal converts a YAML node to a value. Plain scalars `undefined`, `NaN`,
// `Infinity` and `-Infinity` name those values and `$name` a binding;
// quoted scalars are always strings.
func (s *Session) literal(node *yaml.Node) (vm.Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return s.literal(node.Alias)
	case yaml.SequenceNode:
		elems := make([]vm.Value, len(node.Content))
		for i, child := range node.Content {
			v, err := s.literal(child)
			if err != nil {
				return vm.Undefined, err
			}
			elems[i] = v
		}
		return s.rt.NewArray(elems...), nil
	case yaml.MappingNode:
		obj := s.rt.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := s.literal(node.Content[i+1])
			if err != nil {
				return vm.Undefined, err
			}
			if _, err := s.rt.Set(obj, node.Content[i].Value, v); err != nil {
				return vm.Undefined, err
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		return s.scalar(node)
	}
	return vm.Undefined, fmt.Errorf("unsupported literal at line %d", node.Line)
}

func (s *Session) scalar(node *yaml.Node) (vm.Value, error) {
	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		return vm.NewString(node.Value), nil
	}
	switch node.Value {
	case "undefined":
		return vm.Undefined, nil
	case "NaN":
		return vm.NaN, nil
	case "Infinity", "+Infinity":
		return vm.NumberValue(math.Inf(1)), nil
	case "-Infinity":
		return vm.NumberValue(math.Inf(-1)), nil
	}
	if strings.HasPrefix(node.Value, "$") {
		v, ok := s.bindings[node.Value[1:]]
		if !ok {
			return vm.Undefined, fmt.Errorf("unbound name %s", node.Value)
		}
		return v, nil
	}

	switch node.ShortTag() {
	case "!!null":
		return vm.Null, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(b), nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(f), nil
	}
	return vm.NewString(node.Value), nil
}
