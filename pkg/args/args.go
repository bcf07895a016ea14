// Package args provides the ordered, append-only argument list used for
// invocation and construction.
package args

import (
	"fmt"

	"jsbind/pkg/vm"
)

// List collects positional arguments. Append order is the parameter order.
// Once a list has been handed to an invocation it is sealed and further
// appends panic; build lists immediately before the call that consumes them.
type List struct {
	values []vm.Value
	sealed bool
}

// Empty returns a new list with no arguments.
func Empty() *List { return &List{} }

// Of returns a list holding the given operands, converted with vm.ValueOf.
func Of(operands ...any) *List {
	l := &List{values: make([]vm.Value, 0, len(operands))}
	for _, op := range operands {
		l.Add(op)
	}
	return l
}

// From returns a list holding the given operands converted in rt, so
// slices and maps become arrays and objects. An operand rt cannot convert is
// reported instead of panicking.
func From(rt *vm.Realm, operands ...any) (*List, error) {
	l := &List{values: make([]vm.Value, 0, len(operands))}
	for i, op := range operands {
		v, err := rt.ConvertGo(op)
		if err != nil {
			return nil, fmt.Errorf("args: operand %d: %w", i, err)
		}
		l.values = append(l.values, v)
	}
	return l, nil
}

// Add appends one operand and returns the list for chaining. Operands may
// be vm.Values, anything implementing vm.Valuer (typed handles), or host
// primitives.
func (l *List) Add(operand any) *List {
	l.mustBeOpen()
	l.values = append(l.values, vm.ValueOf(operand))
	return l
}

// AddAll appends every argument of other, in order. other is not modified.
func (l *List) AddAll(other *List) *List {
	l.mustBeOpen()
	if other != nil {
		l.values = append(l.values, other.values...)
	}
	return l
}

func (l *List) mustBeOpen() {
	if l.sealed {
		panic("args: list modified after it was passed to an invocation")
	}
}

// Len returns the number of arguments. A nil list is empty.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.values)
}

// At returns argument i, or Undefined past the end like a missing parameter.
func (l *List) At(i int) vm.Value {
	if i < 0 || i >= l.Len() {
		return vm.Undefined
	}
	return l.values[i]
}

// Values returns a copy of the arguments in positional order.
func (l *List) Values() []vm.Value {
	if l == nil {
		return nil
	}
	out := make([]vm.Value, len(l.values))
	copy(out, l.values)
	return out
}

// Seal freezes the list and returns its positional values. Invocation
// operations call it; a nil list seals to no arguments.
func (l *List) Seal() []vm.Value {
	if l == nil {
		return nil
	}
	l.sealed = true
	return l.Values()
}

func (l *List) IsSealed() bool { return l != nil && l.sealed }
