package vm

import (
	"strconv"
	"unsafe"
)

// MaxArrayLength is 2^32-1, the largest length an array can report.
const MaxArrayLength = 4294967295

// maxDenseLength bounds length writes; elements are stored densely.
const maxDenseLength = 1 << 24

// typeHole marks a missing element in a sparse array. It never escapes Get.
const typeHole ValueType = 255

var hole = Value{typ: typeHole}

// ArrayObject stores indexed elements densely; named properties live in the
// embedded PlainObject. `length` is virtual and non-configurable.
type ArrayObject struct {
	PlainObject
	elements []Value
	frozen   bool
}

// NewArray creates an array with the given prototype and elements. The
// elements slice is copied.
func NewArray(proto Value, elements ...Value) Value {
	arr := &ArrayObject{PlainObject: newPlainObject(proto)}
	arr.SetElements(elements)
	return Value{typ: TypeArray, obj: unsafe.Pointer(arr)}
}

// Length returns the length of the array
func (a *ArrayObject) Length() int {
	return len(a.elements)
}

// SetLength sets the length of the array, truncating or padding with holes.
func (a *ArrayObject) SetLength(newLength int) {
	if newLength < 0 {
		newLength = 0
	}
	if newLength < len(a.elements) {
		a.elements = a.elements[:newLength]
		return
	}
	for len(a.elements) < newLength {
		a.elements = append(a.elements, hole)
	}
}

// Get returns the element at the given index, or Undefined if out of bounds
func (a *ArrayObject) Get(index int) Value {
	if index < 0 || index >= len(a.elements) {
		return Undefined
	}
	elem := a.elements[index]
	// Holes read as undefined
	if elem.typ == typeHole {
		return Undefined
	}
	return elem
}

// Set sets the element at the given index, expanding the array if necessary
func (a *ArrayObject) Set(index int, value Value) {
	if index < 0 {
		return
	}
	if index >= len(a.elements) {
		a.SetLength(index)
		a.elements = append(a.elements, value)
		return
	}
	a.elements[index] = value
}

// SetElements replaces all elements at once and updates length
func (a *ArrayObject) SetElements(elements []Value) {
	a.elements = make([]Value, len(elements))
	copy(a.elements, elements)
}

// Elements returns a copy of the elements, holes read as Undefined.
func (a *ArrayObject) Elements() []Value {
	out := make([]Value, len(a.elements))
	for i := range a.elements {
		out[i] = a.Get(i)
	}
	return out
}

// Append adds a value to the end of the array
func (a *ArrayObject) Append(value Value) {
	a.elements = append(a.elements, value)
}

// HasIndex returns true if the index has an actual value (not a hole in sparse array)
func (a *ArrayObject) HasIndex(index int) bool {
	if index < 0 || index >= len(a.elements) {
		return false
	}
	return a.elements[index].typ != typeHole
}

// DeleteIndex punches a hole at index. Length is unchanged.
func (a *ArrayObject) DeleteIndex(index int) bool {
	if a.frozen {
		return !a.HasIndex(index)
	}
	if a.HasIndex(index) {
		a.elements[index] = hole
	}
	return true
}

func (a *ArrayObject) IsFrozen() bool { return a.frozen }

// Freeze freezes both elements and named properties.
func (a *ArrayObject) Freeze() {
	a.frozen = true
	a.PlainObject.Freeze()
}

func indexKey(i int) string { return strconv.Itoa(i) }
