package errors

import (
	stderrors "errors"
	"fmt"
	"io"
)

// Kind names a class of runtime failure.
type Kind string

const (
	KindNotCallable         Kind = "NotCallable"
	KindPropertyUnwritable  Kind = "PropertyUnwritable"
	KindPropertyUndeletable Kind = "PropertyUndeletable"
	KindUnregisteredWrapper Kind = "UnregisteredWrapper"
	KindTypeError           Kind = "TypeError"
	KindThrown              Kind = "Thrown"
)

// BindError is the interface implemented by all jsbind errors.
type BindError interface {
	error // Embed the standard error interface
	Kind() Kind
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// NotCallableError is raised when invocation or construction is attempted
// on a value that is not a function. The check happens at call time.
type NotCallableError struct {
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *NotCallableError) Error() string   { return fmt.Sprintf("NotCallable: %s", e.Msg) }
func (e *NotCallableError) Kind() Kind      { return KindNotCallable }
func (e *NotCallableError) Message() string { return e.Msg }
func (e *NotCallableError) Unwrap() error   { return e.Cause }
func (e *NotCallableError) CausedBy(cause error) *NotCallableError {
	e.Cause = cause
	return e
}

// PropertyUnwritableError is raised by a write to a read-only property, to a
// property of a primitive, or to a new property of a non-extensible object.
type PropertyUnwritableError struct {
	Property string
	Msg      string
	Cause    error
}

func (e *PropertyUnwritableError) Error() string {
	return fmt.Sprintf("PropertyUnwritable: '%s': %s", e.Property, e.Msg)
}
func (e *PropertyUnwritableError) Kind() Kind      { return KindPropertyUnwritable }
func (e *PropertyUnwritableError) Message() string { return e.Msg }
func (e *PropertyUnwritableError) Unwrap() error   { return e.Cause }
func (e *PropertyUnwritableError) CausedBy(cause error) *PropertyUnwritableError {
	e.Cause = cause
	return e
}

// PropertyUndeletableError describes a non-configurable property. Delete
// operations report this through their bool result; the error exists for
// callers that want to surface the refusal themselves.
type PropertyUndeletableError struct {
	Property string
	Cause    error
}

func (e *PropertyUndeletableError) Error() string {
	return fmt.Sprintf("PropertyUndeletable: '%s' is not configurable", e.Property)
}
func (e *PropertyUndeletableError) Kind() Kind { return KindPropertyUndeletable }
func (e *PropertyUndeletableError) Message() string {
	return fmt.Sprintf("'%s' is not configurable", e.Property)
}
func (e *PropertyUndeletableError) Unwrap() error { return e.Cause }

// UnregisteredWrapperError is only produced by strict registry lookups.
// Result wrapping itself degrades to the general object handle instead.
type UnregisteredWrapperError struct {
	Path string
}

func (e *UnregisteredWrapperError) Error() string {
	return fmt.Sprintf("UnregisteredWrapper: no result wrapper declared for '%s'", e.Path)
}
func (e *UnregisteredWrapperError) Kind() Kind { return KindUnregisteredWrapper }
func (e *UnregisteredWrapperError) Message() string {
	return fmt.Sprintf("no result wrapper declared for '%s'", e.Path)
}
func (e *UnregisteredWrapperError) Unwrap() error { return nil }

// TypeError covers the remaining runtime type violations: writes through
// null/undefined, non array-like apply arguments, failed primitive
// conversion.
type TypeError struct {
	Msg   string
	Cause error
}

func (e *TypeError) Error() string   { return fmt.Sprintf("TypeError: %s", e.Msg) }
func (e *TypeError) Kind() Kind      { return KindTypeError }
func (e *TypeError) Message() string { return e.Msg }
func (e *TypeError) Unwrap() error   { return e.Cause }
func (e *TypeError) CausedBy(cause error) *TypeError {
	e.Cause = cause
	return e
}

// --- Helpers ---

func NotCallable(format string, args ...any) *NotCallableError {
	return &NotCallableError{Msg: fmt.Sprintf(format, args...)}
}

func Unwritable(property string, format string, args ...any) *PropertyUnwritableError {
	return &PropertyUnwritableError{Property: property, Msg: fmt.Sprintf(format, args...)}
}

func Undeletable(property string) *PropertyUndeletableError {
	return &PropertyUndeletableError{Property: property}
}

func NewTypeError(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first BindError in err's chain. Errors that
// did not originate here (for example ones returned by a native function)
// are reported as KindThrown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be BindError
	if stderrors.As(err, &be) {
		return be.Kind()
	}
	return KindThrown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// --- Error Reporting ---

// DisplayErrors writes a list of errors to w, one per line, prefixed by kind.
func DisplayErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		var be BindError
		if stderrors.As(err, &be) {
			fmt.Fprintf(w, "%s Error: %s\n", be.Kind(), be.Message())
			continue
		}
		fmt.Fprintf(w, "Uncaught: %s\n", err.Error())
	}
}
