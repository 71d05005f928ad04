package molang

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of these
// through errors.Is, so callers can branch without type assertions.
var (
	// ErrParse indicates the source text is not a valid expression.
	ErrParse = errors.New("parse error")

	// ErrArity indicates a call site supplied the wrong number of arguments.
	ErrArity = errors.New("arity mismatch")

	// ErrUnknownBinding indicates a namespace, variable, or function lookup failed.
	ErrUnknownBinding = errors.New("unknown binding")

	// ErrArgumentRange indicates a function argument was outside its valid range.
	ErrArgumentRange = errors.New("argument out of range")

	// ErrParameter indicates an invalid parameter index or a missing call frame.
	ErrParameter = errors.New("invalid parameter")

	// ErrReadOnly indicates a write to an immutable namespace.
	ErrReadOnly = errors.New("namespace is read-only")

	// ErrNoThis indicates 'this' was resolved without a bound value.
	ErrNoThis = errors.New("'this' is not bound")
)

// ParseError reports a syntax error at a byte offset of the compiled source.
type ParseError struct {
	// Source is the text being compiled when the error occurred.
	Source string
	// Offset is the byte offset into Source.
	Offset int
	// Message describes what was expected.
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Source, e.Message)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ArityError reports a call with too few or too many arguments.
// Max is -1 for functions with an open-ended parameter list.
type ArityError struct {
	Function string
	Got      int
	Min      int
	Max      int
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("%s expects at least %d arguments, got %d", e.Function, e.Min, e.Got)
	case e.Min == e.Max:
		return fmt.Sprintf("%s expects %d arguments, got %d", e.Function, e.Min, e.Got)
	default:
		return fmt.Sprintf("%s expects %d to %d arguments, got %d", e.Function, e.Min, e.Max, e.Got)
	}
}

// Is reports whether target is ErrArity.
func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// UnknownBindingError reports a failed lookup at resolve time.
// Name is empty when the namespace itself is missing.
type UnknownBindingError struct {
	Namespace string
	Name      string
}

// Error implements the error interface.
func (e *UnknownBindingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unknown namespace %q", e.Namespace)
	}
	return fmt.Sprintf("unknown binding %s.%s", e.Namespace, e.Name)
}

// Is reports whether target is ErrUnknownBinding.
func (e *UnknownBindingError) Is(target error) bool {
	return target == ErrUnknownBinding
}

// ArgumentRangeError reports an argument a function cannot accept.
type ArgumentRangeError struct {
	Function string
	Message  string
}

// Error implements the error interface.
func (e *ArgumentRangeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}

// Is reports whether target is ErrArgumentRange.
func (e *ArgumentRangeError) Is(target error) bool {
	return target == ErrArgumentRange
}

// ParameterError reports access to a parameter that was never loaded.
// Index is -1 when no call frame is active.
type ParameterError struct {
	Index int
}

// Error implements the error interface.
func (e *ParameterError) Error() string {
	if e.Index < 0 {
		return "no active call frame"
	}
	return fmt.Sprintf("parameter %d not loaded", e.Index)
}

// Is reports whether target is ErrParameter.
func (e *ParameterError) Is(target error) bool {
	return target == ErrParameter
}

// ReadOnlyError reports an attempted write to an immutable namespace.
type ReadOnlyError struct {
	Namespace string
	Name      string
}

// Error implements the error interface.
func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("cannot assign %s.%s: namespace is read-only", e.Namespace, e.Name)
}

// Is reports whether target is ErrReadOnly.
func (e *ReadOnlyError) Is(target error) bool {
	return target == ErrReadOnly
}

// IsCompileError reports whether err came from compilation. Compile errors
// will fail again for the same source; anything else failed one evaluation.
func IsCompileError(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrArity)
}
