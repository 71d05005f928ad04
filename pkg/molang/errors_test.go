package molang

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ParseError{Source: "1 +", Offset: 3, Message: "unexpected end of expression"}, `parse error at offset 3 in "1 +": unexpected end of expression`},
		{&ArityError{Function: "math.clamp", Got: 2, Min: 3, Max: 3}, "math.clamp expects 3 arguments, got 2"},
		{&ArityError{Function: "math.min", Got: 1, Min: 2, Max: -1}, "math.min expects at least 2 arguments, got 1"},
		{&ArityError{Function: "f", Got: 0, Min: 1, Max: 2}, "f expects 1 to 2 arguments, got 0"},
		{&UnknownBindingError{Namespace: "query", Name: "x"}, "unknown binding query.x"},
		{&UnknownBindingError{Namespace: "entity"}, `unknown namespace "entity"`},
		{&ArgumentRangeError{Function: "math.random", Message: "min is greater than max"}, "math.random: min is greater than max"},
		{&ParameterError{Index: 2}, "parameter 2 not loaded"},
		{&ParameterError{Index: -1}, "no active call frame"},
		{&ReadOnlyError{Namespace: "query", Name: "x"}, "cannot assign query.x: namespace is read-only"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		compile  bool
	}{
		{&ParseError{}, ErrParse, true},
		{&ArityError{}, ErrArity, true},
		{&UnknownBindingError{}, ErrUnknownBinding, false},
		{&ArgumentRangeError{}, ErrArgumentRange, false},
		{&ParameterError{}, ErrParameter, false},
		{&ReadOnlyError{}, ErrReadOnly, false},
		{ErrNoThis, ErrNoThis, false},
	}

	for _, tt := range tests {
		t.Run(tt.sentinel.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("script bob: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.sentinel)
			}
			if got := IsCompileError(wrapped); got != tt.compile {
				t.Errorf("IsCompileError(%v) = %v, want %v", wrapped, got, tt.compile)
			}
		})
	}
}
