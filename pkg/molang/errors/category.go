// Package errors categorizes molang failures and applies fallback policies.
//
// Expression failures fall into three groups:
//   - Permanent: the source will never compile (syntax, arity)
//   - Transient: one evaluation failed against the current runtime state
//   - Storage: the script store could not be read or written
//
// Hosts usually substitute a fallback value for transient failures, so a
// single bad frame never interrupts an animation, while permanent failures
// surface at load time.
package errors

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/molang/pkg/molang"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryPermanent indicates the same input will fail again.
	// Examples: parse errors, arity mismatches.
	CategoryPermanent Category = iota

	// CategoryTransient indicates a later evaluation may succeed.
	// Examples: unbound query, unloaded parameter, random range.
	CategoryTransient

	// CategoryStorage indicates the script store failed.
	// Examples: database locked, closed store.
	CategoryStorage
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPermanent:
		return "permanent"
	case CategoryTransient:
		return "transient"
	case CategoryStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Attempts is the number of attempts that have been made.
	Attempts int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Attempts)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Attempts)
}

// Unwrap returns the underlying error.
func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// NewCategorized creates a new categorized error.
func NewCategorized(err error, category Category, context string) *CategorizedError {
	return &CategorizedError{
		Err:      err,
		Category: category,
		Context:  context,
	}
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Storage creates a storage error.
func Storage(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryStorage, context)
}

// Categorize determines how an error should be handled.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent // shouldn't happen, fail safe
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category
	}

	if molang.IsCompileError(err) {
		return CategoryPermanent
	}

	switch {
	case errors.Is(err, molang.ErrUnknownBinding),
		errors.Is(err, molang.ErrArgumentRange),
		errors.Is(err, molang.ErrParameter),
		errors.Is(err, molang.ErrReadOnly),
		errors.Is(err, molang.ErrNoThis):
		return CategoryTransient
	}

	// Unknown errors, cancellation included, are permanent (fail safe)
	return CategoryPermanent
}

// IsRetryable reports whether a fresh evaluation might succeed.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}

// IsStorage reports whether err came from the script store.
func IsStorage(err error) bool {
	return Categorize(err) == CategoryStorage
}
