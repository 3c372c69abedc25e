// Package errors classifies registry failures and retries the transient ones.
//
// The registry surfaces every failure to its caller and never retries on its
// own. This package gives callers the policy:
//
//	v, err := errors.RetryGet(ctx, errors.DefaultRetry, r, key.Of[*Pool](), dial)
//
// Wait timeouts and ordinary builder failures are transient: the entry was
// rolled back, so a later call starts a fresh attempt. Reentrancy, type
// mismatches, builder panics and invalid arguments are permanent.
package errors

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// Category represents how an error should be handled.
type Category int

const (
	// CategoryTransient indicates retry will likely help.
	// Examples: wait timeouts, a database that was briefly unreachable.
	CategoryTransient Category = iota

	// CategoryPermanent indicates retry won't help.
	// Examples: reentrant construction, type mismatch, builder panic.
	CategoryPermanent
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// CategorizedError wraps an error with its category and context.
// Builders return one to tell retry helpers how to treat their failure.
type CategorizedError struct {
	// Err is the underlying error.
	Err error

	// Category indicates how this error should be handled.
	Category Category

	// Retries is the number of attempts that have been made.
	Retries int

	// Context describes what operation was being attempted.
	Context string
}

// Error implements the error interface.
func (e *CategorizedError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (category: %s, attempts: %d)",
			e.Context, e.Err, e.Category, e.Retries)
	}
	return fmt.Sprintf("%s (category: %s, attempts: %d)",
		e.Err, e.Category, e.Retries)
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

// Transient creates a transient error.
func Transient(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryTransient, context)
}

// Permanent creates a permanent error.
func Permanent(err error, context string) *CategorizedError {
	return NewCategorized(err, CategoryPermanent, context)
}

// Categorize determines how an error should be handled.
// Unknown errors are permanent.
func Categorize(err error) Category {
	cat, _ := classify(err)
	return cat
}

// classify reports the category of err and whether it was recognised.
func classify(err error) (Category, bool) {
	if err == nil {
		return CategoryPermanent, false
	}

	var catErr *CategorizedError
	if errors.As(err, &catErr) {
		return catErr.Category, true
	}

	// Usage errors never fix themselves
	switch {
	case errors.Is(err, registry.ErrReentrant),
		errors.Is(err, registry.ErrTypeMismatch),
		errors.Is(err, registry.ErrNilBuilder),
		errors.Is(err, registry.ErrNilContext),
		errors.Is(err, registry.ErrInvalidKey),
		errors.Is(err, registry.ErrAlreadyInitialized):
		return CategoryPermanent, true
	}

	var panicErr *registry.PanicError
	if errors.As(err, &panicErr) {
		return CategoryPermanent, true
	}

	// Checked before context errors: a WaitError unwraps to one.
	if errors.Is(err, registry.ErrWaitTimeout) {
		return CategoryTransient, true
	}

	var buildErr *registry.BuilderError
	if errors.As(err, &buildErr) {
		if cat, ok := classify(buildErr.Err); ok {
			return cat, true
		}
		return CategoryTransient, true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryPermanent, true
	}

	return CategoryPermanent, false
}

// IsRetryable reports whether the error should be retried.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
