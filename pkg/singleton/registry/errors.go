package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
)

// Sentinel errors for invalid calls.
var (
	// ErrNilContext indicates GetOrCreate was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrInvalidKey indicates a zero key.
	ErrInvalidKey = errors.New("invalid singleton key")

	// ErrNilBuilder indicates a nil builder.
	ErrNilBuilder = errors.New("builder cannot be nil")

	// ErrAlreadyInitialized indicates Preload on an entry that is not Uninitialized.
	ErrAlreadyInitialized = errors.New("singleton already initialized")
)

// Sentinel errors for construction. Match them with errors.Is.
var (
	// ErrBuilderFailed indicates the builder returned an error or panicked.
	ErrBuilderFailed = errors.New("singleton builder failed")

	// ErrReentrant indicates a builder asked for a key it is constructing.
	ErrReentrant = errors.New("reentrant singleton construction")

	// ErrWaitTimeout indicates a caller stopped waiting on another caller's construction.
	ErrWaitTimeout = errors.New("timed out waiting for singleton construction")

	// ErrTypeMismatch indicates the cached instance is not of the requested type.
	ErrTypeMismatch = errors.New("singleton type mismatch")
)

// BuilderError wraps a builder failure with key context.
// The entry has been rolled back to Uninitialized.
type BuilderError struct {
	// Key is the key being constructed.
	Key key.Key
	// Attempt is the 1-based builder invocation number for the key.
	Attempt int
	// Err is the builder's error, or a *PanicError.
	Err error
}

// Error implements the error interface.
func (e *BuilderError) Error() string {
	return fmt.Sprintf("build %s (attempt %d): %v", e.Key, e.Attempt, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *BuilderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrBuilderFailed.
func (e *BuilderError) Is(target error) bool {
	return target == ErrBuilderFailed
}

// PanicError captures a panic raised by a builder.
type PanicError struct {
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("builder panicked: %v", e.Value)
}

// ReentrantError reports a builder re-entering a key it is constructing.
type ReentrantError struct {
	// Key is the key requested again.
	Key key.Key
	// Chain lists the keys under construction, outermost first.
	Chain []key.Key
}

// Error implements the error interface.
func (e *ReentrantError) Error() string {
	names := make([]string, len(e.Chain))
	for i, k := range e.Chain {
		names[i] = k.String()
	}
	return fmt.Sprintf("reentrant construction of %s (chain: %s)", e.Key, strings.Join(names, " -> "))
}

// Unwrap returns ErrReentrant for errors.Is support.
func (e *ReentrantError) Unwrap() error {
	return ErrReentrant
}

// WaitError reports a caller that stopped waiting on an in-flight construction.
// Retrying is safe.
type WaitError struct {
	// Key is the key being waited on.
	Key key.Key
	// Waited is how long the caller blocked.
	Waited time.Duration
	// Cause is context.DeadlineExceeded or context.Canceled.
	Cause error
}

// Error implements the error interface.
func (e *WaitError) Error() string {
	return fmt.Sprintf("wait for %s abandoned after %s: %v", e.Key, e.Waited, e.Cause)
}

// Unwrap returns the cause for errors.Is/As support.
func (e *WaitError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrWaitTimeout.
func (e *WaitError) Is(target error) bool {
	return target == ErrWaitTimeout
}

// TypeMismatchError reports a cached instance that is not assignable to the requested type.
type TypeMismatchError struct {
	Key  key.Key
	Want reflect.Type
	Got  reflect.Type
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("singleton %s holds %v, not %v", e.Key, e.Got, e.Want)
}

// Unwrap returns ErrTypeMismatch for errors.Is support.
func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}
