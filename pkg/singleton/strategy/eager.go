package strategy

import (
	"context"
	"fmt"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// Eager holds an instance built when the provider was created.
// It is Ready before first use, so there is no first-use race.
type Eager[T any] struct {
	key   key.Key
	value T
}

var _ Provider[int] = (*Eager[int])(nil)

// NewEager builds the instance now and preloads it into r under k.
// Fails if build fails or k already has an instance in r.
func NewEager[T any](ctx context.Context, r *registry.Registry, k key.Key, build func(context.Context) (T, error)) (*Eager[T], error) {
	if build == nil {
		return nil, registry.ErrNilBuilder
	}
	if k.IsZero() {
		return nil, registry.ErrInvalidKey
	}
	v, err := build(ctx)
	if err != nil {
		return nil, &registry.BuilderError{Key: k, Attempt: 1, Err: err}
	}
	if err := r.Preload(k, v); err != nil {
		return nil, fmt.Errorf("preload %s: %w", k, err)
	}
	return &Eager[T]{key: k, value: v}, nil
}

// MustEager is like NewEager but panics on failure.
// It simplifies safe initialization of package-level variables.
func MustEager[T any](r *registry.Registry, k key.Key, build func(context.Context) (T, error)) *Eager[T] {
	e, err := NewEager(context.Background(), r, k, build)
	if err != nil {
		panic(fmt.Sprintf("strategy: eager %s: %v", k, err))
	}
	return e
}

// Key returns the registry key.
func (e *Eager[T]) Key() key.Key { return e.key }

// Get returns the instance. It never blocks and never fails.
func (e *Eager[T]) Get(context.Context) (T, error) {
	return e.value, nil
}

// Value returns the instance.
func (e *Eager[T]) Value() T { return e.value }

// Warm is a no-op; an eager instance is always ready.
func (e *Eager[T]) Warm(context.Context) error { return nil }
