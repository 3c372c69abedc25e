package strategy

import (
	"context"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// Lazy builds its instance on first Get. Concurrent first calls share one
// construction; a failed construction is retried by the next Get.
type Lazy[T any] struct {
	reg   *registry.Registry
	key   key.Key
	build func(context.Context) (T, error)
}

var _ Provider[int] = (*Lazy[int])(nil)

// NewLazy returns a provider resolving k in r with build.
func NewLazy[T any](r *registry.Registry, k key.Key, build func(context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{reg: r, key: k, build: build}
}

// LazyOf keys the provider by the exact type T.
func LazyOf[T any](r *registry.Registry, build func(context.Context) (T, error)) *Lazy[T] {
	return NewLazy(r, key.Of[T](), build)
}

// LazyDeclared keys the provider by the identity T declares through
// key.Declarer, so types sharing a declared key share one instance.
func LazyDeclared[T any](r *registry.Registry, build func(context.Context) (T, error)) *Lazy[T] {
	return NewLazy(r, key.Declared[T](), build)
}

// Key returns the registry key.
func (l *Lazy[T]) Key() key.Key { return l.key }

// Get returns the instance, constructing it on first use.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	return registry.Get(ctx, l.reg, l.key, l.build)
}

// Warm constructs the instance if needed.
func (l *Lazy[T]) Warm(ctx context.Context) error {
	_, err := l.Get(ctx)
	return err
}
