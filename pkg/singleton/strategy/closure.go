package strategy

import (
	"context"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// Closure caches the result of a constructor, keyed by the constructor
// itself. Unlike a wrapper that replaces the constructor, it keeps the
// original reachable through Constructor.
//
// The key is the identity of the constructor value: wrapping the same
// function again shares the instance, while each closure gets its own.
// Closures are only shared when the same closure value is wrapped.
type Closure[T any] struct {
	*Lazy[T]
	ctor func(context.Context) (T, error)
}

var _ Provider[int] = (*Closure[int])(nil)

// Wrap returns a cached provider for ctor.
func Wrap[T any](r *registry.Registry, ctor func(context.Context) (T, error)) *Closure[T] {
	return &Closure[T]{
		Lazy: NewLazy(r, key.Func(ctor), ctor),
		ctor: ctor,
	}
}

// Constructor returns the wrapped constructor. Calling it bypasses the
// cache and builds a fresh instance.
func (c *Closure[T]) Constructor() func(context.Context) (T, error) {
	return c.ctor
}
