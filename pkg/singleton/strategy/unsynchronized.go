package strategy

import (
	"context"
	"sync/atomic"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
)

// Unsynchronized is a check-then-build singleton with no lock and no
// re-check. Do not use it.
//
// Every goroutine that reads an empty slot before the first store finishes
// runs build and gets its own instance; the last store wins. Loads and
// stores are atomic, so the race detector stays quiet while the bug
// remains. Tests use it to show the failure the registry prevents.
type Unsynchronized[T any] struct {
	key           key.Key
	build         func(context.Context) (T, error)
	instance      atomic.Pointer[T]
	constructions atomic.Int64
}

var _ Provider[int] = (*Unsynchronized[int])(nil)

// NewUnsynchronized returns the broken provider.
func NewUnsynchronized[T any](k key.Key, build func(context.Context) (T, error)) *Unsynchronized[T] {
	return &Unsynchronized[T]{key: k, build: build}
}

// Key returns the key the provider claims.
func (u *Unsynchronized[T]) Key() key.Key { return u.key }

// Get returns the stored instance, or builds and stores one.
func (u *Unsynchronized[T]) Get(ctx context.Context) (T, error) {
	if p := u.instance.Load(); p != nil {
		return *p, nil
	}
	v, err := u.build(ctx)
	u.constructions.Add(1)
	if err != nil {
		var zero T
		return zero, err
	}
	u.instance.Store(&v)
	return v, nil
}

// Warm builds the instance if none is stored.
func (u *Unsynchronized[T]) Warm(ctx context.Context) error {
	_, err := u.Get(ctx)
	return err
}

// Constructions returns how many times build ran.
func (u *Unsynchronized[T]) Constructions() int64 {
	return u.constructions.Load()
}

// Reset forgets the stored instance and the construction count.
func (u *Unsynchronized[T]) Reset() {
	u.instance.Store(nil)
	u.constructions.Store(0)
}
