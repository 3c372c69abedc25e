package singleton

import (
	"context"
	"sync"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

var (
	defaultRegistry *registry.Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, creating it on first call.
func Default() *registry.Registry {
	defaultOnce.Do(func() {
		defaultRegistry = registry.New()
	})
	return defaultRegistry
}

// InitDefault installs r as the process-wide registry. Only the first call
// to InitDefault or Default has any effect; it reports whether r was installed.
func InitDefault(r *registry.Registry) bool {
	installed := false
	defaultOnce.Do(func() {
		defaultRegistry = r
		installed = true
	})
	return installed
}

// Get returns the process-wide instance of T, building it on first use.
func Get[T any](ctx context.Context, build func(context.Context) (T, error)) (T, error) {
	return registry.Get(ctx, Default(), key.Of[T](), build)
}

// GetKey returns the process-wide instance stored under k.
func GetKey[T any](ctx context.Context, k key.Key, build func(context.Context) (T, error)) (T, error) {
	return registry.Get(ctx, Default(), k, build)
}

// ResetForTesting clears the named entries of the process-wide registry, or
// all of them when none are named, so tests can exercise first construction
// again.
func ResetForTesting(keys ...key.Key) {
	Default().Reset(keys...)
}
