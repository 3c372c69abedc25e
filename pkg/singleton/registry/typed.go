package registry

import (
	"context"
	"reflect"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
)

// Get is the typed form of GetOrCreate.
//
// Example:
//
//	cfg, err := registry.Get(ctx, r, key.Of[*Config](), loadConfig)
func Get[T any](ctx context.Context, r *Registry, k key.Key, build func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if build == nil {
		return zero, ErrNilBuilder
	}
	v, err := r.GetOrCreate(ctx, k, func(ctx context.Context) (any, error) {
		return build(ctx)
	})
	if err != nil {
		return zero, err
	}
	return As[T](k, v)
}

// As converts a stored instance to T, or returns a *TypeMismatchError.
// A nil instance converts to the zero T.
func As[T any](k key.Key, v any) (T, error) {
	if v == nil {
		var zero T
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, &TypeMismatchError{Key: k, Want: reflect.TypeFor[T](), Got: reflect.TypeOf(v)}
	}
	return t, nil
}
