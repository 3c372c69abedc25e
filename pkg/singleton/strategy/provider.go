package strategy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
)

// Warmer is the type-erased part of a Provider.
type Warmer interface {
	// Key returns the registry key the provider resolves.
	Key() key.Key
	// Warm resolves the instance and discards it.
	Warm(ctx context.Context) error
}

// Provider produces the ready instance for one key.
type Provider[T any] interface {
	Warmer
	// Get returns the instance, constructing it if the variant is lazy.
	Get(ctx context.Context) (T, error)
}

// WarmUp resolves providers concurrently and returns the first failure.
// Remaining providers see a canceled context once one fails.
func WarmUp(ctx context.Context, providers ...Warmer) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, p := range providers {
		if p == nil {
			continue
		}
		g.Go(func() error {
			if err := p.Warm(ctx); err != nil {
				return fmt.Errorf("warm up %s: %w", p.Key(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
