// Package strategy provides the ways a singleton can be produced on top of a
// registry. Every variant implements Provider.
//
//   - Eager builds at definition time and preloads the registry.
//   - Lazy builds on first Get through the registry's double-checked path.
//   - Closure is Lazy keyed by the constructor function itself.
//   - Unsynchronized checks and stores without a lock. It is broken on
//     purpose and exists so tests can show the race the others avoid.
//
// Package-level providers are the usual shape:
//
//	var pool = strategy.LazyOf(registry.New(), func(ctx context.Context) (*Pool, error) {
//	    return NewPool(ctx, "users_db")
//	})
//
//	func handler(ctx context.Context) error {
//	    p, err := pool.Get(ctx)
//	    ...
//	}
//
// WarmUp resolves several providers concurrently, typically at startup, so
// the first request does not pay for construction.
package strategy
