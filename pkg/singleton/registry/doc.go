// Package registry holds at most one instance per key and builds it lazily,
// exactly once, no matter how many goroutines ask for it at the same time.
//
// # Basic Usage
//
//	r := registry.New()
//
//	pool, err := registry.Get(ctx, r, key.Of[*Pool](), func(ctx context.Context) (*Pool, error) {
//	    return NewPool(ctx, "users_db")
//	})
//
// The first call runs the builder; every later call, concurrent or not,
// returns the same *Pool without running it again.
//
// # Entry Lifecycle
//
// Each key moves through three states:
//
//	Uninitialized --GetOrCreate--> Constructing --builder ok--> Ready
//	Constructing --builder fails--> Uninitialized
//
// Ready is terminal. A failed builder rolls the entry back so a later call
// can try again; the failure is returned to the caller that ran the builder
// and to every caller that was waiting on it.
//
// # Concurrency
//
// Ready entries are served under a read lock. A miss takes the write lock,
// re-checks the entry and either claims construction or joins the attempt
// already in flight. Builders run outside the lock, so slow construction of
// one key never blocks another.
//
// Waiters block on the in-flight attempt, not by polling. A waiter gives up
// when its context ends or when the WithWaitTimeout bound elapses, and gets a
// *WaitError. The construction it was waiting on keeps running.
//
// # Reentrancy
//
// The context passed to a builder records the keys under construction. A
// builder that asks the same registry for a key it is itself building, directly
// or through other builders, gets a *ReentrantError instead of a deadlock.
// Builders must pass their context along for this to work. A cycle split
// across goroutines, where each builds one key and waits for the other's, is
// not detected; bound waits with WithWaitTimeout or a context deadline.
//
// # Testing
//
// Reset clears entries so tests can exercise first construction repeatedly.
package registry
