package benchmarks

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
	"github.com/randalmurphal/singleton/pkg/singleton/strategy"
)

// Pool stands in for an expensive shared resource.
type Pool struct {
	Name  string
	Conns []int
}

func newPool(context.Context) (*Pool, error) {
	return &Pool{Name: "users_db", Conns: make([]int, 16)}, nil
}

func buildAny(ctx context.Context) (any, error) {
	return newPool(ctx)
}

// BenchmarkGetOrCreate_Hit measures the read-locked fast path.
func BenchmarkGetOrCreate_Hit(b *testing.B) {
	r := registry.New()
	k := key.Of[*Pool]()
	ctx := context.Background()
	_, _ = r.GetOrCreate(ctx, k, buildAny)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.GetOrCreate(ctx, k, buildAny)
	}
}

// BenchmarkGetOrCreate_HitParallel measures the fast path under contention.
func BenchmarkGetOrCreate_HitParallel(b *testing.B) {
	r := registry.New()
	k := key.Of[*Pool]()
	ctx := context.Background()
	_, _ = r.GetOrCreate(ctx, k, buildAny)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = r.GetOrCreate(ctx, k, buildAny)
		}
	})
}

// BenchmarkGet_Typed measures the typed wrapper on a hit.
func BenchmarkGet_Typed(b *testing.B) {
	r := registry.New()
	k := key.Of[*Pool]()
	ctx := context.Background()
	_, _ = registry.Get(ctx, r, k, newPool)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = registry.Get(ctx, r, k, newPool)
	}
}

// BenchmarkGetOrCreate_FirstUse measures construction of a fresh key.
func BenchmarkGetOrCreate_FirstUse(b *testing.B) {
	r := registry.New()
	ctx := context.Background()
	keys := make([]key.Key, b.N)
	for i := range keys {
		keys[i] = key.Tag("pool-" + strconv.Itoa(i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = r.GetOrCreate(ctx, keys[i], buildAny)
	}
}

// BenchmarkGetOrCreate_ContendedFirstUse measures many goroutines racing
// for the same key, reset every 1024 calls.
func BenchmarkGetOrCreate_ContendedFirstUse(b *testing.B) {
	r := registry.New()
	k := key.Of[*Pool]()
	ctx := context.Background()
	var calls atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if calls.Add(1)%1024 == 0 {
				r.Reset(k)
			}
			_, _ = r.GetOrCreate(ctx, k, buildAny)
		}
	})
}

// BenchmarkGetOrCreate_CrossKey measures hits spread across 64 keys.
func BenchmarkGetOrCreate_CrossKey(b *testing.B) {
	r := registry.New()
	ctx := context.Background()
	keys := make([]key.Key, 64)
	for i := range keys {
		keys[i] = key.Tag("pool-" + strconv.Itoa(i))
		_, _ = r.GetOrCreate(ctx, keys[i], buildAny)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = r.GetOrCreate(ctx, keys[i%len(keys)], buildAny)
			i++
		}
	})
}

// BenchmarkEager_Get measures the eager provider, which skips the registry.
func BenchmarkEager_Get(b *testing.B) {
	p := strategy.MustEager(registry.New(), key.Of[*Pool](), newPool)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Get(ctx)
	}
}

// BenchmarkLazy_Get measures a lazy provider on a hit.
func BenchmarkLazy_Get(b *testing.B) {
	p := strategy.LazyOf(registry.New(), newPool)
	ctx := context.Background()
	_, _ = p.Get(ctx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Get(ctx)
	}
}

// BenchmarkKey_Of measures type-identity derivation.
func BenchmarkKey_Of(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = key.Of[*Pool]()
	}
}

// BenchmarkKey_Declared measures declared-identity derivation.
func BenchmarkKey_Declared(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = key.Declared[*Pool]()
	}
}
