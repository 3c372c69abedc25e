package benchmarks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/randalmurphal/singleton/pkg/singleton/journal"
	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/registry"
)

// BenchmarkMemoryStore_Append measures in-memory journal appends.
func BenchmarkMemoryStore_Append(b *testing.B) {
	store := journal.NewMemoryStore()
	rec := journal.NewRecord("type:*benchmarks.Pool", 1, time.Now(), time.Millisecond, nil, false)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Append(rec)
	}
}

// BenchmarkSQLiteStore_Append measures SQLite journal appends.
func BenchmarkSQLiteStore_Append(b *testing.B) {
	store := createSQLiteStore(b)
	started := time.Now()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := journal.NewRecord("key-"+strconv.Itoa(i%100), i, started, time.Millisecond, nil, false)
		_ = store.Append(rec)
	}
}

// BenchmarkSQLiteStore_List measures listing one key's history.
func BenchmarkSQLiteStore_List(b *testing.B) {
	store := createSQLiteStore(b)
	started := time.Now()
	for i := 0; i < 100; i++ {
		_ = store.Append(journal.NewRecord("flaky", i+1, started, time.Millisecond, errors.New("refused"), false))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.List("flaky")
	}
}

// BenchmarkGetOrCreate_FirstUseJournaled measures construction with a SQLite journal.
func BenchmarkGetOrCreate_FirstUseJournaled(b *testing.B) {
	r := registry.New(registry.WithJournal(createSQLiteStore(b)))
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

func createSQLiteStore(b *testing.B) *journal.SQLiteStore {
	b.Helper()
	path := filepath.Join(b.TempDir(), "journal.db")

	store, err := journal.NewSQLiteStore(path)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		store.Close()
		os.Remove(path)
	})
	return store
}
