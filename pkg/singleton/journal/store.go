// Package journal records every singleton construction attempt.
//
// A journal is diagnostic history: one Record per builder invocation, in the
// order the invocations finished. The registry never reads it back, so nothing
// is restored from a journal after a restart.
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of one builder invocation.
type Outcome string

// Outcome values.
const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomePanicked Outcome = "panicked"
)

// Record describes one builder invocation.
type Record struct {
	ID       string
	Key      string
	Attempt  int
	Outcome  Outcome
	Started  time.Time
	Duration time.Duration
	Error    string
}

// NewRecord builds a record with a fresh ID. A nil err yields OutcomeOK.
func NewRecord(key string, attempt int, started time.Time, duration time.Duration, err error, panicked bool) Record {
	rec := Record{
		ID:       uuid.NewString(),
		Key:      key,
		Attempt:  attempt,
		Outcome:  OutcomeOK,
		Started:  started.UTC(),
		Duration: duration,
	}
	switch {
	case panicked:
		rec.Outcome = OutcomePanicked
	case err != nil:
		rec.Outcome = OutcomeFailed
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// Store persists construction records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a record at the end of the journal.
	Append(rec Record) error

	// List returns all records for a key in append order.
	// Returns an empty slice (not error) if the key has no records.
	List(key string) ([]Record, error)

	// Count returns the number of records for a key with the given outcome.
	// An empty outcome counts every record for the key.
	Count(key string, outcome Outcome) (int, error)

	// DeleteKey removes all records for a key.
	DeleteKey(key string) error

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("journal store closed")

// Open returns a store for the named driver: "memory" or "sqlite".
// The dsn is ignored by the memory driver.
func Open(driver, dsn string) (Store, error) {
	switch driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		if dsn == "" {
			dsn = ":memory:"
		}
		return NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
}
