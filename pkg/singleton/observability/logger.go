// Package observability provides production-grade observability features
// for the singleton registry: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// KeyAttr is the attribute name used for singleton keys in logs, metrics and spans.
const KeyAttr = "singleton.key"

// EnrichLogger adds singleton context to a logger.
// Returns a new logger with the key and construction attempt fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "type:*db.Pool", 2)
//	enriched.Info("dialing") // includes singleton.key, attempt
func EnrichLogger(logger *slog.Logger, key string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String(KeyAttr, key),
		slog.Int("attempt", attempt),
	)
}

// LogConstructStart logs the start of a builder invocation.
func LogConstructStart(logger *slog.Logger, key string, attempt int) {
	if logger == nil {
		return
	}
	logger.Debug("singleton construction starting",
		slog.String(KeyAttr, key),
		slog.Int("attempt", attempt),
	)
}

// LogConstructComplete logs a successful construction.
func LogConstructComplete(logger *slog.Logger, key string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("singleton constructed",
		slog.String(KeyAttr, key),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogConstructError logs a failed construction. The entry has been rolled back.
func LogConstructError(logger *slog.Logger, key string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("singleton construction failed",
		slog.String(KeyAttr, key),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogWaitTimeout logs a waiter giving up on another caller's construction.
func LogWaitTimeout(logger *slog.Logger, key string, waited time.Duration, err error) {
	if logger == nil {
		return
	}
	logger.Warn("singleton wait abandoned",
		slog.String(KeyAttr, key),
		slog.Duration("waited", waited),
		slog.String("error", err.Error()),
	)
}

// LogReentrant logs a builder re-entering its own key.
func LogReentrant(logger *slog.Logger, key string, chain []string) {
	if logger == nil {
		return
	}
	logger.Error("singleton reentrant construction",
		slog.String(KeyAttr, key),
		slog.Any("chain", chain),
	)
}

// LogReset logs a test reset of registry entries. A count of -1 means all entries.
func LogReset(logger *slog.Logger, count int) {
	if logger == nil {
		return
	}
	logger.Debug("singleton registry reset",
		slog.Int("entries", count),
	)
}

// LogJournalError logs a journal write failure (non-fatal).
func LogJournalError(logger *slog.Logger, key string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal append failed",
		slog.String(KeyAttr, key),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
