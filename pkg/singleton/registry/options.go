package registry

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/randalmurphal/singleton/pkg/singleton/config"
	"github.com/randalmurphal/singleton/pkg/singleton/journal"
	"github.com/randalmurphal/singleton/pkg/singleton/observability"
)

// registryConfig holds registry configuration.
type registryConfig struct {
	logger      *slog.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	journal     journal.Store
	waitTimeout time.Duration
}

// defaultRegistryConfig returns the default configuration: no logging,
// no-op metrics and tracing, no journal, unbounded waits.
func defaultRegistryConfig() registryConfig {
	return registryConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithLogger sets the structured logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *registryConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *registryConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans around builder invocations.
func WithTracing(enabled bool) Option {
	return func(c *registryConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *registryConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithJournal records every builder invocation in store.
// Journal failures are logged and never fail a call.
func WithJournal(store journal.Store) Option {
	return func(c *registryConfig) {
		c.journal = store
	}
}

// WithWaitTimeout bounds how long a caller waits on another caller's
// construction, on top of its context deadline. It never limits the builder.
// Zero or negative means no bound.
//
// Example:
//
//	r := registry.New(registry.WithWaitTimeout(2 * time.Second))
func WithWaitTimeout(d time.Duration) Option {
	return func(c *registryConfig) {
		if d > 0 {
			c.waitTimeout = d
		} else {
			c.waitTimeout = 0
		}
	}
}

// OptionsFromSettings converts loaded settings into options. It opens the
// configured journal; the caller owns the returned store and should close it
// on shutdown. The store is nil when no journal is configured.
func OptionsFromSettings(s config.Settings) ([]Option, journal.Store, error) {
	opts := []Option{
		WithWaitTimeout(s.WaitTimeout),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
		WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: s.LogLevel}))),
	}
	if s.Journal.Driver == "" {
		return opts, nil, nil
	}
	store, err := journal.Open(s.Journal.Driver, s.Journal.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return append(opts, WithJournal(store)), store, nil
}
