package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordConstruction records a builder invocation with its duration and error status.
	RecordConstruction(ctx context.Context, key string, duration time.Duration, err error)

	// RecordHit records a call answered from a Ready entry.
	RecordHit(ctx context.Context, key string)

	// RecordWait records a caller that blocked on another caller's construction.
	RecordWait(ctx context.Context, key string, timedOut bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	constructions metric.Int64Counter
	latency       metric.Float64Histogram
	errors        metric.Int64Counter
	hits          metric.Int64Counter
	waits         metric.Int64Counter
	waitTimeouts  metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("singleton")

	constructions, err := meter.Int64Counter("singleton.constructions",
		metric.WithDescription("Number of builder invocations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("singleton.construction.latency_ms",
		metric.WithDescription("Builder latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("singleton.construction.errors",
		metric.WithDescription("Number of failed builder invocations"),
	)
	if err != nil {
		return nil, err
	}

	hits, err := meter.Int64Counter("singleton.hits",
		metric.WithDescription("Number of calls served from a ready entry"),
	)
	if err != nil {
		return nil, err
	}

	waits, err := meter.Int64Counter("singleton.waits",
		metric.WithDescription("Number of calls that waited on an in-flight construction"),
	)
	if err != nil {
		return nil, err
	}

	waitTimeouts, err := meter.Int64Counter("singleton.wait_timeouts",
		metric.WithDescription("Number of waits abandoned on deadline or cancellation"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		constructions: constructions,
		latency:       latency,
		errors:        errs,
		hits:          hits,
		waits:         waits,
		waitTimeouts:  waitTimeouts,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordConstruction records a builder invocation.
func (m *otelMetrics) RecordConstruction(ctx context.Context, key string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String(KeyAttr, key))

	m.constructions.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordHit records a ready-entry hit.
func (m *otelMetrics) RecordHit(ctx context.Context, key string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String(KeyAttr, key)))
}

// RecordWait records a wait on an in-flight construction.
func (m *otelMetrics) RecordWait(ctx context.Context, key string, timedOut bool) {
	attrs := metric.WithAttributes(attribute.String(KeyAttr, key))
	m.waits.Add(ctx, 1, attrs)
	if timedOut {
		m.waitTimeouts.Add(ctx, 1, attrs)
	}
}
