package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTracingTest installs a test tracer provider with an in-memory exporter.
func setupTracingTest(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	originalProvider := otel.GetTracerProvider()
	originalTracer := tracer
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("singleton")

	cleanup := func() {
		otel.SetTracerProvider(originalProvider)
		tracer = originalTracer
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	}
	return exporter, cleanup
}

func TestStartConstructSpan(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	_, span := NewSpanManager().StartConstructSpan(context.Background(), "tag:db", 3)
	require.NotNil(t, span)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, "singleton.construct", s.Name)
	assert.Contains(t, s.Attributes, attribute.String(KeyAttr, "tag:db"))
	assert.Contains(t, s.Attributes, attribute.Int("singleton.attempt", 3))
}

func TestEndSpanWithError(t *testing.T) {
	t.Run("records error status", func(t *testing.T) {
		exporter, cleanup := setupTracingTest(t)
		defer cleanup()

		sm := NewSpanManager()
		_, span := sm.StartConstructSpan(context.Background(), "tag:db", 1)
		sm.EndSpanWithError(span, errors.New("dial failed"))

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "dial failed", spans[0].Status.Description)
		assert.NotEmpty(t, spans[0].Events, "error should be recorded as an event")
	})

	t.Run("records ok status", func(t *testing.T) {
		exporter, cleanup := setupTracingTest(t)
		defer cleanup()

		_, span := StartConstructSpan(context.Background(), "tag:db", 1)
		EndSpanWithError(span, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
	})

	t.Run("nil span is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { EndSpanWithError(nil, errors.New("x")) })
	})
}

func TestAddSpanEvent(t *testing.T) {
	exporter, cleanup := setupTracingTest(t)
	defer cleanup()

	sm := NewSpanManager()
	ctx, span := sm.StartConstructSpan(context.Background(), "tag:db", 1)
	sm.AddSpanEvent(ctx, "builder.returned", attribute.Bool("ok", true))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "builder.returned", spans[0].Events[0].Name)

	// No span in context: no-op.
	assert.NotPanics(t, func() { AddSpanEvent(context.Background(), "orphan") })
}
