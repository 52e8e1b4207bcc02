package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/oteladapters"
)

func newRecordingCollector() (*tracetest.InMemoryExporter, *oteladapters.TracingCollector) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return exporter, oteladapters.NewTracingCollector(provider.Tracer("test"))
}

func Test_TracingCollector_ShouldRecordStartAndFinishAttributes(t *testing.T) {
	// setup
	exporter, collector := newRecordingCollector()

	// act
	ctx, spanCtx := collector.StartSpan(context.Background(), "catalog.refresh", map[string]string{"kind": "order"})
	spanCtx.AddAttribute("generation", "4")
	collector.FinishSpan(spanCtx, "success", map[string]string{"row_count": "12"})

	// assert
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "catalog.refresh", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assertSpanHasAttribute(t, spans[0], "kind", "order")
	assertSpanHasAttribute(t, spans[0], "generation", "4")
	assertSpanHasAttribute(t, spans[0], "row_count", "12")
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	testCases := []struct {
		status   string
		expected codes.Code
	}{
		{status: "success", expected: codes.Ok},
		{status: "ok", expected: codes.Ok},
		{status: "error", expected: codes.Error},
		{status: "canceled", expected: codes.Error},
		{status: "not_found", expected: codes.Error},
		{status: "something_else", expected: codes.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.status, func(t *testing.T) {
			// setup
			exporter, collector := newRecordingCollector()

			// act
			_, spanCtx := collector.StartSpan(context.Background(), "catalog.write", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			// assert
			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expected, spans[0].Status.Code)
		})
	}
}

func Test_TracingCollector_ShouldNestChildSpans(t *testing.T) {
	// setup
	exporter, collector := newRecordingCollector()

	// act
	ctx, parent := collector.StartSpan(context.Background(), "catalog.refresh", nil)
	_, child := collector.StartSpan(ctx, "catalog.assemble", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	// assert
	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_ShouldIgnoreForeignSpanContexts(t *testing.T) {
	// setup
	exporter, collector := newRecordingCollector()

	// act & assert
	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpanContext{}, "success", nil)
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

type foreignSpanContext struct{}

func (foreignSpanContext) SetStatus(string)            {}
func (foreignSpanContext) AddAttribute(string, string) {}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			assert.Equal(t, expectedValue, attr.Value.AsString())
			return
		}
	}

	t.Errorf("span %s has no attribute %s", span.Name, key)
}
