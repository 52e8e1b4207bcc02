package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// TracingCollector implements catalog.TracingCollector using the OpenTelemetry tracing API.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a tracing collector; the tracer comes from your TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts an OpenTelemetry span carrying attrs and returns the derived context.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toAttributes(attrs)...))

	return spanCtx, &OTelSpanContext{span: span}
}

// FinishSpan sets the final attributes and status, then ends the span.
// Span contexts not created by this collector are ignored.
func (t *TracingCollector) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	otelSpanCtx, ok := spanCtx.(*OTelSpanContext)
	if !ok {
		return
	}

	otelSpanCtx.span.SetAttributes(toAttributes(attrs)...)
	otelSpanCtx.setSpanStatus(status)
	otelSpanCtx.span.End()
}

var _ catalog.TracingCollector = (*TracingCollector)(nil)

// OTelSpanContext implements catalog.SpanContext by wrapping an OpenTelemetry span.
type OTelSpanContext struct {
	span trace.Span
}

// SetStatus maps the status string to an OpenTelemetry status code.
func (s *OTelSpanContext) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds a string attribute to the span.
func (s *OTelSpanContext) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *OTelSpanContext) setSpanStatus(status string) {
	switch status {
	case "ok", "success", "completed":
		s.span.SetStatus(codes.Ok, "")
	case "error", "failed", "failure":
		s.span.SetStatus(codes.Error, "Operation failed")
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "Operation cancelled")
	case "not_found":
		s.span.SetStatus(codes.Error, "Entity not found")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

var _ catalog.SpanContext = (*OTelSpanContext)(nil)
