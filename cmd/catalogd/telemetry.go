package main

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/oteladapters"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
)

const (
	serviceName          = "catalogd"
	metricExportInterval = 5 * time.Second
	telemetryShutdown    = 5 * time.Second
)

type telemetryProviders struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

// newTelemetryProviders installs global OpenTelemetry providers exporting over OTLP gRPC.
// Endpoints come from the standard OTEL_EXPORTER_OTLP_* environment variables.
func newTelemetryProviders(ctx context.Context, insecure bool) (*telemetryProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	var traceOptions []otlptracegrpc.Option
	var metricOptions []otlpmetricgrpc.Option
	if insecure {
		traceOptions = append(traceOptions, otlptracegrpc.WithInsecure())
		metricOptions = append(metricOptions, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOptions...)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions...)
	if err != nil {
		return nil, err
	}

	providers := &telemetryProviders{
		tracerProvider: trace.NewTracerProvider(
			trace.WithBatcher(traceExporter),
			trace.WithResource(res),
		),
		meterProvider: metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(metricExporter, metric.WithInterval(metricExportInterval))),
			metric.WithResource(res),
		),
	}

	otel.SetTracerProvider(providers.tracerProvider)
	otel.SetMeterProvider(providers.meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return providers, nil
}

// Shutdown flushes and stops both providers.
func (p *telemetryProviders) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdown)
	defer cancel()

	return errors.Join(p.tracerProvider.Shutdown(ctx), p.meterProvider.Shutdown(ctx))
}

// telemetryOptions wires the engine to the global providers. The contextual logger goes
// through the otelslog bridge so log records carry the active trace.
func telemetryOptions() []postgresengine.Option {
	return []postgresengine.Option{
		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(serviceName))),
		postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(serviceName))),
		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(serviceName)),
	}
}
