// Package oteladapters provides OpenTelemetry adapters for the catalog observability interfaces.
//
// Wire them into an engine with the matching options:
//
//	engine, err := postgresengine.NewEngineFromPGXPool(pool,
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("catalog")),
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(meterProvider.Meter("catalog"))),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(tracerProvider.Tracer("catalog"))),
//	)
package oteladapters
