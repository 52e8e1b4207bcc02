package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/oteladapters"
)

func newManualMeter() (*sdkmetric.ManualReader, metric.Meter) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, provider.Meter("test")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// setup
	reader, meter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDuration("catalog_refresh_duration_seconds", 150*time.Millisecond, map[string]string{
		"kind":   "book",
		"status": "success",
	})

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "catalog_refresh_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)
	expectedAttrs := attribute.NewSet(attribute.String("kind", "book"), attribute.String("status", "success"))
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// setup
	reader, meter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"operation": "refresh", "kind": "order", "result": "hit"}

	// act
	collector.IncrementCounter("catalog_cache_reads_total", labels)
	collector.IncrementCounter("catalog_cache_reads_total", labels)
	collector.IncrementCounterContext(context.Background(), "catalog_cache_reads_total", labels)

	// assert
	counter := findCounterMetric(t, collect(t, reader), "catalog_cache_reads_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(3), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// setup
	reader, meter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordValue("catalog_rows_loaded", 12, map[string]string{"kind": "customer"})
	collector.RecordValueContext(context.Background(), "catalog_rows_loaded", 14, map[string]string{"kind": "customer"})

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "catalog_rows_loaded")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 14.0, gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_NilLabels(t *testing.T) {
	// setup
	reader, meter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDurationContext(context.Background(), "catalog_write_duration_seconds", time.Second, nil)

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "catalog_write_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	assert.Equal(t, 0, histogram.DataPoints[0].Attributes.Len())
}

func Test_MetricsCollector_ShouldBeSafeForConcurrentUse(t *testing.T) {
	// setup
	reader, meter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	wg := sync.WaitGroup{}

	// act
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				collector.IncrementCounter("catalog_database_errors_total", map[string]string{"kind": "book"})
			}
		}()
	}
	wg.Wait()

	// assert
	counter := findCounterMetric(t, collect(t, reader), "catalog_database_errors_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(400), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	// setup
	_, baseMeter := newManualMeter()
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: baseMeter})
	ctx := context.Background()

	// act & assert
	assert.NotPanics(t, func() {
		collector.RecordDuration("error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounter("error_counter", nil)
		collector.RecordValue("error_gauge", 42.0, nil)
		collector.RecordDurationContext(ctx, "error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounterContext(ctx, "error_counter", nil)
		collector.RecordValueContext(ctx, "error_gauge", 42.0, nil)
	})
}

type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "error_histogram" {
		return nil, errors.New("histogram creation failed")
	}

	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "error_counter" {
		return nil, errors.New("counter creation failed")
	}

	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "error_gauge" {
		return nil, errors.New("gauge creation failed")
	}

	return m.Meter.Float64Gauge(name, options...)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Histogram[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return &h
			}
		}
	}

	t.Fatalf("histogram metric %s not found", name)

	return nil
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if c, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				return &c
			}
		}
	}

	t.Fatalf("counter metric %s not found", name)

	return nil
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Gauge[float64] {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if g, ok := m.Data.(metricdata.Gauge[float64]); ok && m.Name == name {
				return &g
			}
		}
	}

	t.Fatalf("gauge metric %s not found", name)

	return nil
}
