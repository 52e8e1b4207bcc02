package helper

import (
	"context"
	"maps"
	"sync"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// SpySpanContext implements catalog.SpanContext for testing tracing functionality.
type SpySpanContext struct {
	status     string
	attributes map[string]string
	mu         sync.Mutex
}

// SetStatus implements the catalog.SpanContext interface.
func (c *SpySpanContext) SetStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// AddAttribute implements the catalog.SpanContext interface.
func (c *SpySpanContext) AddAttribute(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attributes == nil {
		c.attributes = make(map[string]string)
	}
	c.attributes[key] = value
}

// GetStatus returns the current status of the span.
func (c *SpySpanContext) GetStatus() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// GetAttributes returns a copy of all attributes.
func (c *SpySpanContext) GetAttributes() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.attributes)
}

// TracingCollectorSpy is a TracingCollector implementation that captures tracing calls for testing.
type TracingCollectorSpy struct {
	spanRecords []SpySpanRecord
	mu          sync.Mutex
	recordCalls bool
}

// SpySpanRecord represents a recorded span.
type SpySpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	SpanContext     *SpySpanContext
}

// NewTracingCollectorSpy creates a new TracingCollectorSpy.
// Set recordCalls to true to capture all tracing calls for inspection in tests.
func NewTracingCollectorSpy(recordCalls bool) *TracingCollectorSpy {
	return &TracingCollectorSpy{
		spanRecords: make([]SpySpanRecord, 0),
		recordCalls: recordCalls,
	}
}

// StartSpan implements the catalog.TracingCollector interface.
func (s *TracingCollectorSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, catalog.SpanContext) {
	if !s.recordCalls {
		return ctx, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	spanCtx := &SpySpanContext{
		attributes: make(map[string]string),
	}

	s.spanRecords = append(s.spanRecords, SpySpanRecord{
		Name:            name,
		StartAttributes: maps.Clone(attrs),
		SpanContext:     spanCtx,
	})

	return ctx, spanCtx
}

// FinishSpan implements the catalog.TracingCollector interface.
func (s *TracingCollectorSpy) FinishSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	if !s.recordCalls || spanCtx == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	testSpanCtx, ok := spanCtx.(*SpySpanContext)
	if !ok {
		return
	}

	for i := range s.spanRecords {
		if s.spanRecords[i].SpanContext == testSpanCtx {
			s.spanRecords[i].Status = status
			s.spanRecords[i].EndAttributes = maps.Clone(attrs)
			break
		}
	}
}

// GetSpanRecordCount returns the number of captured span records.
func (s *TracingCollectorSpy) GetSpanRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.spanRecords)
}

// SpanRecordMatcher provides a fluent interface for checking span records.
type SpanRecordMatcher struct {
	candidates []SpySpanRecord
}

// HasSpanRecordForName starts a fluent chain to check a span record.
func (s *TracingCollectorSpy) HasSpanRecordForName(name string) *SpanRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	matcher := &SpanRecordMatcher{}
	for _, record := range s.spanRecords {
		if record.Name == name {
			matcher.candidates = append(matcher.candidates, record)
		}
	}

	return matcher
}

// WithStatus keeps the span records with the specified status.
func (m *SpanRecordMatcher) WithStatus(status string) *SpanRecordMatcher {
	return m.filter(func(record SpySpanRecord) bool {
		return record.Status == status
	})
}

// WithStartAttribute keeps the span records with the specified start attribute.
func (m *SpanRecordMatcher) WithStartAttribute(key, value string) *SpanRecordMatcher {
	return m.filter(func(record SpySpanRecord) bool {
		attrValue, exists := record.StartAttributes[key]
		return exists && attrValue == value
	})
}

// WithSpanAttribute keeps the span records whose span context has the specified attribute.
func (m *SpanRecordMatcher) WithSpanAttribute(key, value string) *SpanRecordMatcher {
	return m.filter(func(record SpySpanRecord) bool {
		if record.SpanContext == nil {
			return false
		}

		attrValue, exists := record.SpanContext.GetAttributes()[key]
		return exists && attrValue == value
	})
}

func (m *SpanRecordMatcher) filter(match func(record SpySpanRecord) bool) *SpanRecordMatcher {
	kept := make([]SpySpanRecord, 0, len(m.candidates))
	for _, record := range m.candidates {
		if match(record) {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// Assert returns true if at least one span record met all conditions in the fluent chain.
func (m *SpanRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
