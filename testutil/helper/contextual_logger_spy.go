package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// SpyContextualLogRecord is one recorded contextual log call.
type SpyContextualLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// ContextualLoggerSpy records catalog.ContextualLogger calls together with the context they received.
type ContextualLoggerSpy struct {
	records []SpyContextualLogRecord
	mu      sync.Mutex
}

// NewContextualLoggerSpy creates an empty ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyContextualLogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

// Records returns a copy of all recorded calls of the given level.
func (s *ContextualLoggerSpy) Records(level string) []SpyContextualLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []SpyContextualLogRecord
	for _, record := range s.records {
		if record.Level == level {
			out = append(out, record)
		}
	}

	return out
}

// HasLog reports whether a call with level and message was recorded.
func (s *ContextualLoggerSpy) HasLog(level, message string) bool {
	for _, record := range s.Records(level) {
		if record.Message == message {
			return true
		}
	}

	return false
}

// ContextOf returns the context of the first call with level and message, or nil.
func (s *ContextualLoggerSpy) ContextOf(level, message string) context.Context {
	for _, record := range s.Records(level) {
		if record.Message == message {
			return record.Context
		}
	}

	return nil
}

var _ catalog.ContextualLogger = (*ContextualLoggerSpy)(nil)
