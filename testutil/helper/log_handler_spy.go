package helper

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler implementation that captures log records for testing.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a new LogHandlerSpy
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewLogHandlerSpy(logToStdOut bool) *LogHandlerSpy {
	return &LogHandlerSpy{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdOut,
	}
}

// Handle implements slog.Handler interface.
func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)

	if s.logToStdout {
		jsonHandler := slog.NewJSONHandler(os.Stdout, nil)
		_ = jsonHandler.Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler interface.
func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs implements slog.Handler interface.
func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

// WithGroup implements slog.Handler interface.
func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// GetRecordCount returns the number of captured log records.
func (s *LogHandlerSpy) GetRecordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Reset clears all captured log records.
func (s *LogHandlerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = s.records[:0]
}

// SpyLogRecordMatcher provides a fluent interface for checking log record attributes.
type SpyLogRecordMatcher struct {
	candidates []slog.Record
}

// HasDebugLogWithMessage starts a fluent chain to check a debug-level log record.
func (s *LogHandlerSpy) HasDebugLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.hasLogWithMessage(slog.LevelDebug, message)
}

// HasInfoLogWithMessage starts a fluent chain to check an info-level log record.
func (s *LogHandlerSpy) HasInfoLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.hasLogWithMessage(slog.LevelInfo, message)
}

// HasWarnLogWithMessage starts a fluent chain to check a warn-level log record.
func (s *LogHandlerSpy) HasWarnLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.hasLogWithMessage(slog.LevelWarn, message)
}

// HasErrorLogWithMessage starts a fluent chain to check an error-level log record.
func (s *LogHandlerSpy) HasErrorLogWithMessage(message string) *SpyLogRecordMatcher {
	return s.hasLogWithMessage(slog.LevelError, message)
}

func (s *LogHandlerSpy) hasLogWithMessage(level slog.Level, message string) *SpyLogRecordMatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	matcher := &SpyLogRecordMatcher{}
	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			matcher.candidates = append(matcher.candidates, record)
		}
	}

	return matcher
}

// WithDurationMS keeps the records that carry a non-negative duration_ms attribute.
func (m *SpyLogRecordMatcher) WithDurationMS() *SpyLogRecordMatcher {
	return m.filter(func(attr slog.Attr) bool {
		if attr.Key != "duration_ms" {
			return false
		}

		switch attr.Value.Kind() {
		case slog.KindInt64:
			return attr.Value.Int64() >= 0
		case slog.KindFloat64:
			return attr.Value.Float64() >= 0
		default:
			return false
		}
	})
}

// WithAttr keeps the records that carry the attribute key, with any value.
func (m *SpyLogRecordMatcher) WithAttr(key string) *SpyLogRecordMatcher {
	return m.filter(func(attr slog.Attr) bool {
		return attr.Key == key
	})
}

// WithStringAttr keeps the records whose attribute key renders as value.
func (m *SpyLogRecordMatcher) WithStringAttr(key, value string) *SpyLogRecordMatcher {
	return m.filter(func(attr slog.Attr) bool {
		return attr.Key == key && attr.Value.String() == value
	})
}

func (m *SpyLogRecordMatcher) filter(match func(attr slog.Attr) bool) *SpyLogRecordMatcher {
	kept := make([]slog.Record, 0, len(m.candidates))
	for _, record := range m.candidates {
		found := false
		record.Attrs(func(attr slog.Attr) bool {
			if match(attr) {
				found = true
				return false
			}

			return true
		})

		if found {
			kept = append(kept, record)
		}
	}

	m.candidates = kept

	return m
}

// Assert returns true if all conditions in the fluent chain were met by at least one record.
func (m *SpyLogRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
