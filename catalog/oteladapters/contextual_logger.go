package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// SlogBridgeLogger implements catalog.ContextualLogger using the OpenTelemetry slog bridge,
// which adds trace correlation to every record logged with a span in the context.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a contextual logger backed by the global OpenTelemetry LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler creates a contextual logger on top of the given handler.
// No trace correlation is added; the handler is used as-is.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

// DebugContext logs a debug message with context.
func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext logs an info message with context.
func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext logs a warning message with context.
func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext logs an error message with context.
func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

var _ catalog.ContextualLogger = (*SlogBridgeLogger)(nil)

// OTelLogger implements catalog.ContextualLogger on the OpenTelemetry logging API directly.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger creates a contextual logger that emits records to the given OpenTelemetry logger.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

// DebugContext emits a debug record.
func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args...)
}

// InfoContext emits an info record.
func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args...)
}

// WarnContext emits a warning record.
func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args...)
}

// ErrorContext emits an error record.
func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args...)
}

// emit converts slog-style key/value pairs into string attributes; a dangling key is dropped.
func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args ...any) {
	record := log.Record{}
	record.SetSeverity(severity)
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		record.AddAttributes(log.String(key, stringValue(args[i+1])))
	}

	l.logger.Emit(ctx, record)
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return slog.AnyValue(v).String()
}

var _ catalog.ContextualLogger = (*OTelLogger)(nil)
