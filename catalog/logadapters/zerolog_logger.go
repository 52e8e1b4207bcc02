// Package logadapters provides logger adapters for the catalog Logger and ContextualLogger interfaces
// for backends that do not speak them natively.
package logadapters

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// ZerologLogger implements catalog.Logger and catalog.ContextualLogger on top of a zerolog.Logger.
// Arguments are slog-style key/value pairs and become zerolog fields.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// NewZerologJSONLogger creates a timestamped JSON logger writing to w at the given minimum level.
func NewZerologJSONLogger(w io.Writer, level zerolog.Level) *ZerologLogger {
	return &ZerologLogger{logger: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Debug logs at debug level.
func (l *ZerologLogger) Debug(msg string, args ...any) {
	write(l.logger.Debug(), msg, args)
}

// Info logs at info level.
func (l *ZerologLogger) Info(msg string, args ...any) {
	write(l.logger.Info(), msg, args)
}

// Warn logs at warn level.
func (l *ZerologLogger) Warn(msg string, args ...any) {
	write(l.logger.Warn(), msg, args)
}

// Error logs at error level.
func (l *ZerologLogger) Error(msg string, args ...any) {
	write(l.logger.Error(), msg, args)
}

// DebugContext logs at debug level, attaching ctx to the event for hooks.
func (l *ZerologLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	write(l.logger.Debug().Ctx(ctx), msg, args)
}

// InfoContext logs at info level, attaching ctx to the event for hooks.
func (l *ZerologLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	write(l.logger.Info().Ctx(ctx), msg, args)
}

// WarnContext logs at warn level, attaching ctx to the event for hooks.
func (l *ZerologLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	write(l.logger.Warn().Ctx(ctx), msg, args)
}

// ErrorContext logs at error level, attaching ctx to the event for hooks.
func (l *ZerologLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	write(l.logger.Error().Ctx(ctx), msg, args)
}

// write drops a trailing key that has no value.
func write(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}

	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}

	if len(args) > 0 {
		event = event.Fields(args)
	}

	event.Msg(msg)
}

var (
	_ catalog.Logger           = (*ZerologLogger)(nil)
	_ catalog.ContextualLogger = (*ZerologLogger)(nil)
)
