package postgresengine

import (
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// Supported SQL dialects.
const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine) error

// WithDialect selects the SQL dialect the queries are rendered in.
func WithDialect(dialect string) Option {
	return func(e *Engine) error {
		switch dialect {
		case DialectPostgres, DialectMySQL:
			e.dialect = dialect
			return nil
		default:
			return catalog.ErrUnsupportedDialect
		}
	}
}

// WithTTL sets the time after which a DataModel reloads its snapshot on the next read.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) error {
		if ttl <= 0 {
			return catalog.ErrInvalidTTL
		}

		e.cacheTTL = ttl

		return nil
	}
}

// WithSideCache shares an existing side-cache instead of creating a private one.
func WithSideCache(sideCache *catalog.SideCache) Option {
	return func(e *Engine) error {
		if sideCache == nil {
			return catalog.ErrNilSideCache
		}

		e.sideCache = sideCache

		return nil
	}
}

// WithClock replaces the clock used for snapshot timestamps and staleness checks.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) error {
		e.clock = clock
		return nil
	}
}

// WithLogger sets the logger for the Engine.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Refreshes and writes with row counts and durations (production-safe)
// Warn level: Non-critical issues like association or side-cache load failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger catalog.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Engine.
// It receives the same messages as the Logger, together with the context for trace correlation.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(e *Engine) error {
		e.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Engine.
// The collector receives refresh and write durations, loaded row counts and error counters.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(e *Engine) error {
		e.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Engine.
// Spans are created for refresh, assemble and write operations.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(e *Engine) error {
		e.tracingCollector = collector
		return nil
	}
}
