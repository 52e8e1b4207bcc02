package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

const (
	logMsgDBQueryFailed         = "database query execution failed"
	logMsgDBExecFailed          = "database execution failed"
	logMsgScanRowFailed         = "failed to scan database row"
	logMsgCloseRowsFailed       = "failed to close database rows"
	logMsgMappingFailed         = "failed to map database row"
	logMsgRefreshFailed         = "refresh failed, keeping previous snapshot"
	logMsgSideCacheLoadFailed   = "failed to reload side-cache"
	logMsgAssociationLoadFailed = "failed to load order association"
	logMsgRefreshAfterWrite     = "refresh after write failed"
	logMsgSQLExecuted           = "executed sql for: "
	logMsgOperation             = "catalog operation: "
	logMsgRefreshed             = "refreshed"
	logMsgWritten               = "written"
	logMsgLoggedIn              = "logged in"
	logAttrError                = "error"
	logAttrQuery                = "query"
	logAttrKind                 = "kind"
	logAttrRowCount             = "row_count"
	logAttrGeneration           = "generation"
	logAttrDurationMS           = "duration_ms"
	logAttrWrite                = "write"
	logAttrOrderID              = "order_id"
	logAttrAssociation          = "association"
	logAttrUsername             = "username"
	logActionQuery              = "query"
	logActionRefresh            = "refresh"
	logActionAssemble           = "assemble"
	logActionWrite              = "write"
	logActionLogin              = "login"
)

const (
	metricRefreshDuration   = "catalog_refresh_duration_seconds"
	metricRowsLoaded        = "catalog_rows_loaded"
	metricWriteDuration     = "catalog_write_duration_seconds"
	metricDatabaseErrors    = "catalog_database_errors_total"
	metricAssociationErrors = "catalog_association_errors_total"
	metricSideCacheErrors   = "catalog_side_cache_errors_total"
	metricCacheReads        = "catalog_cache_reads_total"
	spanNameRefresh         = "catalog.refresh"
	spanNameAssemble        = "catalog.assemble"
	spanNameWrite           = "catalog.write"
	spanAttrOperation       = "operation"
	spanAttrKind            = "kind"
	spanAttrWrite           = "write"
	spanAttrRowCount        = "row_count"
	spanAttrGeneration      = "generation"
	spanAttrOrderID         = "order_id"
	spanAttrErrorType       = "error_type"
	spanAttrDurationMS      = "duration_ms"
	labelStatus             = "status"
	labelResult             = "result"
	statusSuccess           = "success"
	statusError             = "error"
	resultHit               = "hit"
	resultRefresh           = "refresh"
	errorTypeQuery          = "query_error"
	errorTypeMapping        = "mapping_error"
	errorTypeBuild          = "build_query_error"
	errorTypeWrite          = "write_error"
	errorTypeNotFound       = "not_found"
	errorTypeAssociation    = "association_error"
	operationRefresh        = "refresh"
	operationWrite          = "write"
	operationAssemble       = "assemble"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (e *Engine) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	e.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level if a logger is configured.
func (e *Engine) logOperation(ctx context.Context, action string, args ...any) {
	if e.logger != nil {
		e.logger.Info(logMsgOperation+action, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

func (e *Engine) logDebug(ctx context.Context, message string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(message, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, message, args...)
	}
}

func (e *Engine) logWarn(ctx context.Context, message string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(message, args...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (e *Engine) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if e.logger != nil {
		e.logger.Error(message, allArgs...)
	}

	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMilliseconds(d time.Duration) string {
	return fmt.Sprintf("%.2f", toMilliseconds(d))
}

// incrementCounter increments a counter, using the context-aware method when the collector supports it.
func (e *Engine) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	e.metricsCollector.IncrementCounter(metric, labels)
}

// recordDuration records a duration, using the context-aware method when the collector supports it.
func (e *Engine) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	e.metricsCollector.RecordDuration(metric, duration, labels)
}

// recordValue records a value, using the context-aware method when the collector supports it.
func (e *Engine) recordValue(ctx context.Context, metric string, value float64, labels map[string]string) {
	if e.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := e.metricsCollector.(catalog.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metric, value, labels)
		return
	}

	e.metricsCollector.RecordValue(metric, value, labels)
}

// recordErrorMetrics records the database error counter.
func (e *Engine) recordErrorMetrics(ctx context.Context, operation, kind, errorType string) {
	e.incrementCounter(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: operation,
		spanAttrKind:      kind,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})
}

// recordCacheRead counts reads answered from the snapshot (hit) versus reads that triggered a reload.
func (e *Engine) recordCacheRead(ctx context.Context, kind catalog.Kind, result string) {
	e.incrementCounter(ctx, metricCacheReads, map[string]string{
		spanAttrKind: kind.String(),
		labelResult:  result,
	})
}

// === Tracing Observer Pattern ===
// The observer hides whether a tracing collector is configured at all.

// spanObserver encapsulates the tracing span lifecycle of one operation.
type spanObserver struct {
	e    *Engine
	span catalog.SpanContext
}

// startSpan starts a tracing span if the tracing collector is configured.
func (e *Engine) startSpan(ctx context.Context, name string, attrs map[string]string) (*spanObserver, context.Context) {
	if e.tracingCollector == nil {
		return &spanObserver{e: e}, ctx
	}

	newCtx, span := e.tracingCollector.StartSpan(ctx, name, attrs)

	return &spanObserver{e: e, span: span}, newCtx
}

// finishSuccess completes the span for successful operations.
func (so *spanObserver) finishSuccess(duration time.Duration, attrs map[string]string) {
	if so.span == nil {
		return
	}

	so.span.SetStatus(statusSuccess)
	so.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	for key, value := range attrs {
		so.span.AddAttribute(key, value)
	}

	so.e.tracingCollector.FinishSpan(so.span, statusSuccess, attrs)
}

// finishError completes the span with error details.
func (so *spanObserver) finishError(errorType string, duration time.Duration) {
	if so.span == nil {
		return
	}

	so.span.SetStatus(statusError)
	so.span.AddAttribute(spanAttrErrorType, errorType)
	if duration > 0 {
		so.span.AddAttribute(spanAttrDurationMS, formatMilliseconds(duration))
	}

	so.e.tracingCollector.FinishSpan(so.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

// === Metrics Observer Pattern ===

// refreshMetricsObserver encapsulates the metrics collection for refresh operations.
type refreshMetricsObserver struct {
	e    *Engine
	ctx  context.Context
	kind string
}

func (e *Engine) startRefreshMetrics(ctx context.Context, kind catalog.Kind) *refreshMetricsObserver {
	return &refreshMetricsObserver{e: e, ctx: ctx, kind: kind.String()}
}

// recordSuccess records the duration and loaded row count of a successful refresh.
func (rmo *refreshMetricsObserver) recordSuccess(rowCount int, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: operationRefresh, spanAttrKind: rmo.kind, labelStatus: statusSuccess}
	rmo.e.recordDuration(rmo.ctx, metricRefreshDuration, duration, labels)
	rmo.e.recordValue(rmo.ctx, metricRowsLoaded, float64(rowCount), labels)
}

// recordError records the duration and error counter of a failed refresh.
func (rmo *refreshMetricsObserver) recordError(errorType string, duration time.Duration) {
	labels := map[string]string{spanAttrOperation: operationRefresh, spanAttrKind: rmo.kind, labelStatus: statusError}
	rmo.e.recordDuration(rmo.ctx, metricRefreshDuration, duration, labels)
	rmo.e.recordErrorMetrics(rmo.ctx, operationRefresh, rmo.kind, errorType)
}

// writeMetricsObserver encapsulates the metrics collection for write operations.
type writeMetricsObserver struct {
	e     *Engine
	ctx   context.Context
	write string
	kind  string
}

func (e *Engine) startWriteMetrics(ctx context.Context, write string, kind catalog.Kind) *writeMetricsObserver {
	return &writeMetricsObserver{e: e, ctx: ctx, write: write, kind: kind.String()}
}

// recordSuccess records the duration of a successful write.
func (wmo *writeMetricsObserver) recordSuccess(duration time.Duration) {
	wmo.e.recordDuration(wmo.ctx, metricWriteDuration, duration, map[string]string{
		spanAttrOperation: operationWrite,
		spanAttrWrite:     wmo.write,
		spanAttrKind:      wmo.kind,
		labelStatus:       statusSuccess,
	})
}

// recordError records the duration and error counter of a failed write.
func (wmo *writeMetricsObserver) recordError(errorType string, duration time.Duration) {
	wmo.e.recordDuration(wmo.ctx, metricWriteDuration, duration, map[string]string{
		spanAttrOperation: operationWrite,
		spanAttrWrite:     wmo.write,
		spanAttrKind:      wmo.kind,
		labelStatus:       statusError,
	})
	wmo.e.recordErrorMetrics(wmo.ctx, operationWrite, wmo.kind, errorType)
}
