package postgresengine

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// DataModel is the in-memory cache of every row of one entity kind.
//
// Reads are served from an immutable snapshot. The snapshot is reloaded when it is empty or
// older than the engine's TTL, or when RefreshNow is called after a write. Refreshes of one
// DataModel are serialised; readers always observe either the previous or the new snapshot.
type DataModel[T catalog.Entity] struct {
	engine     *Engine
	kind       catalog.Kind
	refreshMu  sync.Mutex
	generation uint64 // guarded by refreshMu
	snapshot   atomic.Pointer[catalog.Snapshot[T]]
	publisher  *catalog.Publisher[T]
}

// NewDataModel creates an empty DataModel for the entity kind T.
func NewDataModel[T catalog.Entity](engine *Engine) (*DataModel[T], error) {
	if engine == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	kind := catalog.KindOf[T]()
	if kind == catalog.KindUnknown {
		return nil, catalog.ErrUnsupportedKind
	}

	m := &DataModel[T]{
		engine:    engine,
		kind:      kind,
		publisher: catalog.NewPublisher[T](),
	}

	empty := catalog.BuildSnapshot[T](nil, 0, time.Time{})
	m.snapshot.Store(&empty)

	return m, nil
}

// Kind returns the entity kind cached by this DataModel.
func (m *DataModel[T]) Kind() catalog.Kind {
	return m.kind
}

// Snapshot returns the current snapshot without any I/O. It is empty before the first refresh.
func (m *DataModel[T]) Snapshot() catalog.Snapshot[T] {
	return *m.snapshot.Load()
}

// GetAll returns all entities, refreshing first when the snapshot is empty or older than the TTL.
//
// An empty table therefore causes a reload on every call.
func (m *DataModel[T]) GetAll(ctx context.Context) ([]T, error) {
	current := m.snapshot.Load()
	if !current.IsStaleAt(m.engine.now(), m.engine.cacheTTL) {
		m.engine.recordCacheRead(ctx, m.kind, resultHit)
		return current.Items(), nil
	}

	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// another caller may have refreshed while we waited for the lock
	current = m.snapshot.Load()
	if !current.IsStaleAt(m.engine.now(), m.engine.cacheTTL) {
		m.engine.recordCacheRead(ctx, m.kind, resultHit)
		return current.Items(), nil
	}

	m.engine.recordCacheRead(ctx, m.kind, resultRefresh)

	refreshed, err := m.refreshLocked(ctx)
	if err != nil {
		return nil, err
	}

	return refreshed.Items(), nil
}

// GetAllOrLast behaves like GetAll, but when the refresh fails and an earlier refresh succeeded it
// returns the entities of that last good snapshot together with the refresh error joined with
// catalog.ErrServingStaleSnapshot.
func (m *DataModel[T]) GetAllOrLast(ctx context.Context) ([]T, error) {
	items, err := m.GetAll(ctx)
	if err == nil {
		return items, nil
	}

	last := m.Snapshot()
	if last.IsEmpty() {
		return nil, err
	}

	return last.Items(), errors.Join(catalog.ErrServingStaleSnapshot, err)
}

// RefreshNow reloads every row of the table unconditionally, swaps the snapshot and publishes it.
// On failure the previous snapshot stays in place.
func (m *DataModel[T]) RefreshNow(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	_, err := m.refreshLocked(ctx)

	return err
}

// Subscribe registers a listener for published snapshots. The channel immediately holds the
// latest snapshot if the DataModel was refreshed before. Call cancel to unsubscribe.
func (m *DataModel[T]) Subscribe() (<-chan catalog.Snapshot[T], func()) {
	return m.publisher.Subscribe()
}

// refreshLocked must be called while holding refreshMu.
func (m *DataModel[T]) refreshLocked(ctx context.Context) (*catalog.Snapshot[T], error) {
	start := time.Now()
	metrics := m.engine.startRefreshMetrics(ctx, m.kind)
	span, ctx := m.engine.startSpan(ctx, spanNameRefresh, map[string]string{
		spanAttrOperation: operationRefresh,
		spanAttrKind:      m.kind.String(),
	})

	sqlQuery, err := m.engine.buildSelectAllQuery(m.kind)
	if err != nil {
		m.refreshFailed(ctx, span, metrics, errorTypeBuild, err, start)
		return nil, err
	}

	m.engine.reloadSideCaches(ctx, m.kind)

	rows, err := m.engine.queryRows(ctx, sqlQuery, logActionRefresh)
	if err != nil {
		m.refreshFailed(ctx, span, metrics, errorTypeQuery, err, start)
		return nil, err
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, mapErr := mapRow[T](ctx, m.engine, row)
		if mapErr != nil {
			m.engine.logError(ctx, logMsgMappingFailed, mapErr, logAttrKind, m.kind.String())
			m.refreshFailed(ctx, span, metrics, errorTypeMapping, mapErr, start)

			return nil, mapErr
		}

		items = append(items, item)
	}

	m.generation++
	snapshot := catalog.BuildSnapshot(items, m.generation, m.engine.now())
	m.snapshot.Store(&snapshot)
	m.publisher.Publish(snapshot)

	duration := time.Since(start)
	metrics.recordSuccess(len(items), duration)
	span.finishSuccess(duration, map[string]string{
		spanAttrRowCount:   strconv.Itoa(len(items)),
		spanAttrGeneration: strconv.FormatUint(m.generation, 10),
	})
	m.engine.logOperation(ctx, logMsgRefreshed,
		logAttrKind, m.kind.String(),
		logAttrRowCount, len(items),
		logAttrGeneration, m.generation,
		logAttrDurationMS, toMilliseconds(duration))

	return &snapshot, nil
}

func (m *DataModel[T]) refreshFailed(
	ctx context.Context,
	span *spanObserver,
	metrics *refreshMetricsObserver,
	errorType string,
	err error,
	start time.Time,
) {
	duration := time.Since(start)
	metrics.recordError(errorType, duration)
	span.finishError(errorType, duration)
	m.engine.logWarn(ctx, logMsgRefreshFailed, logAttrError, err.Error(), logAttrKind, m.kind.String())
}
