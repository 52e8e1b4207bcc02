package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine/internal/adapters"
)

const defaultCacheTTL = 5 * time.Minute

// Engine owns the database adapter, the side-cache and the observability hooks shared by all
// DataModels of one Catalog.
type Engine struct {
	db               adapters.DBAdapter
	dialect          string
	cacheTTL         time.Duration
	clock            func() time.Time
	sideCache        *catalog.SideCache
	logger           catalog.Logger
	contextualLogger catalog.ContextualLogger
	metricsCollector catalog.MetricsCollector
	tracingCollector catalog.TracingCollector
}

// NewEngineFromPGXPool creates a new Engine using a pgx Pool with optional configuration.
func NewEngineFromPGXPool(db *pgxpool.Pool, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapter(db), options...)
}

// NewEngineFromPGXPoolWithReplica creates a new Engine using a primary pgx Pool for writes and
// strongly consistent reads, and a replica pool for reads under catalog.WithEventualConsistency.
func NewEngineFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Engine, error) {
	if primary == nil || replica == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewEngineFromSQLDB creates a new Engine using a sql.DB with optional configuration.
// Use WithDialect(DialectMySQL) for a go-sql-driver/mysql handle.
func NewEngineFromSQLDB(db *sql.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLAdapter(db), options...)
}

// NewEngineFromSQLX creates a new Engine using a sqlx.DB with optional configuration.
func NewEngineFromSQLX(db *sqlx.DB, options ...Option) (*Engine, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newEngine(adapters.NewSQLXAdapter(db), options...)
}

func newEngine(db adapters.DBAdapter, options ...Option) (*Engine, error) {
	e := &Engine{
		db:        db,
		dialect:   DialectPostgres,
		cacheTTL:  defaultCacheTTL,
		clock:     time.Now,
		sideCache: catalog.NewSideCache(),
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SideCache returns the lookup tables of books, discounts and penalties shared by all DataModels.
func (e *Engine) SideCache() *catalog.SideCache {
	return e.sideCache
}

// CacheTTL returns the time after which a snapshot is reloaded on the next read.
func (e *Engine) CacheTTL() time.Duration {
	return e.cacheTTL
}

func (e *Engine) now() time.Time {
	return e.clock()
}

func (e *Engine) builder() goqu.DialectWrapper {
	return goqu.Dialect(e.dialect)
}

// queryRows executes the query and reads every row before the connection is released.
func (e *Engine) queryRows(ctx context.Context, sqlQuery string, action string) ([]catalog.Row, error) {
	start := time.Now()
	rows, queryErr := e.db.Query(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if queryErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, errors.Join(catalog.ErrQueryingFailed, queryErr)
	}
	defer e.closeRows(ctx, rows)

	result := make([]catalog.Row, 0)
	for rows.Next() {
		row, scanErr := rows.ScanRow()
		if scanErr != nil {
			e.logError(ctx, logMsgScanRowFailed, scanErr, logAttrQuery, sqlQuery)

			return nil, errors.Join(catalog.ErrQueryingFailed, catalog.ErrScanningRowFailed, scanErr)
		}

		result = append(result, row)
	}

	if iterErr := rows.Err(); iterErr != nil {
		e.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrQuery, sqlQuery)

		return nil, errors.Join(catalog.ErrQueryingFailed, iterErr)
	}

	return result, nil
}

// exec executes a write statement and returns the number of affected rows.
func (e *Engine) exec(ctx context.Context, sqlQuery string, action string) (adapters.DBResult, error) {
	start := time.Now()
	result, execErr := e.db.Exec(ctx, sqlQuery)
	e.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		e.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return nil, errors.Join(catalog.ErrWriteFailed, execErr)
	}

	return result, nil
}

// closeRows safely closes database rows and logs any errors.
func (e *Engine) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		e.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// toSQL renders a goqu statement with interpolated values.
func toSQL(stmt interface{ ToSQL() (string, []any, error) }) (string, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
