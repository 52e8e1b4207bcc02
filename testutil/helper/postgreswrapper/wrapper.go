// Package postgreswrapper opens a Catalog on a real PostgreSQL database for integration tests.
// ADAPTER_TYPE selects the engine adapter: pgx (default), sql or sqlx.
package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/migrations"
)

const (
	typePGX  = "pgx"
	typeSQL  = "sql"
	typeSQLX = "sqlx"
)

var cleanUpStatement = `TRUNCATE TABLE users, orderpenalties, orderdiscounts, orders,
	penalties, discounts, customers, books RESTART IDENTITY CASCADE`

// Wrapper abstracts over the engine adapters.
type Wrapper interface {
	Catalog() *postgresengine.Catalog
	Exec(ctx context.Context, statement string, args ...any) error
	Close()
}

// PGXPoolWrapper wraps a pgxpool-backed Catalog.
type PGXPoolWrapper struct {
	pool    *pgxpool.Pool
	catalog *postgresengine.Catalog
}

func (w *PGXPoolWrapper) Catalog() *postgresengine.Catalog {
	return w.catalog
}

func (w *PGXPoolWrapper) Exec(ctx context.Context, statement string, args ...any) error {
	_, err := w.pool.Exec(ctx, statement, args...)
	return err
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps a database/sql-backed Catalog.
type SQLDBWrapper struct {
	db      *sql.DB
	catalog *postgresengine.Catalog
}

func (w *SQLDBWrapper) Catalog() *postgresengine.Catalog {
	return w.catalog
}

func (w *SQLDBWrapper) Exec(ctx context.Context, statement string, args ...any) error {
	_, err := w.db.ExecContext(ctx, statement, args...)
	return err
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps an sqlx-backed Catalog.
type SQLXWrapper struct {
	db      *sqlx.DB
	catalog *postgresengine.Catalog
}

func (w *SQLXWrapper) Catalog() *postgresengine.Catalog {
	return w.catalog
}

func (w *SQLXWrapper) Exec(ctx context.Context, statement string, args ...any) error {
	_, err := w.db.ExecContext(ctx, statement, args...)
	return err
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig connects the adapter chosen by ADAPTER_TYPE to the test database,
// applies the schema and empties every table.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	t.Helper()

	ctx := context.Background()
	dsn := config.PostgresDSN()
	pool := config.Default().Pool

	var wrapper Wrapper

	switch adapterType := strings.ToLower(os.Getenv("ADAPTER_TYPE")); adapterType {
	case typePGX, "":
		poolConfig, err := config.PGXPoolConfig(dsn, pool)
		require.NoError(t, err, "error building pgx pool config in test setup")

		connPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		require.NoError(t, err, "error connecting to DB pool in test setup")
		require.NoError(t, migrations.Apply(ctx, migrations.PGXExecer(connPool), postgresengine.DialectPostgres, 3, time.Second))

		engine, err := postgresengine.NewEngineFromPGXPool(connPool, options...)
		require.NoError(t, err)

		wrapper = &PGXPoolWrapper{pool: connPool, catalog: newCatalog(t, engine)}

	case typeSQL:
		db, err := config.PostgresSQLDB(ctx, dsn, pool)
		require.NoError(t, err, "error connecting to DB in test setup")
		require.NoError(t, migrations.Apply(ctx, migrations.SQLExecer(db), postgresengine.DialectPostgres, 3, time.Second))

		engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
		require.NoError(t, err)

		wrapper = &SQLDBWrapper{db: db, catalog: newCatalog(t, engine)}

	case typeSQLX:
		db, err := config.PostgresSQLX(ctx, dsn, pool)
		require.NoError(t, err, "error connecting to DB in test setup")
		require.NoError(t, migrations.Apply(ctx, migrations.SQLExecer(db.DB), postgresengine.DialectPostgres, 3, time.Second))

		engine, err := postgresengine.NewEngineFromSQLX(db, options...)
		require.NoError(t, err)

		wrapper = &SQLXWrapper{db: db, catalog: newCatalog(t, engine)}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterType))
	}

	CleanUp(t, wrapper)

	return wrapper
}

func newCatalog(t testing.TB, engine *postgresengine.Engine) *postgresengine.Catalog {
	c, err := postgresengine.NewCatalog(engine)
	require.NoError(t, err)

	return c
}

// CleanUp empties every catalogue table and resets the generated keys.
func CleanUp(t testing.TB, wrapper Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.Exec(context.Background(), cleanUpStatement), "error cleaning up the catalogue tables")
}

// GivenUser inserts a user directly, since the catalogue has no user mutation.
func GivenUser(t testing.TB, wrapper Wrapper, username, password, role string, customerID *int64) {
	t.Helper()

	err := wrapper.Exec(context.Background(),
		`INSERT INTO users (username, password, role, customer_id) VALUES ($1, $2, $3, $4)`,
		username, password, role, customerID)
	require.NoError(t, err, "error in arranging test data")
}
