// Package migrations creates the catalogue schema on PostgreSQL and MySQL.
//
// Every statement is idempotent (CREATE TABLE IF NOT EXISTS), so Apply can run on each start.
package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
)

// ErrUnsupportedDialect is returned for a dialect without a schema.
var ErrUnsupportedDialect = errors.New("no schema for dialect")

// Execer runs one DDL statement.
type Execer func(ctx context.Context, statement string) error

// SQLExecer runs statements on a database/sql handle.
func SQLExecer(db *sql.DB) Execer {
	return func(ctx context.Context, statement string) error {
		_, err := db.ExecContext(ctx, statement)
		return err
	}
}

// PGXExecer runs statements on a pgx pool.
func PGXExecer(pool *pgxpool.Pool) Execer {
	return func(ctx context.Context, statement string) error {
		_, err := pool.Exec(ctx, statement)
		return err
	}
}

// Statements returns the schema of dialect in dependency order.
func Statements(dialect string) ([]string, error) {
	switch dialect {
	case postgresengine.DialectPostgres:
		return postgresSchema, nil
	case postgresengine.DialectMySQL:
		return mysqlSchema, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedDialect, "dialect %q", dialect)
	}
}

// Apply runs the schema of dialect. A failing statement is retried up to retries times,
// waiting backoff between attempts, which covers a database that is still starting.
func Apply(ctx context.Context, exec Execer, dialect string, retries int, backoff time.Duration) error {
	statements, err := Statements(dialect)
	if err != nil {
		return err
	}

	for i, statement := range statements {
		if err := applyWithRetry(ctx, exec, statement, retries, backoff); err != nil {
			return errors.Wrapf(err, "migration %d of %d failed", i+1, len(statements))
		}
	}

	return nil
}

func applyWithRetry(ctx context.Context, exec Execer, statement string, retries int, backoff time.Duration) error {
	err := exec(ctx, statement)

	for attempt := 0; err != nil && attempt < retries; attempt++ {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), err.Error())
		case <-time.After(backoff):
		}

		err = exec(ctx, statement)
	}

	return err
}
