package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

// PostgresSQLDB opens and pings a *sql.DB on the lib/pq driver.
func PostgresSQLDB(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = configure(ctx, db, pool); err != nil {
		return nil, err
	}

	return db, nil
}

// PostgresSQLX opens and pings a *sqlx.DB on the lib/pq driver.
func PostgresSQLX(ctx context.Context, dsn string, pool Pool) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = configure(ctx, db.DB, pool); err != nil {
		return nil, err
	}

	return db, nil
}

// MySQLSQLDB opens and pings a *sql.DB on the MySQL driver. Temporal columns are decoded
// into time.Time and interpreted as UTC.
func MySQLSQLDB(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	normalized, err := NormalizeMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = configure(ctx, db, pool); err != nil {
		return nil, err
	}

	return db, nil
}

// NormalizeMySQLDSN enables time parsing and UTC for a MySQL DSN.
func NormalizeMySQLDSN(dsn string) (string, error) {
	mysqlConfig, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse mysql dsn: %w", err)
	}

	mysqlConfig.ParseTime = true
	mysqlConfig.Loc = time.UTC

	return mysqlConfig.FormatDSN(), nil
}

func configure(ctx context.Context, db *sql.DB, pool Pool) error {
	db.SetMaxOpenConns(int(pool.MaxConns))
	db.SetMaxIdleConns(int(pool.MinConns))
	db.SetConnMaxLifetime(pool.MaxConnLifetime)
	db.SetConnMaxIdleTime(pool.MaxConnIdleTime)

	pingCtx := ctx
	if pool.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, pool.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
