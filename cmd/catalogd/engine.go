package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/config"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/migrations"
)

const (
	migrationRetries = 5
	migrationBackoff = 2 * time.Second
)

// openEngine connects the adapter named in cfg and applies the schema when enabled.
// The returned func closes every connection pool that was opened.
func openEngine(ctx context.Context, cfg config.Config, options ...postgresengine.Option) (*postgresengine.Engine, func(), error) {
	switch cfg.Database.Adapter {
	case config.AdapterPGX:
		return openPGXEngine(ctx, cfg, options...)
	case config.AdapterSQL:
		return openSQLDBEngine(ctx, cfg, options...)
	case config.AdapterSQLX:
		return openSQLXEngine(ctx, cfg, options...)
	case config.AdapterMySQL:
		return openMySQLEngine(ctx, cfg, options...)
	default:
		return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownAdapter, cfg.Database.Adapter)
	}
}

func newPGXPool(ctx context.Context, dsn string, pool config.Pool) (*pgxpool.Pool, error) {
	poolConfig, err := config.PGXPoolConfig(dsn, pool)
	if err != nil {
		return nil, err
	}

	p, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return p, nil
}

func openPGXEngine(ctx context.Context, cfg config.Config, options ...postgresengine.Option) (*postgresengine.Engine, func(), error) {
	log.Printf("initializing pgx adapter with connection pools")

	primary, err := newPGXPool(ctx, cfg.Database.DSN, cfg.Pool)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, migrations.PGXExecer(primary), postgresengine.DialectPostgres, migrationRetries, migrationBackoff); err != nil {
			primary.Close()
			return nil, nil, err
		}
	}

	if cfg.Database.ReplicaDSN == "" {
		engine, err := postgresengine.NewEngineFromPGXPool(primary, options...)
		if err != nil {
			primary.Close()
			return nil, nil, err
		}

		return engine, primary.Close, nil
	}

	replica, err := newPGXPool(ctx, cfg.Database.ReplicaDSN, cfg.Pool)
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	closeAll := func() {
		primary.Close()
		replica.Close()
	}

	engine, err := postgresengine.NewEngineFromPGXPoolWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return engine, closeAll, nil
}

func openSQLDBEngine(ctx context.Context, cfg config.Config, options ...postgresengine.Option) (*postgresengine.Engine, func(), error) {
	log.Printf("initializing database/sql adapter with the lib/pq driver")

	db, err := config.PostgresSQLDB(ctx, cfg.Database.DSN, cfg.Pool)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() { _ = db.Close() }

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, migrations.SQLExecer(db), postgresengine.DialectPostgres, migrationRetries, migrationBackoff); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	engine, err := postgresengine.NewEngineFromSQLDB(db, options...)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return engine, closeDB, nil
}

func openSQLXEngine(ctx context.Context, cfg config.Config, options ...postgresengine.Option) (*postgresengine.Engine, func(), error) {
	log.Printf("initializing sqlx adapter with the lib/pq driver")

	db, err := config.PostgresSQLX(ctx, cfg.Database.DSN, cfg.Pool)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() { _ = db.Close() }

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, migrations.SQLExecer(db.DB), postgresengine.DialectPostgres, migrationRetries, migrationBackoff); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	engine, err := postgresengine.NewEngineFromSQLX(db, options...)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return engine, closeDB, nil
}

func openMySQLEngine(ctx context.Context, cfg config.Config, options ...postgresengine.Option) (*postgresengine.Engine, func(), error) {
	log.Printf("initializing database/sql adapter with the go-sql-driver/mysql driver")

	db, err := config.MySQLSQLDB(ctx, cfg.Database.MySQLDSN, cfg.Pool)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() { _ = db.Close() }

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, migrations.SQLExecer(db), postgresengine.DialectMySQL, migrationRetries, migrationBackoff); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	engine, err := postgresengine.NewEngineFromSQLDB(db, append(options, postgresengine.WithDialect(postgresengine.DialectMySQL))...)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return engine, closeDB, nil
}
