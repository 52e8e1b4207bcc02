package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGXPoolConfig creates a pgxpool.Config for dsn with the pool limits applied.
func PGXPoolConfig(dsn string, pool Pool) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	dbConfig.MaxConns = pool.MaxConns
	dbConfig.MinConns = pool.MinConns
	dbConfig.MaxConnLifetime = pool.MaxConnLifetime
	dbConfig.MaxConnIdleTime = pool.MaxConnIdleTime
	dbConfig.ConnConfig.ConnectTimeout = pool.ConnectTimeout

	return dbConfig, nil
}
