// Package adapters provide database adapter implementations for the catalogue engine.
//
// Three libraries are supported behind the common DBAdapter interface: pgxpool.Pool,
// sql.DB (lib/pq for PostgreSQL or go-sql-driver/mysql for MySQL) and sqlx.DB.
// Every adapter acquires a dedicated connection per statement and releases it when the
// rows are closed or the statement has executed.
package adapters
