// Package config provides the runtime configuration of the catalogue service and factory
// functions for the database handles each engine adapter needs (pgxpool.Pool, sql.DB, sqlx.DB
// for PostgreSQL, and sql.DB for MySQL).
//
// Configuration is layered: built-in defaults, then an optional YAML file, then environment
// variables. Environment variables always win.
package config
