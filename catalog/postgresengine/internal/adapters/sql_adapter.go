package adapters

import (
	"context"
	"database/sql"
)

// SQLAdapter implements DBAdapter for sql.DB.
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter.
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

// Query acquires a connection and executes the query.
func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, acquireFailed(err)
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &stdRows{rows: rows, release: conn.Close}, nil
}

// Exec acquires a connection and executes the statement.
func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, acquireFailed(err)
	}
	defer func() { _ = conn.Close() }()

	result, err := conn.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}
