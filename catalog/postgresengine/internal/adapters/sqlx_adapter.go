package adapters

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query acquires a connection and executes the query.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, acquireFailed(err)
	}

	rows, err := conn.QueryxContext(ctx, query)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &sqlxRows{rows: rows, conn: conn}, nil
}

// Exec acquires a connection and executes the statement.
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	conn, err := s.db.Connx(ctx)
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

// sqlxRows wraps sqlx.Rows, using MapScan to read rows.
type sqlxRows struct {
	rows *sqlx.Rows
	conn *sqlx.Conn
}

// Next advances to the next row.
func (s *sqlxRows) Next() bool {
	return s.rows.Next()
}

// ScanRow scans the current row into a map.
func (s *sqlxRows) ScanRow() (map[string]any, error) {
	row := make(map[string]any)
	if err := s.rows.MapScan(row); err != nil {
		return nil, err
	}

	return row, nil
}

// Err returns the error, if any, that was encountered during iteration.
func (s *sqlxRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator and releases the connection.
func (s *sqlxRows) Close() error {
	return errors.Join(s.rows.Close(), s.conn.Close())
}
