package adapters

import (
	"database/sql"
	"errors"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// ErrLastInsertIDUnsupported is returned by drivers that only report generated keys through RETURNING.
var ErrLastInsertIDUnsupported = errors.New("driver does not report last insert id, use RETURNING")

func acquireFailed(err error) error {
	return errors.Join(catalog.ErrConnectionFailed, err)
}

// stdRows wraps standard library sql.Rows to implement DBRows interface.
// release returns the dedicated connection to the pool.
type stdRows struct {
	rows    *sql.Rows
	release func() error
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// ScanRow scans all columns of the current row.
func (s *stdRows) ScanRow() (map[string]any, error) {
	columns, err := s.rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}

	if err := s.rows.Scan(targets...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(columns))
	for i, column := range columns {
		row[column] = values[i]
	}

	return row, nil
}

// Err returns the error, if any, that was encountered during iteration.
func (s *stdRows) Err() error {
	return s.rows.Err()
}

// Close closes the rows iterator and releases the connection.
func (s *stdRows) Close() error {
	return errors.Join(s.rows.Close(), s.release())
}

// stdResult wraps standard library sql.Result to implement DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// LastInsertId returns the key generated by the last insert.
func (s *stdResult) LastInsertId() (int64, error) {
	return s.result.LastInsertId()
}
