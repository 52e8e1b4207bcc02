package adapters

import "context"

// DBAdapter defines the database operations needed by the engine.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	// ScanRow reads the current row into a map keyed by column name.
	ScanRow() (map[string]any, error)
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}
