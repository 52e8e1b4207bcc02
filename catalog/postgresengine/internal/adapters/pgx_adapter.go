package adapters

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
)

// PGXAdapter implements DBAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool        *pgxpool.Pool
	replicaPool *pgxpool.Pool // optional replica for eventually consistent reads
}

// NewPGXAdapter creates a new PGX adapter with a primary pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// NewPGXAdapterWithReplica creates a new PGX adapter with a primary pool and a replica pool.
func NewPGXAdapterWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool, replicaPool: replica}
}

// Query acquires a connection and executes the query. The replica pool is used only when the
// context asks for eventual consistency.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	pool := p.pool
	if p.replicaPool != nil && catalog.GetConsistencyLevel(ctx) == catalog.EventualConsistency {
		pool = p.replicaPool
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, acquireFailed(err)
	}

	rows, err := conn.Query(ctx, query)
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &pgxRows{rows: rows, conn: conn}, nil
}

// Exec acquires a connection from the primary pool and executes the statement.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, acquireFailed(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
	conn *pgxpool.Conn
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// ScanRow reads the decoded values of the current row.
func (p *pgxRows) ScanRow() (map[string]any, error) {
	values, err := p.rows.Values()
	if err != nil {
		return nil, err
	}

	fields := p.rows.FieldDescriptions()
	row := make(map[string]any, len(fields))
	for i, field := range fields {
		row[field.Name] = normalizePGXValue(values[i])
	}

	return row, nil
}

// Err returns the error, if any, that was encountered during iteration.
func (p *pgxRows) Err() error {
	return p.rows.Err()
}

// Close closes the rows iterator and releases the connection.
func (p *pgxRows) Close() error {
	p.rows.Close()
	p.conn.Release()

	return nil
}

// normalizePGXValue turns pgx numerics into exact decimals; NaN and infinities are passed
// through unchanged so that row decoding rejects them.
func normalizePGXValue(v any) any {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v
	}

	if !n.Valid {
		return nil
	}

	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return n
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}

// LastInsertId is not reported by pgx.
func (p *pgxResult) LastInsertId() (int64, error) {
	return 0, ErrLastInsertIDUnsupported
}
