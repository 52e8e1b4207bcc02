package postgresengine

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/catalog/postgresengine/internal/adapters"
)

var errFakeDriver = errors.New("driver: connection reset")

// fakeDB is a scripted DBAdapter. Rules match on substrings of the rendered SQL, the most
// recently registered matching rule wins; unmatched queries return no rows and unmatched
// statements affect one row.
type fakeDB struct {
	mu          sync.Mutex
	queryRules  []queryRule
	execRules   []execRule
	queries     []string
	execs       []string
	beforeQuery func(sqlQuery string)
}

type queryRule struct {
	contains []string
	rows     []catalog.Row
	err      error
}

type execRule struct {
	contains     []string
	rowsAffected int64
	lastInsertID int64
	err          error
}

func newFakeDB() *fakeDB {
	return &fakeDB{}
}

func (f *fakeDB) returnRows(rows []catalog.Row, contains ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryRules = append(f.queryRules, queryRule{contains: contains, rows: rows})
}

func (f *fakeDB) failQuery(err error, contains ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryRules = append(f.queryRules, queryRule{contains: contains, err: err})
}

func (f *fakeDB) execResult(rowsAffected, lastInsertID int64, contains ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execRules = append(f.execRules, execRule{contains: contains, rowsAffected: rowsAffected, lastInsertID: lastInsertID})
}

func (f *fakeDB) failExec(err error, contains ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execRules = append(f.execRules, execRule{contains: contains, err: err})
}

func (f *fakeDB) recordedQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeDB) recordedExecs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.execs...)
}

func (f *fakeDB) countQueries(contains string) int {
	count := 0
	for _, q := range f.recordedQueries() {
		if strings.Contains(q, contains) {
			count++
		}
	}

	return count
}

func containsAll(sqlQuery string, parts []string) bool {
	for _, part := range parts {
		if !strings.Contains(sqlQuery, part) {
			return false
		}
	}

	return true
}

func (f *fakeDB) Query(_ context.Context, sqlQuery string) (adapters.DBRows, error) {
	f.mu.Lock()
	f.queries = append(f.queries, sqlQuery)
	hook := f.beforeQuery
	var matched *queryRule
	for i := len(f.queryRules) - 1; i >= 0; i-- {
		if containsAll(sqlQuery, f.queryRules[i].contains) {
			matched = &f.queryRules[i]
			break
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(sqlQuery)
	}

	if matched == nil {
		return &fakeRows{}, nil
	}

	if matched.err != nil {
		return nil, matched.err
	}

	rows := make([]catalog.Row, 0, len(matched.rows))
	for _, row := range matched.rows {
		rows = append(rows, maps.Clone(row))
	}

	return &fakeRows{rows: rows, cursor: -1}, nil
}

func (f *fakeDB) Exec(_ context.Context, sqlQuery string) (adapters.DBResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.execs = append(f.execs, sqlQuery)
	for i := len(f.execRules) - 1; i >= 0; i-- {
		rule := f.execRules[i]
		if containsAll(sqlQuery, rule.contains) {
			if rule.err != nil {
				return nil, rule.err
			}

			return fakeResult{rowsAffected: rule.rowsAffected, lastInsertID: rule.lastInsertID}, nil
		}
	}

	return fakeResult{rowsAffected: 1}, nil
}

type fakeRows struct {
	rows   []catalog.Row
	cursor int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.rows == nil {
		return false
	}

	r.cursor++

	return r.cursor < len(r.rows)
}

func (r *fakeRows) ScanRow() (map[string]any, error) {
	return r.rows[r.cursor], nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeResult struct {
	rowsAffected int64
	lastInsertID int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

func (r fakeResult) LastInsertId() (int64, error) {
	return r.lastInsertID, nil
}

func newTestEngine(t *testing.T, db *fakeDB, options ...Option) *Engine {
	t.Helper()

	engine, err := newEngine(db, options...)
	assert.NoError(t, err, "error in arranging test engine")

	return engine
}

func newTestCatalog(t *testing.T, db *fakeDB, options ...Option) *Catalog {
	t.Helper()

	c, err := NewCatalog(newTestEngine(t, db, options...))
	assert.NoError(t, err, "error in arranging test catalog")

	return c
}

func slogLogger(handler slog.Handler) *slog.Logger {
	return slog.New(handler)
}
