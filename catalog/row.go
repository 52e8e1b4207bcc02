package catalog

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = time.DateOnly

// Row is a raw result row keyed by column name, as handed out by the database adapters.
// Drivers disagree on the Go types they produce (pgx yields int32/int64/string, lib/pq and
// the MySQL driver yield []byte for numerics), so values are decoded through the typed helpers.
type Row map[string]any

func (r Row) value(column string) (any, error) {
	v, ok := r[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	return v, nil
}

func malformed(column string, v any) error {
	return fmt.Errorf("%w: %q holds %T", ErrMalformedColumn, column, v)
}

// Int64 decodes a required integer column.
func (r Row) Int64(column string) (int64, error) {
	v, err := r.value(column)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case []byte:
		return parseInt(column, string(n))
	case string:
		return parseInt(column, n)
	default:
		return 0, malformed(column, v)
	}
}

// OptionalInt64 decodes a nullable integer column; NULL yields nil.
func (r Row) OptionalInt64(column string) (*int64, error) {
	v, err := r.value(column)
	if err != nil {
		return nil, err
	}

	if v == nil {
		return nil, nil
	}

	n, err := r.Int64(column)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func parseInt(column, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrMalformedColumn, column, err)
	}

	return n, nil
}

// String decodes a text column; NULL yields the empty string.
func (r Row) String(column string) (string, error) {
	v, err := r.value(column)
	if err != nil {
		return "", err
	}

	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", malformed(column, v)
	}
}

// Decimal decodes a required fixed-point column.
func (r Row) Decimal(column string) (decimal.Decimal, error) {
	v, err := r.value(column)
	if err != nil {
		return decimal.Zero, err
	}

	switch d := v.(type) {
	case decimal.Decimal:
		return d, nil
	case string:
		return parseDecimal(column, d)
	case []byte:
		return parseDecimal(column, string(d))
	case int64:
		return decimal.NewFromInt(d), nil
	case int32:
		return decimal.NewFromInt32(d), nil
	case float64:
		return decimal.NewFromFloat(d), nil
	default:
		return decimal.Zero, malformed(column, v)
	}
}

func parseDecimal(column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %w", ErrMalformedColumn, column, err)
	}

	return d, nil
}

// Time decodes a nullable date or timestamp column; NULL yields the zero time, which means absent.
func (r Row) Time(column string) (time.Time, error) {
	v, err := r.value(column)
	if err != nil {
		return time.Time{}, err
	}

	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case string:
		return parseTime(column, t)
	case []byte:
		return parseTime(column, string(t))
	default:
		return time.Time{}, malformed(column, v)
	}
}

func parseTime(column, s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrMalformedColumn, column, err)
	}

	return t, nil
}
