package store

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/roach88/exprext/internal/eval"
	"github.com/roach88/exprext/internal/ir"
)

// Result is the materialized output of a query. Values are as returned by
// the driver; use Coerce to bring them to a known element type.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Query runs a statement and reads every row.
func (s *Store) Query(ctx context.Context, stmt string, params ...any) (*Result, error) {
	s.logger.Debug("query", "sql", stmt, "params", len(params))
	rows, err := s.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", stmt, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	result := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(result.Rows), err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// QueryScalar runs a statement that yields exactly one row and one column
// and coerces the value to d.
func (s *Store) QueryScalar(ctx context.Context, d ir.DataType, stmt string, params ...any) (any, error) {
	result, err := s.Query(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	if len(result.Columns) != 1 || len(result.Rows) != 1 {
		return nil, fmt.Errorf("expected a single value, got %d rows of %d columns", len(result.Rows), len(result.Columns))
	}
	return Coerce(result.Rows[0][0], d)
}

// Coerce converts a driver value to the canonical Go representation of d:
// int64 for integers, float64 for floats, bool, and string for text and
// temporal types (dates as 2006-01-02, timestamps as 2006-01-02 15:04:05).
func Coerce(v any, d ir.DataType) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		if d == ir.Binary {
			return val, nil
		}
		v = string(val)
	case time.Time:
		if d == ir.Date {
			return val.Format(time.DateOnly), nil
		}
		return val.Format(time.DateTime), nil
	case *big.Int:
		// duckdb sums integers into HUGEINT
		if !val.IsInt64() {
			return nil, fmt.Errorf("%s overflows int64", val)
		}
		v = val.Int64()
	case int64:
		// sqlite has no boolean storage class
		if d == ir.Boolean {
			return val != 0, nil
		}
	}
	return eval.Normalize(v, d)
}
