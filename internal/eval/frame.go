package eval

import (
	"fmt"
	"math"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// Frame holds the rows of one table in row order.
type Frame struct {
	table *expr.Table
	rows  [][]any
}

// NewFrame checks rows against the table schema and normalizes them: all
// integer widths become int64, floats become float64.
func NewFrame(table *expr.Table, rows [][]any) (*Frame, error) {
	fields := table.Schema().Fields()
	out := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(fields) {
			return nil, fmt.Errorf("row %d: %d values for %d columns", i, len(row), len(fields))
		}
		norm := make([]any, len(row))
		for j, v := range row {
			n, err := Normalize(v, fields[j].DType)
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i, fields[j].Name, err)
			}
			norm[j] = n
		}
		out[i] = norm
	}
	return &Frame{table: table, rows: out}, nil
}

func (f *Frame) Table() *expr.Table { return f.table }
func (f *Frame) Len() int           { return len(f.rows) }

// Rows returns the normalized rows.
func (f *Frame) Rows() [][]any { return f.rows }

func (f *Frame) column(name string) ([]any, error) {
	pos := f.table.Schema().Position(name)
	if pos < 0 {
		return nil, fmt.Errorf("table %s has no column %q", f.table.Name(), name)
	}
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[pos]
	}
	return out, nil
}

// Normalize converts v to the canonical Go representation of d.
func Normalize(v any, d ir.DataType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch {
	case d.IsInteger():
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%v (%T) is not an integer", v, v)
		}
		return n, nil
	case d.IsFloating():
		f, ok := toFloat64(v)
		if !ok {
			return nil, fmt.Errorf("%v (%T) is not a number", v, v)
		}
		return f, nil
	case d == ir.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%v (%T) is not a boolean", v, v)
		}
		return b, nil
	case d == ir.String, d.IsTemporal():
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%v (%T) is not a string", v, v)
		}
		return s, nil
	}
	return v, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}
