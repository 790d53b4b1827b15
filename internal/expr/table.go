package expr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/exprext/internal/ir"
)

// Table is a named source of columns.
type Table struct {
	name   string
	schema ir.Schema
}

// NewTable creates a table. The name must be non-empty.
func NewTable(name string, schema ir.Schema) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is required")
	}
	return &Table{name: name, schema: schema}, nil
}

func (t *Table) Name() string      { return t.name }
func (t *Table) Schema() ir.Schema { return t.schema }

// Col returns a column reference expression.
func (t *Table) Col(name string) (*Expr, error) {
	f, ok := t.schema.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("table %s has no column %q", t.name, name)
	}
	return New(&Column{table: t, name: f.Name, dtype: f.DType}), nil
}

// MustCol is Col that panics on error. Intended for fixtures and examples.
func (t *Table) MustCol(name string) *Expr {
	e, err := t.Col(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Lit creates a literal with the natural type of v: int64 for integers,
// boolean, string, or null.
func Lit(v any) (*Expr, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return nil, err
	}
	d, err := ir.TypeOf(val)
	if err != nil {
		return nil, err
	}
	return New(&Literal{value: val, dtype: d}), nil
}

// MustLit is Lit that panics on error.
func MustLit(v any) *Expr {
	e, err := Lit(v)
	if err != nil {
		panic(err)
	}
	return e
}

// LitAs creates a literal of an explicit type. Integers must fit the target
// width; strings may be typed as date or timestamp; null fits any type.
func LitAs(v any, d ir.DataType) (*Expr, error) {
	val, err := ir.FromGo(v)
	if err != nil {
		return nil, err
	}
	if err := checkLiteral(val, d); err != nil {
		return nil, err
	}
	return New(&Literal{value: val, dtype: d}), nil
}

func checkLiteral(v ir.IRValue, d ir.DataType) error {
	switch val := v.(type) {
	case ir.IRNull:
		return nil
	case ir.IRBool:
		if d == ir.Boolean {
			return nil
		}
	case ir.IRString:
		if d == ir.String || d.IsTemporal() || d == ir.Binary {
			return nil
		}
	case ir.IRInt:
		if d.IsInteger() {
			if lo, hi := intRange(d); int64(val) < lo || int64(val) > hi {
				return fmt.Errorf("literal %d overflows %s", int64(val), d)
			}
			return nil
		}
	}
	return fmt.Errorf("literal %s cannot have type %s", literalText(v), d)
}

func intRange(d ir.DataType) (int64, int64) {
	switch d {
	case ir.Int8:
		return math.MinInt8, math.MaxInt8
	case ir.Int16:
		return math.MinInt16, math.MaxInt16
	case ir.Int32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func literalText(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRNull:
		return "null"
	case ir.IRString:
		return strconv.Quote(string(val))
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10)
	case ir.IRBool:
		return strconv.FormatBool(bool(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}
