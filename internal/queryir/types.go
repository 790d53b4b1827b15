package queryir

import (
	"fmt"

	"github.com/roach88/exprext/internal/expr"
)

// Query represents an abstract statement.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode() // Marker method - seals interface to this package
}

// Select reads one table.
//
// Semantics:
//
//	SELECT <projections> FROM <from> [WHERE <filter>] [GROUP BY <keys>] [LIMIT n OFFSET m]
//
// Projection output names come from expr.Expr.Name.
type Select struct {
	From        *expr.Table
	Projections []*expr.Expr
	Filter      *expr.Expr   // nil = no filter
	GroupBy     []*expr.Expr // empty = no grouping
	Limit       *Limit       // nil = unbounded
}

func (*Select) queryNode() {}

// Limit bounds the number of returned rows.
type Limit struct {
	Count  int64
	Offset int64
}

// FromExpr wraps a single expression in the select that evaluates it: the
// expression is the only projection and its one table is the source.
func FromExpr(e *expr.Expr) (*Select, error) {
	if e == nil {
		return nil, fmt.Errorf("cannot build query from nil expression")
	}
	tables := expr.Tables(e)
	switch len(tables) {
	case 0:
		return nil, fmt.Errorf("expression %s references no table", e)
	case 1:
		return &Select{From: tables[0], Projections: []*expr.Expr{e}}, nil
	default:
		return nil, fmt.Errorf("expression %s references %d tables; one is required", e, len(tables))
	}
}
