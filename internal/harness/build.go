package harness

import (
	"fmt"
	"sort"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// Build turns a scenario node into an expression over tbl, invoking calls
// through methods. Build errors from the expression layer are returned
// unwrapped so callers can classify them.
func Build(n *Node, tbl *expr.Table, methods *expr.MethodTable) (*expr.Expr, error) {
	var (
		e   *expr.Expr
		err error
	)
	switch {
	case n.Col != "":
		e, err = tbl.Col(n.Col)
	case n.IsLiteral():
		e, err = buildLiteral(n)
	case n.Call != "":
		e, err = buildCall(n, tbl, methods)
	default:
		return nil, fmt.Errorf("empty expression node")
	}
	if err != nil {
		return nil, err
	}
	if n.As != "" {
		e = e.As(n.As)
	}
	return e, nil
}

func buildLiteral(n *Node) (*expr.Expr, error) {
	var v any
	if err := n.Lit.Decode(&v); err != nil {
		return nil, fmt.Errorf("literal at line %d: %w", n.Lit.Line, err)
	}
	if n.Type == "" {
		return expr.Lit(v)
	}
	d, err := ir.ParseDataType(n.Type)
	if err != nil {
		return nil, err
	}
	return expr.LitAs(v, d)
}

func buildCall(n *Node, tbl *expr.Table, methods *expr.MethodTable) (*expr.Expr, error) {
	recv, err := Build(n.On, tbl, methods)
	if err != nil {
		return nil, err
	}
	// Sorted so the first failing argument is stable.
	names := make([]string, 0, len(n.Args))
	for name := range n.Args {
		names = append(names, name)
	}
	sort.Strings(names)

	kw := make(expr.Kwargs, len(n.Args))
	for _, name := range names {
		arg, err := Build(n.Args[name], tbl, methods)
		if err != nil {
			return nil, err
		}
		kw[name] = arg
	}
	return methods.Call(recv, n.Call, kw)
}
