package eval

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
)

// ErrUnsupportedKind is wrapped when an operation has no evaluation rule,
// e.g. operations installed from declarations.
var ErrUnsupportedKind = errors.New("no evaluation rule")

// Result is the value of an expression: a single value for scalars, one
// value per row for columns.
type Result struct {
	Type   ir.ValueType
	Scalar any
	Column []any
}

// Value returns Scalar or Column depending on the shape.
func (r Result) Value() any {
	if r.Type.IsScalar() {
		return r.Scalar
	}
	return r.Column
}

// Eval evaluates e over the rows of f. Every column in e must belong to the
// frame's table.
func Eval(e *expr.Expr, f *Frame) (Result, error) {
	ev := &evaluator{frame: f, memo: map[expr.Node]value{}}
	v, err := ev.eval(e)
	if err != nil {
		return Result{}, err
	}
	t := e.Type()
	if t.IsScalar() {
		return Result{Type: t, Scalar: v.at(0)}, nil
	}
	col := make([]any, f.Len())
	for i := range col {
		col[i] = v.at(i)
	}
	return Result{Type: t, Column: col}, nil
}

// value is either a broadcastable scalar or a column.
type value struct {
	scalar bool
	s      any
	col    []any
}

func scalarValue(v any) value { return value{scalar: true, s: v} }

func (v value) at(i int) any {
	if v.scalar {
		return v.s
	}
	return v.col[i]
}

type evaluator struct {
	frame *Frame
	memo  map[expr.Node]value
}

func (ev *evaluator) eval(e *expr.Expr) (value, error) {
	node := e.Op()
	if v, ok := ev.memo[node]; ok {
		return v, nil
	}
	v, err := ev.evalNode(e)
	if err != nil {
		return value{}, err
	}
	ev.memo[node] = v
	return v, nil
}

func (ev *evaluator) evalNode(e *expr.Expr) (value, error) {
	switch n := e.Op().(type) {
	case *expr.Column:
		if n.Table().Name() != ev.frame.table.Name() {
			return value{}, fmt.Errorf("column %s.%s does not belong to table %s",
				n.Table().Name(), n.Name(), ev.frame.table.Name())
		}
		col, err := ev.frame.column(n.Name())
		if err != nil {
			return value{}, err
		}
		return value{col: col}, nil
	case *expr.Literal:
		return scalarValue(ir.ToGo(n.Value())), nil
	case *expr.Op:
		return ev.evalOp(e, n)
	default:
		return value{}, fmt.Errorf("unknown node type %T", n)
	}
}

func (ev *evaluator) evalOp(e *expr.Expr, op *expr.Op) (value, error) {
	switch kind := op.Kind(); kind {
	case ops.KindBitwiseAnd:
		return ev.reduce(op, foldInts(func(a, b int64) int64 { return a & b }))
	case ops.KindBitwiseOr:
		return ev.reduce(op, foldInts(func(a, b int64) int64 { return a | b }))
	case ops.KindBitwiseXor:
		return ev.reduce(op, foldInts(func(a, b int64) int64 { return a ^ b }))
	case ops.KindSum:
		return ev.reduce(op, sum(e.Type().DType))
	case ops.KindMax:
		return ev.reduce(op, extreme(1))
	case ops.KindMin:
		return ev.reduce(op, extreme(-1))
	case ops.KindCount:
		return ev.reduce(op, func(vals []any) (any, error) { return int64(len(vals)), nil })

	case ops.KindEquals:
		return ev.compare(op, func(c int) bool { return c == 0 })
	case ops.KindNotEquals:
		return ev.compare(op, func(c int) bool { return c != 0 })
	case ops.KindLess:
		return ev.compare(op, func(c int) bool { return c < 0 })
	case ops.KindLessEqual:
		return ev.compare(op, func(c int) bool { return c <= 0 })
	case ops.KindGreater:
		return ev.compare(op, func(c int) bool { return c > 0 })
	case ops.KindGreaterEqual:
		return ev.compare(op, func(c int) bool { return c >= 0 })

	case ops.KindAnd:
		return ev.elementwise(op, []string{"left", "right"}, and3)
	case ops.KindOr:
		return ev.elementwise(op, []string{"left", "right"}, or3)
	case ops.KindNot:
		return ev.elementwise(op, []string{"arg"}, func(a []any) (any, error) {
			if a[0] == nil {
				return nil, nil
			}
			return !a[0].(bool), nil
		})

	case ops.KindLowercase:
		return ev.elementwise(op, []string{"arg"}, stringFn(strings.ToLower))
	case ops.KindUppercase:
		return ev.elementwise(op, []string{"arg"}, stringFn(strings.ToUpper))
	case ops.KindStringLength:
		return ev.elementwise(op, []string{"arg"}, func(a []any) (any, error) {
			if a[0] == nil {
				return nil, nil
			}
			return int64(utf8.RuneCountInString(a[0].(string))), nil
		})
	case ops.KindSubstring:
		return ev.elementwise(op, []string{"arg", "start", "length"}, substring)
	case ops.KindStrRight:
		return ev.elementwise(op, []string{"arg", "nchars"}, right)

	default:
		return value{}, fmt.Errorf("%s: %w", kind, ErrUnsupportedKind)
	}
}

// reduce folds the non-null values of slot "arg" on rows where the optional
// "where" slot is true.
func (ev *evaluator) reduce(op *expr.Op, fold func([]any) (any, error)) (value, error) {
	arg, err := ev.eval(op.Arg("arg"))
	if err != nil {
		return value{}, err
	}
	mask := scalarValue(true)
	if w := op.Arg("where"); w != nil {
		if mask, err = ev.eval(w); err != nil {
			return value{}, err
		}
	}
	var vals []any
	for i := 0; i < ev.frame.Len(); i++ {
		if keep, _ := mask.at(i).(bool); !keep {
			continue
		}
		if v := arg.at(i); v != nil {
			vals = append(vals, v)
		}
	}
	out, err := fold(vals)
	if err != nil {
		return value{}, fmt.Errorf("%s: %w", op.Kind(), err)
	}
	return scalarValue(out), nil
}

// elementwise applies fn across slots, broadcasting scalars. Absent
// optional slots are passed as nil.
func (ev *evaluator) elementwise(op *expr.Op, slots []string, fn func([]any) (any, error)) (value, error) {
	args := make([]value, len(slots))
	present := make([]bool, len(slots))
	isScalar := true
	for i, s := range slots {
		a := op.Arg(s)
		if a == nil {
			args[i] = scalarValue(nil)
			continue
		}
		v, err := ev.eval(a)
		if err != nil {
			return value{}, err
		}
		args[i], present[i] = v, true
		isScalar = isScalar && v.scalar
	}

	apply := func(row int) (any, error) {
		vals := make([]any, len(args))
		for i, a := range args {
			vals[i] = a.at(row)
		}
		if len(vals) > 1 && !present[len(vals)-1] {
			vals[len(vals)-1] = absent{}
		}
		return fn(vals)
	}

	if isScalar {
		v, err := apply(0)
		if err != nil {
			return value{}, fmt.Errorf("%s: %w", op.Kind(), err)
		}
		return scalarValue(v), nil
	}
	col := make([]any, ev.frame.Len())
	for i := range col {
		v, err := apply(i)
		if err != nil {
			return value{}, fmt.Errorf("%s: %w", op.Kind(), err)
		}
		col[i] = v
	}
	return value{col: col}, nil
}

// absent marks a trailing optional slot that was not supplied, as distinct
// from a supplied NULL.
type absent struct{}

func (ev *evaluator) compare(op *expr.Op, test func(int) bool) (value, error) {
	return ev.elementwise(op, []string{"left", "right"}, func(a []any) (any, error) {
		if a[0] == nil || a[1] == nil {
			return nil, nil
		}
		c, err := Compare(a[0], a[1])
		if err != nil {
			return nil, err
		}
		return test(c), nil
	})
}
