package ops

import (
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// Comparison and logical kinds.
const (
	KindEquals       expr.Kind = "Equals"
	KindNotEquals    expr.Kind = "NotEquals"
	KindLess         expr.Kind = "Less"
	KindLessEqual    expr.Kind = "LessEqual"
	KindGreater      expr.Kind = "Greater"
	KindGreaterEqual expr.Kind = "GreaterEqual"
	KindAnd          expr.Kind = "And"
	KindOr           expr.Kind = "Or"
	KindNot          expr.Kind = "Not"
)

func comparison(kind expr.Kind) *expr.Definition {
	return &expr.Definition{
		Kind: kind,
		Slots: []expr.Slot{
			{Name: "left", Rule: expr.AnyValue},
			{Name: "right", Rule: expr.AnyValue},
		},
		Output: comparableRule(kind),
	}
}

// comparableRule yields an elementwise boolean after checking that both sides
// can be compared: both numeric, the same type, or either side null.
func comparableRule(kind expr.Kind) expr.OutputRule {
	out := expr.ElementwiseOf(ir.Boolean, "left", "right")
	return func(args expr.Args) (ir.ValueType, error) {
		l, r := args["left"].Type(), args["right"].Type()
		ok := l.DType == r.DType ||
			(l.DType.IsNumeric() && r.DType.IsNumeric()) ||
			l.DType == ir.Null || r.DType == ir.Null
		if !ok {
			return ir.ValueType{}, &expr.ValidationError{
				Op:   kind,
				Arg:  "right",
				Rule: "comparable with " + l.DType.String(),
				Got:  r.String(),
			}
		}
		return out(args)
	}
}

func logical(kind expr.Kind) *expr.Definition {
	return &expr.Definition{
		Kind: kind,
		Slots: []expr.Slot{
			{Name: "left", Rule: expr.BooleanValue},
			{Name: "right", Rule: expr.BooleanValue},
		},
		Output: expr.ElementwiseOf(ir.Boolean, "left", "right"),
	}
}

var (
	EqualsDef       = comparison(KindEquals)
	NotEqualsDef    = comparison(KindNotEquals)
	LessDef         = comparison(KindLess)
	LessEqualDef    = comparison(KindLessEqual)
	GreaterDef      = comparison(KindGreater)
	GreaterEqualDef = comparison(KindGreaterEqual)

	AndDef = logical(KindAnd)
	OrDef  = logical(KindOr)
	NotDef = &expr.Definition{
		Kind:   KindNot,
		Slots:  []expr.Slot{{Name: "arg", Rule: expr.BooleanValue}},
		Output: expr.Like("arg"),
	}
)

func binary(method string, left, right *expr.Expr) (*expr.Expr, error) {
	return Methods().Call(left, method, expr.Kwargs{"right": right})
}

func Eq(left, right *expr.Expr) (*expr.Expr, error) { return binary("eq", left, right) }
func Ne(left, right *expr.Expr) (*expr.Expr, error) { return binary("ne", left, right) }
func Lt(left, right *expr.Expr) (*expr.Expr, error) { return binary("lt", left, right) }
func Le(left, right *expr.Expr) (*expr.Expr, error) { return binary("le", left, right) }
func Gt(left, right *expr.Expr) (*expr.Expr, error) { return binary("gt", left, right) }
func Ge(left, right *expr.Expr) (*expr.Expr, error) { return binary("ge", left, right) }

func And(left, right *expr.Expr) (*expr.Expr, error) { return binary("and", left, right) }
func Or(left, right *expr.Expr) (*expr.Expr, error)  { return binary("or", left, right) }

func Not(arg *expr.Expr) (*expr.Expr, error) {
	return Methods().Call(arg, "not", nil)
}
