package ops

import (
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// Reduction kinds.
const (
	KindBitwiseAnd expr.Kind = "BitwiseAnd"
	KindBitwiseOr  expr.Kind = "BitwiseOr"
	KindBitwiseXor expr.Kind = "BitwiseXor"
	KindSum        expr.Kind = "Sum"
	KindMax        expr.Kind = "Max"
	KindMin        expr.Kind = "Min"
	KindCount      expr.Kind = "Count"
)

// reduction declares a reduction over slot "arg" with an optional boolean
// "where" filter.
func reduction(kind expr.Kind, arg expr.Rule, out expr.OutputRule) *expr.Definition {
	return &expr.Definition{
		Kind: kind,
		Slots: []expr.Slot{
			{Name: "arg", Rule: arg},
			{Name: "where", Rule: expr.BooleanValue, Optional: true},
		},
		Output:    out,
		Reduction: true,
	}
}

var (
	// BitwiseAndDef folds an integer column with bitwise AND. The result
	// has the column's element type, as a scalar.
	BitwiseAndDef = reduction(KindBitwiseAnd, expr.IntegerColumn, expr.ScalarLike("arg"))
	BitwiseOrDef  = reduction(KindBitwiseOr, expr.IntegerColumn, expr.ScalarLike("arg"))
	BitwiseXorDef = reduction(KindBitwiseXor, expr.IntegerColumn, expr.ScalarLike("arg"))

	SumDef   = reduction(KindSum, expr.NumericColumn, expr.WidenedScalar("arg"))
	MaxDef   = reduction(KindMax, expr.AnyColumn, expr.ScalarLike("arg"))
	MinDef   = reduction(KindMin, expr.AnyColumn, expr.ScalarLike("arg"))
	CountDef = reduction(KindCount, expr.AnyColumn, expr.ScalarOfType(ir.Int64))
)

// ReduceOption configures a reduction call.
type ReduceOption func(expr.Kwargs)

// Where restricts the rows contributing to a reduction.
func Where(pred *expr.Expr) ReduceOption {
	return func(kw expr.Kwargs) {
		kw["where"] = pred
	}
}

func reduce(method string, arg *expr.Expr, opts []ReduceOption) (*expr.Expr, error) {
	kw := expr.Kwargs{}
	for _, opt := range opts {
		opt(kw)
	}
	return Methods().Call(arg, method, kw)
}

// BitwiseAnd builds the bitwise AND of an integer column, optionally
// filtered with Where.
func BitwiseAnd(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("bitwise_and", arg, opts)
}

func BitwiseOr(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("bitwise_or", arg, opts)
}

func BitwiseXor(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("bitwise_xor", arg, opts)
}

func Sum(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("sum", arg, opts)
}

func Max(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("max", arg, opts)
}

func Min(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("min", arg, opts)
}

func Count(arg *expr.Expr, opts ...ReduceOption) (*expr.Expr, error) {
	return reduce("count", arg, opts)
}
