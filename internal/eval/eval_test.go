package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
	"github.com/roach88/exprext/internal/testutil"
)

func must(t *testing.T) func(*expr.Expr, error) *expr.Expr {
	return func(e *expr.Expr, err error) *expr.Expr {
		t.Helper()
		require.NoError(t, err)
		return e
	}
}

func intFrame(t *testing.T, vals ...any) (*expr.Table, *Frame) {
	t.Helper()
	tbl := testutil.IntTable("t")
	rows := make([][]any, len(vals))
	for i, v := range vals {
		rows[i] = []any{v}
	}
	f, err := NewFrame(tbl, rows)
	require.NoError(t, err)
	return tbl, f
}

func TestEval_BitwiseAndWhereTrue(t *testing.T) {
	tbl, f := intFrame(t, 10, 40)
	e := must(t)(ops.BitwiseAnd(tbl.MustCol("x"), ops.Where(expr.MustLit(true))))

	r, err := Eval(e, f)
	require.NoError(t, err)
	assert.Equal(t, int64(8), r.Scalar)
	assert.Equal(t, ir.ScalarOf(ir.Int64), r.Type)
}

func TestEval_BitwiseReductions(t *testing.T) {
	tbl, f := intFrame(t, 12, 10, nil, 6)
	x := tbl.MustCol("x")
	tests := []struct {
		name  string
		build func(*expr.Expr, ...ops.ReduceOption) (*expr.Expr, error)
		want  any
	}{
		{"and", ops.BitwiseAnd, int64(12 & 10 & 6)},
		{"or", ops.BitwiseOr, int64(12 | 10 | 6)},
		{"xor", ops.BitwiseXor, int64(12 ^ 10 ^ 6)},
		{"sum", ops.Sum, int64(28)},
		{"max", ops.Max, int64(12)},
		{"min", ops.Min, int64(6)},
		{"count", ops.Count, int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Eval(must(t)(tt.build(x)), f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Scalar)
		})
	}
}

func TestEval_WhereFiltersRows(t *testing.T) {
	tbl, f := intFrame(t, 7, 10, 40)
	x := tbl.MustCol("x")
	pred := must(t)(ops.Gt(x, expr.MustLit(7)))

	r, err := Eval(must(t)(ops.BitwiseAnd(x, ops.Where(pred))), f)
	require.NoError(t, err)
	assert.Equal(t, int64(8), r.Scalar)
}

func TestEval_EmptyInput(t *testing.T) {
	tbl, f := intFrame(t, 1, 2)
	x := tbl.MustCol("x")
	none := ops.Where(expr.MustLit(false))

	r, err := Eval(must(t)(ops.BitwiseAnd(x, none)), f)
	require.NoError(t, err)
	assert.Nil(t, r.Scalar)

	r, err = Eval(must(t)(ops.Count(x, none)), f)
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.Scalar)
}

func TestEval_ColumnResult(t *testing.T) {
	tbl, f := intFrame(t, 1, nil, 3)
	gt := must(t)(ops.Gt(tbl.MustCol("x"), expr.MustLit(1)))

	r, err := Eval(gt, f)
	require.NoError(t, err)
	assert.True(t, r.Type.IsColumn())
	assert.Equal(t, []any{false, nil, true}, r.Column)
	assert.Equal(t, r.Column, r.Value())
}

func TestEval_ThreeValuedLogic(t *testing.T) {
	_, f := intFrame(t, 1)
	nullBool, err := expr.LitAs(nil, ir.Boolean)
	require.NoError(t, err)

	tests := []struct {
		name string
		e    *expr.Expr
		want any
	}{
		{"false and null", must(t)(ops.And(expr.MustLit(false), nullBool)), false},
		{"true and null", must(t)(ops.And(expr.MustLit(true), nullBool)), nil},
		{"true or null", must(t)(ops.Or(nullBool, expr.MustLit(true))), true},
		{"false or null", must(t)(ops.Or(expr.MustLit(false), nullBool)), nil},
		{"not null", must(t)(ops.Not(nullBool)), nil},
		{"not true", must(t)(ops.Not(expr.MustLit(true))), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Eval(tt.e, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Scalar)
		})
	}
}

func TestEval_Strings(t *testing.T) {
	tbl := testutil.AllTypes()
	row := []any{1, 2, 3, 4, 1.5, 2.5, "Hello Wörld", true, "2020-01-01 00:00:00", "2020-01-01"}
	f, err := NewFrame(tbl, [][]any{row})
	require.NoError(t, err)
	g := tbl.MustCol("g")

	tests := []struct {
		name string
		e    *expr.Expr
		want any
	}{
		{"lower", must(t)(ops.Lower(g)), "hello wörld"},
		{"upper", must(t)(ops.Upper(g)), "HELLO WÖRLD"},
		{"length", must(t)(ops.Length(g)), int64(11)},
		{"substr", must(t)(ops.Substr(g, 6, 5)), "Wörld"},
		{"left", must(t)(ops.Left(g, 5)), "Hello"},
		{"right", must(t)(ops.Right(g, 5)), "Wörld"},
		{"right zero", must(t)(ops.Right(g, 0)), ""},
		{"substr past end", must(t)(ops.Substr(g, 20, 3)), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Eval(tt.e, f)
			require.NoError(t, err)
			require.Len(t, r.Column, 1)
			assert.Equal(t, tt.want, r.Column[0])
		})
	}
}

func TestEval_LeftEqualsSubstrFromZero(t *testing.T) {
	tbl := testutil.AllTypes()
	g := tbl.MustCol("g")
	left := must(t)(ops.Left(g, 5))
	substr := must(t)(ops.Substr(g, 0, 5))
	assert.True(t, left.Equals(substr))
}

func TestEval_ForeignColumn(t *testing.T) {
	_, f := intFrame(t, 1)
	other := testutil.IntTable("other").MustCol("x")

	_, err := Eval(must(t)(ops.Sum(other)), f)
	assert.Error(t, err)
}

func TestNewFrame_Validation(t *testing.T) {
	tbl := testutil.IntTable("t")

	_, err := NewFrame(tbl, [][]any{{1, 2}})
	assert.Error(t, err)

	_, err = NewFrame(tbl, [][]any{{"x"}})
	assert.Error(t, err)

	_, err = NewFrame(tbl, [][]any{{1.5}})
	assert.Error(t, err)

	f, err := NewFrame(tbl, [][]any{{float64(3)}, {int32(4)}, {nil}})
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(3)}, {int64(4)}, {nil}}, f.Rows())
}

func TestCompare(t *testing.T) {
	c, err := Compare(int64(1), 1.5)
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare("b", "a")
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare("a", int64(1))
	assert.Error(t, err)
}
