package expr_test

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

func TestLit_NaturalTypes(t *testing.T) {
	tests := []struct {
		value any
		want  ir.ValueType
	}{
		{int64(3), ir.ScalarOf(ir.Int64)},
		{7, ir.ScalarOf(ir.Int64)},
		{true, ir.ScalarOf(ir.Boolean)},
		{"s", ir.ScalarOf(ir.String)},
		{nil, ir.ScalarOf(ir.Null)},
	}
	for _, tt := range tests {
		e, err := expr.Lit(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.want, e.Type(), "%v", tt.value)
	}

	_, err := expr.Lit(1.5)
	assert.Error(t, err)
}

func TestLitAs(t *testing.T) {
	e, err := expr.LitAs(127, ir.Int8)
	require.NoError(t, err)
	assert.Equal(t, ir.ScalarOf(ir.Int8), e.Type())

	_, err = expr.LitAs(128, ir.Int8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overflows int8")

	e, err = expr.LitAs("2020-01-01", ir.Date)
	require.NoError(t, err)
	assert.Equal(t, ir.ScalarOf(ir.Date), e.Type())

	e, err = expr.LitAs(nil, ir.Int32)
	require.NoError(t, err)
	assert.Equal(t, ir.ScalarOf(ir.Int32), e.Type())

	_, err = expr.LitAs(true, ir.Int64)
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	_, err := expr.NewTable("", ir.MustSchema())
	assert.Error(t, err)

	tbl := testutil.AllTypes()
	a := must(t)(tbl.Col("a"))
	assert.Equal(t, ir.ColumnOf(ir.Int8), a.Type())
	assert.Equal(t, "a", a.Name())

	_, err = tbl.Col("zz")
	assert.Error(t, err)
	assert.Panics(t, func() { tbl.MustCol("zz") })
}

func TestDefinitionBind_Errors(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	g := testutil.AllTypes().MustCol("g")

	_, err := ops.BitwiseAndDef.Bind(expr.Args{"arg": x, "bogus": x})
	require.True(t, expr.IsValidationError(err))
	assert.Contains(t, err.Error(), "unknown argument")

	for i := 0; i < 20; i++ {
		_, err = ops.BitwiseAndDef.Bind(expr.Args{"arg": x, "zeta": x, "beta": x, "alpha": x})
		assert.EqualError(t, err, `BitwiseAnd: argument "alpha": unknown argument`)
	}

	_, err = ops.BitwiseAndDef.Bind(expr.Args{})
	require.True(t, expr.IsValidationError(err))
	assert.Contains(t, err.Error(), "required argument missing")

	_, err = ops.BitwiseAndDef.Bind(expr.Args{"arg": g})
	require.True(t, expr.IsValidationError(err))
	assert.EqualError(t, err, `BitwiseAnd: argument "arg" must be integer column, got string column`)

	_, err = ops.BitwiseAndDef.Bind(expr.Args{"arg": x, "where": x})
	var ve *expr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "where", ve.Arg)
	assert.Equal(t, "boolean value", ve.Rule)
}

func TestDefinitionBind_OptionalSlotAbsent(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	e := must(t)(ops.BitwiseAndDef.Bind(expr.Args{"arg": x}))

	op := e.Op().(*expr.Op)
	assert.Nil(t, op.Arg("where"))
	assert.Same(t, x, op.Arg("arg"))

	args := op.Args()
	require.Len(t, args, 2)
	assert.Equal(t, "where", args[1].Name)
	assert.Nil(t, args[1].Value)
}

func TestExpr_NameAndAlias(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	e := must(t)(ops.BitwiseAnd(x))

	assert.Equal(t, "bitwise_and_x", e.Name())
	assert.False(t, e.HasAlias())
	assert.Equal(t, "literal", expr.MustLit(1).Name())

	named := e.As("flags")
	assert.Equal(t, "flags", named.Name())
	assert.True(t, named.HasAlias())
	assert.Equal(t, "bitwise_and_x", e.Name(), "As does not modify the receiver")
	assert.Same(t, e.Op(), named.Op())
}

func TestExpr_String(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	pred := must(t)(ops.Gt(x, expr.MustLit(1)))
	e := must(t)(ops.BitwiseAnd(x, ops.Where(pred)))

	assert.Equal(t, "BitwiseAnd(arg=t.x, where=Greater(left=t.x, right=1))", e.String())
	assert.Equal(t, `"a"`, expr.MustLit("a").String())
}

func TestExpr_FingerprintIgnoresAlias(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	a := must(t)(ops.BitwiseAnd(x, ops.Where(expr.MustLit(true))))
	b := must(t)(ops.BitwiseAnd(x, ops.Where(expr.MustLit(true))))

	assert.True(t, a.Equals(b))
	assert.True(t, a.Equals(b.As("other")))

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.As("other").Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	c := must(t)(ops.BitwiseAnd(x, ops.Where(expr.MustLit(false))))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestExpr_FingerprintWithNullLiteral(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	a := must(t)(ops.Eq(x, expr.MustLit(nil)))
	b := must(t)(ops.Eq(x, expr.MustLit(nil)))

	_, err := a.Fingerprint()
	require.NoError(t, err)
	assert.True(t, a.Equals(b))
}

func TestTablesAndContainsReduction(t *testing.T) {
	t1 := testutil.IntTable("t1")
	t2 := testutil.IntTable("t2")
	x1, x2 := t1.MustCol("x"), t2.MustCol("x")

	cmp := must(t)(ops.Eq(x1, x2))
	assert.Equal(t, []*expr.Table{t1, t2}, expr.Tables(cmp))
	assert.False(t, expr.ContainsReduction(cmp))

	red := must(t)(ops.BitwiseAnd(x1))
	assert.Equal(t, []*expr.Table{t1}, expr.Tables(red))
	assert.True(t, expr.ContainsReduction(red))

	assert.Empty(t, expr.Tables(expr.MustLit(1)))
}

func TestMethodTable_TypeErrors(t *testing.T) {
	g := testutil.AllTypes().MustCol("g")
	mt := ops.Methods()

	_, err := mt.Call(g, "bitwise_and", nil)
	var te *expr.TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, []string{"integer column"}, te.Accepted)
	assert.Equal(t, "bitwise_and: not defined for string column (requires integer column)", err.Error())

	_, err = mt.Call(g, "no_such_method", nil)
	require.ErrorAs(t, err, &te)
	assert.Empty(t, te.Accepted)
	assert.Contains(t, err.Error(), "no such method")

	_, err = mt.Call(nil, "lower", nil)
	assert.True(t, expr.IsTypeError(err))
}

func TestMethodTable_ReceiverAsKeyword(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	_, err := ops.Methods().Call(x, "bitwise_and", expr.Kwargs{"arg": x})
	require.True(t, expr.IsValidationError(err))
	assert.Contains(t, err.Error(), "given as both receiver and keyword")
}

func TestMethodTable_WithShadowsWithoutMutation(t *testing.T) {
	x := testutil.IntTable("t").MustCol("x")
	base := ops.Methods()

	extended := base.With(expr.BindMethod("bitwise_and", ops.BitwiseOrDef, "arg"))
	e := must(t)(extended.Call(x, "bitwise_and", nil))
	assert.Equal(t, ops.KindBitwiseOr, e.Op().Kind())

	e = must(t)(base.Call(x, "bitwise_and", nil))
	assert.Equal(t, ops.KindBitwiseAnd, e.Op().Kind())

	assert.Len(t, extended.Lookup("bitwise_and"), 2)
	assert.Len(t, base.Lookup("bitwise_and"), 1)
}

func TestMethodTable_For(t *testing.T) {
	mt := ops.Methods()

	intCol := mt.For(ir.ColumnOf(ir.Int64))
	assert.Contains(t, intCol, "bitwise_and")
	assert.Contains(t, intCol, "sum")
	assert.NotContains(t, intCol, "lower")

	intScalar := mt.For(ir.ScalarOf(ir.Int64))
	assert.NotContains(t, intScalar, "bitwise_and")
	assert.Contains(t, intScalar, "eq")

	strCol := mt.For(ir.ColumnOf(ir.String))
	assert.Contains(t, strCol, "lower")
	assert.NotContains(t, strCol, "bitwise_and")
}

func TestBindMethod_UnknownSlotPanics(t *testing.T) {
	assert.Panics(t, func() { expr.BindMethod("x", ops.BitwiseAndDef, "nope") })
}

func TestPredicateByName(t *testing.T) {
	p, ok := expr.PredicateByName("integer")
	require.True(t, ok)
	assert.True(t, p.Match(ir.Int16))
	assert.False(t, p.Match(ir.Float64))

	p, ok = expr.PredicateByName("date")
	require.True(t, ok)
	assert.True(t, p.Match(ir.Date))
	assert.False(t, p.Match(ir.Timestamp))

	_, ok = expr.PredicateByName("decimal")
	assert.False(t, ok)
}
