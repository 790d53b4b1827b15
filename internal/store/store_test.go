package store

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/roach88/exprext/internal/eval"
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
	"github.com/roach88/exprext/internal/queryir"
	"github.com/roach88/exprext/internal/querysql"
	"github.com/roach88/exprext/internal/sqlgen"
	"github.com/roach88/exprext/internal/testutil"
)

var engines = []sqlgen.Dialect{sqlgen.SQLite, sqlgen.DuckDB}

func openStore(t *testing.T, d sqlgen.Dialect) *Store {
	t.Helper()
	s, err := Open(context.Background(), d)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", d, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// loadInts creates table name with an int64 column x holding values.
func loadInts(t *testing.T, s *Store, name string, values ...any) *expr.Table {
	t.Helper()
	tbl := testutil.IntTable(name)
	ctx := context.Background()
	if err := s.CreateTable(ctx, name, tbl.Schema()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	rows := make([][]any, len(values))
	for i, v := range values {
		rows[i] = []any{v}
	}
	if err := s.Insert(ctx, name, tbl.Schema(), rows); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	return tbl
}

func scalar(t *testing.T, s *Store, e *expr.Expr) any {
	t.Helper()
	sel, err := queryir.FromExpr(e)
	if err != nil {
		t.Fatalf("FromExpr failed: %v", err)
	}
	sql, params, err := querysql.NewSQLCompiler(s.Dialect()).Compile(sel)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	v, err := s.QueryScalar(context.Background(), e.Type().DType, sql, params...)
	if err != nil {
		t.Fatalf("QueryScalar(%s) failed: %v", sql, err)
	}
	return v
}

func TestOpen_SQLitePragmas(t *testing.T) {
	s := openStore(t, sqlgen.SQLite)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_UnsupportedDialect(t *testing.T) {
	for _, d := range []sqlgen.Dialect{sqlgen.Postgres, sqlgen.MapD} {
		_, err := Open(context.Background(), d)
		if !errors.Is(err, ErrUnsupportedDialect) {
			t.Errorf("Open(%s) error = %v, want ErrUnsupportedDialect", d, err)
		}
	}
}

func TestOpen_NamedDatabasesAreIsolated(t *testing.T) {
	names := testutil.NewSequentialNames("iso")
	ctx := context.Background()

	a, err := Open(ctx, sqlgen.SQLite, WithNames(names))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()
	b, err := Open(ctx, sqlgen.SQLite, WithNames(names))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer b.Close()

	if a.Name() != "iso-000001" || b.Name() != "iso-000002" {
		t.Fatalf("names = %q, %q", a.Name(), b.Name())
	}

	loadInts(t, a, "t", 1)
	// Same table name in the second database must not collide.
	loadInts(t, b, "t", 2)
}

func TestBitwiseAnd_WhereTrue(t *testing.T) {
	for _, d := range engines {
		t.Run(string(d), func(t *testing.T) {
			s := openStore(t, d)
			tbl := loadInts(t, s, "t", 10, 40)

			e, err := ops.BitwiseAnd(tbl.MustCol("x"), ops.Where(expr.MustLit(true)))
			if err != nil {
				t.Fatalf("BitwiseAnd failed: %v", err)
			}
			if got := scalar(t, s, e); got != int64(8) {
				t.Errorf("bit_and = %v (%T), want 8", got, got)
			}
		})
	}
}

func TestBitwiseAnd_FilteredRowsAreExcluded(t *testing.T) {
	for _, d := range engines {
		t.Run(string(d), func(t *testing.T) {
			s := openStore(t, d)
			tbl := loadInts(t, s, "t", 12, 10, 3)
			x := tbl.MustCol("x")

			pred, err := ops.Gt(x, expr.MustLit(5))
			if err != nil {
				t.Fatalf("Gt failed: %v", err)
			}
			e, err := ops.BitwiseAnd(x, ops.Where(pred))
			if err != nil {
				t.Fatalf("BitwiseAnd failed: %v", err)
			}
			if got := scalar(t, s, e); got != int64(8) {
				t.Errorf("bit_and = %v, want 8", got)
			}
		})
	}
}

func TestBitwiseAggregates_NullHandling(t *testing.T) {
	for _, d := range engines {
		t.Run(string(d), func(t *testing.T) {
			s := openStore(t, d)
			tbl := loadInts(t, s, "t", 6, nil, 3)
			x := tbl.MustCol("x")

			tests := []struct {
				name  string
				build func(*expr.Expr, ...ops.ReduceOption) (*expr.Expr, error)
				want  int64
			}{
				{"and", ops.BitwiseAnd, 2},
				{"or", ops.BitwiseOr, 7},
				{"xor", ops.BitwiseXor, 5},
			}
			for _, tt := range tests {
				e, err := tt.build(x)
				if err != nil {
					t.Fatalf("%s: build failed: %v", tt.name, err)
				}
				if got := scalar(t, s, e); got != tt.want {
					t.Errorf("%s = %v, want %d", tt.name, got, tt.want)
				}
			}
		})
	}
}

func TestBitwiseAnd_EmptyInputIsNull(t *testing.T) {
	for _, d := range engines {
		t.Run(string(d), func(t *testing.T) {
			s := openStore(t, d)
			tbl := loadInts(t, s, "t", 1, 2)

			e, err := ops.BitwiseAnd(tbl.MustCol("x"), ops.Where(expr.MustLit(false)))
			if err != nil {
				t.Fatalf("BitwiseAnd failed: %v", err)
			}
			if got := scalar(t, s, e); got != nil {
				t.Errorf("bit_and over no rows = %v, want NULL", got)
			}
		})
	}
}

func TestQuery_AllTypesRoundTrip(t *testing.T) {
	row := []any{int64(1), int64(2), int64(3), int64(4), 1.5, 2.5, "hi", true, "2020-01-02 03:04:05", "2020-01-02"}
	for _, d := range engines {
		t.Run(string(d), func(t *testing.T) {
			s := openStore(t, d)
			ctx := context.Background()
			schema := testutil.AllTypesSchema()
			if err := s.CreateTable(ctx, "alltypes", schema); err != nil {
				t.Fatalf("CreateTable failed: %v", err)
			}
			if err := s.Insert(ctx, "alltypes", schema, [][]any{row}); err != nil {
				t.Fatalf("Insert failed: %v", err)
			}

			result, err := s.Query(ctx, `SELECT * FROM "alltypes"`)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(result.Rows) != 1 || len(result.Columns) != schema.Len() {
				t.Fatalf("got %d rows of %d columns", len(result.Rows), len(result.Columns))
			}
			for i, f := range schema.Fields() {
				got, err := Coerce(result.Rows[0][i], f.DType)
				if err != nil {
					t.Fatalf("Coerce(%s) failed: %v", f.Name, err)
				}
				if got != row[i] {
					t.Errorf("%s = %v (%T), want %v", f.Name, got, got, row[i])
				}
			}
		})
	}
}

func TestSQLiteRight_ComputedCountMatchesEval(t *testing.T) {
	s := openStore(t, sqlgen.SQLite)
	ctx := context.Background()
	tbl := testutil.AllTypes()
	row := []any{int64(1), int64(2), int64(3), int64(4), 1.5, 2.5, "hello", true, "2020-01-02 03:04:05", "2020-01-02"}
	if err := s.CreateTable(ctx, tbl.Name(), tbl.Schema()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := s.Insert(ctx, tbl.Name(), tbl.Schema(), [][]any{row}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	frame, err := eval.NewFrame(tbl, [][]any{row})
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}

	tests := []struct {
		count string
		want  string
	}{
		{"", ""},
		{"abc", "llo"},
		{"abcdefgh", "hello"},
	}
	for _, tt := range tests {
		n, err := ops.Length(expr.MustLit(tt.count))
		if err != nil {
			t.Fatalf("Length failed: %v", err)
		}
		e, err := ops.Methods().Call(tbl.MustCol("g"), "right", expr.Kwargs{"nchars": n})
		if err != nil {
			t.Fatalf("right failed: %v", err)
		}
		if got := scalar(t, s, e); got != tt.want {
			t.Errorf("right(g, length(%q)) = %q, want %q", tt.count, got, tt.want)
		}
		ref, err := eval.Eval(e, frame)
		if err != nil {
			t.Fatalf("Eval failed: %v", err)
		}
		if ref.Column[0] != tt.want {
			t.Errorf("eval right(g, length(%q)) = %v, want %q", tt.count, ref.Column[0], tt.want)
		}
	}
}

func TestInsert_RowWidthMismatch(t *testing.T) {
	s := openStore(t, sqlgen.SQLite)
	schema := ir.MustSchema(ir.Field{Name: "x", DType: ir.Int64})
	ctx := context.Background()
	if err := s.CreateTable(ctx, "t", schema); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := s.Insert(ctx, "t", schema, [][]any{{1, 2}}); err == nil {
		t.Error("expected error for row wider than schema")
	}
}

func TestQueryScalar_RejectsMultipleRows(t *testing.T) {
	s := openStore(t, sqlgen.SQLite)
	loadInts(t, s, "t", 1, 2)

	if _, err := s.QueryScalar(context.Background(), ir.Int64, `SELECT "x" FROM "t"`); err == nil {
		t.Error("expected error for two rows")
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		in   any
		d    ir.DataType
		want any
	}{
		{int64(1), ir.Boolean, true},
		{int64(0), ir.Boolean, false},
		{[]byte("abc"), ir.String, "abc"},
		{int32(7), ir.Int64, int64(7)},
		{float32(0.5), ir.Float64, 0.5},
		{nil, ir.Int64, nil},
	}
	for _, tt := range tests {
		got, err := Coerce(tt.in, tt.d)
		if err != nil {
			t.Errorf("Coerce(%v, %s) failed: %v", tt.in, tt.d, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Coerce(%v, %s) = %v, want %v", tt.in, tt.d, got, tt.want)
		}
	}
}

func TestCoerce_HugeInt(t *testing.T) {
	got, err := Coerce(big.NewInt(42), ir.Int64)
	if err != nil {
		t.Fatalf("Coerce failed: %v", err)
	}
	if got != int64(42) {
		t.Errorf("Coerce = %v (%T), want 42", got, got)
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	if _, err := Coerce(huge, ir.Int64); err == nil {
		t.Error("expected overflow error")
	}
}
