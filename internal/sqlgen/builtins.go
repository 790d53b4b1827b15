package sqlgen

import (
	"strconv"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
)

var (
	allDialects = []Dialect{Postgres, DuckDB, SQLite, MapD}

	// Dialects with bit_and/bit_or/bit_xor aggregates. The sqlite
	// aggregates are provided by the store's connection hook.
	bitwiseDialects = []Dialect{Postgres, DuckDB, SQLite}
)

// infix kinds are parenthesized when nested inside another infix operator.
var infix = map[expr.Kind]string{
	ops.KindEquals:       "=",
	ops.KindNotEquals:    "<>",
	ops.KindLess:         "<",
	ops.KindLessEqual:    "<=",
	ops.KindGreater:      ">",
	ops.KindGreaterEqual: ">=",
	ops.KindAnd:          "AND",
	ops.KindOr:           "OR",
}

func registerBuiltins(b *Builder) {
	b.RegisterAll(expr.KindColumn, columnRule, allDialects...)
	b.RegisterAll(expr.KindLiteral, literalRule, allDialects...)

	b.RegisterAll(ops.KindBitwiseAnd, ReductionRule("bit_and"), bitwiseDialects...)
	b.RegisterAll(ops.KindBitwiseOr, ReductionRule("bit_or"), bitwiseDialects...)
	b.RegisterAll(ops.KindBitwiseXor, ReductionRule("bit_xor"), bitwiseDialects...)
	b.RegisterAll(ops.KindSum, ReductionRule("sum"), allDialects...)
	b.RegisterAll(ops.KindMax, ReductionRule("max"), allDialects...)
	b.RegisterAll(ops.KindMin, ReductionRule("min"), allDialects...)
	b.RegisterAll(ops.KindCount, ReductionRule("count"), allDialects...)

	for kind, op := range infix {
		b.RegisterAll(kind, binaryRule(op), allDialects...)
	}
	b.RegisterAll(ops.KindNot, notRule, allDialects...)

	b.RegisterAll(ops.KindLowercase, FuncRule("lower", "arg"), allDialects...)
	b.RegisterAll(ops.KindUppercase, FuncRule("upper", "arg"), allDialects...)

	b.RegisterAll(ops.KindStringLength, FuncRule("char_length", "arg"), Postgres, MapD)
	b.RegisterAll(ops.KindStringLength, FuncRule("length", "arg"), DuckDB, SQLite)

	b.RegisterAll(ops.KindSubstring, substringRule, Postgres, DuckDB, SQLite, MapD)

	b.RegisterAll(ops.KindStrRight, FuncRule("right", "arg", "nchars"), Postgres, DuckDB, MapD)
	b.Register(ops.KindStrRight, SQLite, sqliteRightRule)
}

// operand translates a child, wrapping nested infix operators and NOT in
// parens. NOT binds looser than comparisons in every dialect.
func operand(t *Translator, e *expr.Expr, name string) (string, error) {
	arg := Arg(e, name)
	s, err := t.Translate(arg)
	if err != nil {
		return "", err
	}
	kind := arg.Op().Kind()
	if _, ok := infix[kind]; ok || kind == ops.KindNot {
		return "(" + s + ")", nil
	}
	return s, nil
}

func binaryRule(op string) Rule {
	return func(t *Translator, e *expr.Expr) (string, error) {
		l, err := operand(t, e, "left")
		if err != nil {
			return "", err
		}
		r, err := operand(t, e, "right")
		if err != nil {
			return "", err
		}
		return l + " " + op + " " + r, nil
	}
}

func notRule(t *Translator, e *expr.Expr) (string, error) {
	s, err := operand(t, e, "arg")
	if err != nil {
		return "", err
	}
	return "NOT " + s, nil
}

// intLiteral returns the value of e when it is a non-null integer literal.
func intLiteral(e *expr.Expr) (int64, bool) {
	l, ok := e.Op().(*expr.Literal)
	if !ok {
		return 0, false
	}
	v, ok := l.Value().(ir.IRInt)
	return int64(v), ok
}

// substringRule shifts the zero-based start offset to SQL's one-based
// substr. Constant offsets are folded.
func substringRule(t *Translator, e *expr.Expr) (string, error) {
	arg, err := t.Translate(Arg(e, "arg"))
	if err != nil {
		return "", err
	}
	var start string
	if n, ok := intLiteral(Arg(e, "start")); ok {
		start = strconv.FormatInt(n+1, 10)
	} else {
		s, err := operand(t, e, "start")
		if err != nil {
			return "", err
		}
		start = s + " + 1"
	}
	length, ok, err := t.TranslateArg(e, "length")
	if err != nil {
		return "", err
	}
	if !ok {
		return FuncCall("substr", arg, start), nil
	}
	return FuncCall("substr", arg, start, length), nil
}

// sqliteRightRule uses a negative substr offset; sqlite has no right().
// A computed count n renders substr(x, -(n), max(n, 0)) so that n <= 0
// yields '' like the constant case, and a NULL count yields NULL.
func sqliteRightRule(t *Translator, e *expr.Expr) (string, error) {
	arg, err := t.Translate(Arg(e, "arg"))
	if err != nil {
		return "", err
	}
	if n, ok := intLiteral(Arg(e, "nchars")); ok {
		if n <= 0 {
			return FuncCall("substr", arg, "1", "0"), nil
		}
		return FuncCall("substr", arg, strconv.FormatInt(-n, 10)), nil
	}
	// Translated twice: positional parameters are bound once per use.
	offset, err := t.Translate(Arg(e, "nchars"))
	if err != nil {
		return "", err
	}
	count, err := t.Translate(Arg(e, "nchars"))
	if err != nil {
		return "", err
	}
	return FuncCall("substr", arg, "-("+offset+")", FuncCall("max", count, "0")), nil
}
