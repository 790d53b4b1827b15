package ops

import (
	"sync"

	"github.com/roach88/exprext/internal/expr"
)

// Methods returns the built-in method table. It is built once and never
// modified; use With to derive an extended table.
var Methods = sync.OnceValue(func() *expr.MethodTable {
	return expr.NewMethodTable(
		expr.BindMethod("bitwise_and", BitwiseAndDef, "arg"),
		expr.BindMethod("bitwise_or", BitwiseOrDef, "arg"),
		expr.BindMethod("bitwise_xor", BitwiseXorDef, "arg"),
		expr.BindMethod("sum", SumDef, "arg"),
		expr.BindMethod("max", MaxDef, "arg"),
		expr.BindMethod("min", MinDef, "arg"),
		expr.BindMethod("count", CountDef, "arg"),

		expr.BindMethod("eq", EqualsDef, "left"),
		expr.BindMethod("ne", NotEqualsDef, "left"),
		expr.BindMethod("lt", LessDef, "left"),
		expr.BindMethod("le", LessEqualDef, "left"),
		expr.BindMethod("gt", GreaterDef, "left"),
		expr.BindMethod("ge", GreaterEqualDef, "left"),
		expr.BindMethod("and", AndDef, "left"),
		expr.BindMethod("or", OrDef, "left"),
		expr.BindMethod("not", NotDef, "arg"),

		expr.BindMethod("lower", LowercaseDef, "arg"),
		expr.BindMethod("upper", UppercaseDef, "arg"),
		expr.BindMethod("substr", SubstringDef, "arg"),
		expr.BindMethod("right", StrRightDef, "arg"),
		expr.BindMethod("length", StringLengthDef, "arg"),
		leftMethod,
	)
})

// Definitions returns every built-in definition, keyed by kind.
func Definitions() map[expr.Kind]*expr.Definition {
	defs := []*expr.Definition{
		BitwiseAndDef, BitwiseOrDef, BitwiseXorDef, SumDef, MaxDef, MinDef, CountDef,
		EqualsDef, NotEqualsDef, LessDef, LessEqualDef, GreaterDef, GreaterEqualDef,
		AndDef, OrDef, NotDef,
		LowercaseDef, UppercaseDef, SubstringDef, StrRightDef, StringLengthDef,
	}
	out := make(map[expr.Kind]*expr.Definition, len(defs))
	for _, d := range defs {
		out[d.Kind] = d
	}
	return out
}
