// Package ops defines the built-in operation catalogue and binds it to
// receiver capabilities.
//
// Every operation has three faces:
//
//	XxxDef      the Definition (slots, rules, output type)
//	"xxx"       a Method in the table returned by Methods()
//	Xxx(...)    a typed free function that calls through the method table
//
// The free functions go through the table so the receiver capability check
// (TypeError) runs before argument validation (ValidationError), exactly as
// for dynamic calls:
//
//	x := tbl.MustCol("x")               // int64 column
//	e, err := ops.BitwiseAnd(x)          // bit_and(x), int64 scalar
//	e, err = ops.BitwiseAnd(x, ops.Where(flag))
//	_, err = ops.BitwiseAnd(expr.MustLit(3)) // TypeError: not an integer column
package ops
