package ops

import (
	"strconv"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// String kinds.
const (
	KindLowercase    expr.Kind = "Lowercase"
	KindUppercase    expr.Kind = "Uppercase"
	KindSubstring    expr.Kind = "Substring"
	KindStrRight     expr.Kind = "StrRight"
	KindStringLength expr.Kind = "StringLength"
)

var (
	LowercaseDef = &expr.Definition{
		Kind:   KindLowercase,
		Slots:  []expr.Slot{{Name: "arg", Rule: expr.StringValue}},
		Output: expr.Like("arg"),
	}
	UppercaseDef = &expr.Definition{
		Kind:   KindUppercase,
		Slots:  []expr.Slot{{Name: "arg", Rule: expr.StringValue}},
		Output: expr.Like("arg"),
	}

	// SubstringDef takes a zero-based start offset and an optional length.
	// Constant offsets and lengths must not be negative.
	SubstringDef = &expr.Definition{
		Kind: KindSubstring,
		Slots: []expr.Slot{
			{Name: "arg", Rule: expr.StringValue},
			{Name: "start", Rule: expr.ScalarOf(expr.Integer)},
			{Name: "length", Rule: expr.ScalarOf(expr.Integer), Optional: true},
		},
		Output: nonNegative(KindSubstring, expr.Like("arg"), "start", "length"),
	}

	StrRightDef = &expr.Definition{
		Kind: KindStrRight,
		Slots: []expr.Slot{
			{Name: "arg", Rule: expr.StringValue},
			{Name: "nchars", Rule: expr.ScalarOf(expr.Integer)},
		},
		Output: expr.Like("arg"),
	}

	StringLengthDef = &expr.Definition{
		Kind:   KindStringLength,
		Slots:  []expr.Slot{{Name: "arg", Rule: expr.StringValue}},
		Output: expr.ElementwiseOf(ir.Int32, "arg"),
	}
)

// nonNegative rejects negative integer literals in the listed slots before
// computing the output type with out.
func nonNegative(kind expr.Kind, out expr.OutputRule, slots ...string) expr.OutputRule {
	return func(args expr.Args) (ir.ValueType, error) {
		for _, name := range slots {
			a, ok := args[name]
			if !ok {
				continue
			}
			lit, ok := a.Op().(*expr.Literal)
			if !ok {
				continue
			}
			if n, ok := lit.Value().(ir.IRInt); ok && n < 0 {
				return ir.ValueType{}, &expr.ValidationError{
					Op:   kind,
					Arg:  name,
					Rule: "a non-negative integer",
					Got:  strconv.FormatInt(int64(n), 10),
				}
			}
		}
		return out(args)
	}
}

// leftMethod is substr(0, nchars); it produces a Substring node, not a
// kind of its own.
var leftMethod = expr.Method{
	Name:     "left",
	Kind:     KindSubstring,
	Receiver: expr.StringValue,
	Call: func(recv *expr.Expr, kw expr.Kwargs) (*expr.Expr, error) {
		for k := range kw {
			if k != "nchars" {
				return nil, &expr.ValidationError{Op: KindSubstring, Arg: k, Reason: "unknown argument"}
			}
		}
		return SubstringDef.Bind(expr.Args{
			"arg":    recv,
			"start":  expr.MustLit(0),
			"length": kw["nchars"],
		})
	},
}

func Lower(arg *expr.Expr) (*expr.Expr, error)  { return Methods().Call(arg, "lower", nil) }
func Upper(arg *expr.Expr) (*expr.Expr, error)  { return Methods().Call(arg, "upper", nil) }
func Length(arg *expr.Expr) (*expr.Expr, error) { return Methods().Call(arg, "length", nil) }

// Substr extracts length characters starting at the zero-based offset start.
func Substr(arg *expr.Expr, start, length int64) (*expr.Expr, error) {
	return Methods().Call(arg, "substr", expr.Kwargs{
		"start":  expr.MustLit(start),
		"length": expr.MustLit(length),
	})
}

// Left is Substr(arg, 0, n).
func Left(arg *expr.Expr, n int64) (*expr.Expr, error) {
	return Methods().Call(arg, "left", expr.Kwargs{"nchars": expr.MustLit(n)})
}

// Right keeps the last n characters.
func Right(arg *expr.Expr, n int64) (*expr.Expr, error) {
	return Methods().Call(arg, "right", expr.Kwargs{"nchars": expr.MustLit(n)})
}
