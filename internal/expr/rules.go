package expr

import (
	"github.com/roach88/exprext/internal/ir"
)

// TypePredicate is a named test over element types.
type TypePredicate struct {
	Name  string
	Match func(ir.DataType) bool
}

var (
	Integer  = TypePredicate{"integer", ir.DataType.IsInteger}
	Floating = TypePredicate{"floating", ir.DataType.IsFloating}
	Numeric  = TypePredicate{"numeric", ir.DataType.IsNumeric}
	Boolean  = TypePredicate{"boolean", ir.DataType.IsBoolean}
	String   = TypePredicate{"string", ir.DataType.IsString}
	Temporal = TypePredicate{"temporal", ir.DataType.IsTemporal}
	Any      = TypePredicate{"any", func(ir.DataType) bool { return true }}
)

// Exactly matches a single element type.
func Exactly(d ir.DataType) TypePredicate {
	return TypePredicate{d.String(), func(x ir.DataType) bool { return x == d }}
}

// PredicateByName resolves a family name ("integer", "numeric", ...) or a
// concrete type name ("int32") to a TypePredicate.
func PredicateByName(name string) (TypePredicate, bool) {
	switch name {
	case "integer":
		return Integer, true
	case "floating":
		return Floating, true
	case "numeric":
		return Numeric, true
	case "boolean":
		return Boolean, true
	case "string":
		return String, true
	case "temporal":
		return Temporal, true
	case "any":
		return Any, true
	}
	if d, err := ir.ParseDataType(name); err == nil {
		return Exactly(d), true
	}
	return TypePredicate{}, false
}

// Rule is the constraint attached to an argument slot or a method receiver.
// Rules only inspect the value type; they never look at node contents.
type Rule interface {
	Accepts(t ir.ValueType) bool

	// String describes the constraint for error messages, e.g. "integer column".
	String() string
}

type typeRule struct {
	pred  TypePredicate
	shape *ir.Shape // nil accepts any shape
}

func (r typeRule) Accepts(t ir.ValueType) bool {
	if r.shape != nil && t.Shape != *r.shape {
		return false
	}
	return r.pred.Match(t.DType)
}

func (r typeRule) String() string {
	if r.shape == nil {
		return r.pred.Name + " value"
	}
	return r.pred.Name + " " + r.shape.String()
}

// ColumnOf requires a column whose element type satisfies pred.
func ColumnOf(pred TypePredicate) Rule {
	s := ir.Column
	return typeRule{pred: pred, shape: &s}
}

// ScalarOf requires a scalar whose element type satisfies pred.
func ScalarOf(pred TypePredicate) Rule {
	s := ir.Scalar
	return typeRule{pred: pred, shape: &s}
}

// ValueOf requires a scalar or column whose element type satisfies pred.
func ValueOf(pred TypePredicate) Rule {
	return typeRule{pred: pred}
}

// Capabilities used by the binding layer.
var (
	IntegerColumn = ColumnOf(Integer)
	NumericColumn = ColumnOf(Numeric)
	AnyColumn     = ColumnOf(Any)
	NumericValue  = ValueOf(Numeric)
	BooleanValue  = ValueOf(Boolean)
	StringValue   = ValueOf(String)
	AnyValue      = ValueOf(Any)
)
