package expr

import (
	"github.com/roach88/exprext/internal/ir"
)

// Kind names an operation. Compilation rules are keyed by Kind.
type Kind string

const (
	KindColumn  Kind = "Column"
	KindLiteral Kind = "Literal"
)

// Node is one immutable vertex of an expression graph.
type Node interface {
	Kind() Kind
	Type() ir.ValueType

	// Args returns the named children in slot order. Absent optional
	// arguments are present with a nil Value. Leaves return nil.
	Args() []Arg
}

// Arg is a named child of a node.
type Arg struct {
	Name  string
	Value *Expr // nil when an optional slot is absent
}

// Column is a reference to a column of a table.
type Column struct {
	table *Table
	name  string
	dtype ir.DataType
}

func (c *Column) Kind() Kind         { return KindColumn }
func (c *Column) Type() ir.ValueType { return ir.ColumnOf(c.dtype) }
func (c *Column) Args() []Arg        { return nil }
func (c *Column) Table() *Table      { return c.table }
func (c *Column) Name() string       { return c.name }

// Literal is a constant scalar value.
type Literal struct {
	value ir.IRValue
	dtype ir.DataType
}

func (l *Literal) Kind() Kind         { return KindLiteral }
func (l *Literal) Type() ir.ValueType { return ir.ScalarOf(l.dtype) }
func (l *Literal) Args() []Arg        { return nil }
func (l *Literal) Value() ir.IRValue  { return l.value }

// Op is an instance of a Definition with validated arguments.
type Op struct {
	def  *Definition
	args []Arg
	typ  ir.ValueType
}

func (o *Op) Kind() Kind              { return o.def.Kind }
func (o *Op) Type() ir.ValueType      { return o.typ }
func (o *Op) Definition() *Definition { return o.def }

func (o *Op) Args() []Arg {
	out := make([]Arg, len(o.args))
	copy(out, o.args)
	return out
}

// Arg returns the named argument, or nil if the slot is absent or unknown.
func (o *Op) Arg(name string) *Expr {
	for _, a := range o.args {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}
