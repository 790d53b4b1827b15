package expr

import (
	"strings"
	"unicode"

	"github.com/roach88/exprext/internal/ir"
)

// Expr is the user-facing handle over one immutable node.
type Expr struct {
	node  Node
	alias string
}

// New wraps a node in an expression.
func New(n Node) *Expr {
	return &Expr{node: n}
}

// Op returns the wrapped node.
func (e *Expr) Op() Node { return e.node }

// Type returns the node's output type.
func (e *Expr) Type() ir.ValueType { return e.node.Type() }

// As returns a new expression sharing the node under a different name.
func (e *Expr) As(name string) *Expr {
	return &Expr{node: e.node, alias: name}
}

// Name returns the alias if set, else a name derived from the node:
// the column name for columns, "literal" for literals, and
// "<snake_kind>_<first argument name>" for operations.
func (e *Expr) Name() string {
	if e.alias != "" {
		return e.alias
	}
	switch n := e.node.(type) {
	case *Column:
		return n.name
	case *Literal:
		return "literal"
	}
	base := snake(string(e.node.Kind()))
	for _, a := range e.node.Args() {
		if a.Value != nil {
			return base + "_" + a.Value.Name()
		}
	}
	return base
}

// HasAlias reports whether the name was set explicitly with As.
func (e *Expr) HasAlias() bool { return e.alias != "" }

// String renders a compact, human readable form, e.g.
// "BitwiseAnd(arg=t.x, where=Greater(left=t.x, right=1))".
func (e *Expr) String() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (e *Expr) render(b *strings.Builder) {
	switch n := e.node.(type) {
	case *Column:
		b.WriteString(n.table.Name())
		b.WriteByte('.')
		b.WriteString(n.name)
		return
	case *Literal:
		b.WriteString(literalText(n.value))
		return
	}
	b.WriteString(string(e.node.Kind()))
	b.WriteByte('(')
	first := true
	for _, a := range e.node.Args() {
		if a.Value == nil {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(a.Name)
		b.WriteByte('=')
		a.Value.render(b)
	}
	b.WriteByte(')')
}

// Walk visits e and its descendants in pre-order. Shared children are
// visited once per reference. Returning false stops descent below the
// current node.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, a := range e.node.Args() {
		Walk(a.Value, fn)
	}
}

// Tables returns the distinct tables referenced by e, in first-seen order.
func Tables(e *Expr) []*Table {
	var out []*Table
	seen := map[*Table]bool{}
	Walk(e, func(x *Expr) bool {
		if c, ok := x.node.(*Column); ok && !seen[c.table] {
			seen[c.table] = true
			out = append(out, c.table)
		}
		return true
	})
	return out
}

// ContainsReduction reports whether any node in e is a reduction.
func ContainsReduction(e *Expr) bool {
	found := false
	Walk(e, func(x *Expr) bool {
		if op, ok := x.node.(*Op); ok && op.def.Reduction {
			found = true
		}
		return !found
	})
	return found
}

// Fingerprint returns the structural identity of the expression. Aliases do
// not participate: two expressions computing the same thing are equal.
func (e *Expr) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainExpression, e.canonical())
}

// Equals reports structural equality.
func (e *Expr) Equals(other *Expr) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e.node == other.node {
		return true
	}
	a, errA := e.Fingerprint()
	b, errB := other.Fingerprint()
	return errA == nil && errB == nil && a == b
}

func (e *Expr) canonical() ir.IRObject {
	obj := ir.IRObject{
		"kind": ir.IRString(e.node.Kind()),
		"type": ir.IRString(e.Type().String()),
	}
	switch n := e.node.(type) {
	case *Column:
		obj["table"] = ir.IRString(n.table.Name())
		obj["column"] = ir.IRString(n.name)
	case *Literal:
		if _, isNull := n.value.(ir.IRNull); isNull {
			obj["null"] = ir.IRBool(true)
		} else {
			obj["value"] = n.value
		}
	default:
		args := ir.IRArray{}
		for _, a := range e.node.Args() {
			if a.Value == nil {
				continue
			}
			args = append(args, ir.IRObject{
				"name":  ir.IRString(a.Name),
				"value": a.Value.canonical(),
			})
		}
		obj["args"] = args
	}
	return obj
}

// snake converts CamelCase to snake_case: "BitwiseAnd" -> "bitwise_and".
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
