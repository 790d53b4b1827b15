package expr

import (
	"sort"

	"github.com/roach88/exprext/internal/ir"
)

// Kwargs are the keyword arguments of a method call.
type Kwargs map[string]*Expr

// Method is an operation exposed on a receiver capability.
type Method struct {
	Name string

	// Kind is the kind of node the method builds.
	Kind Kind

	// Receiver is the capability the receiver must have.
	Receiver Rule

	// Call builds the expression. The receiver has already been checked.
	Call func(recv *Expr, kw Kwargs) (*Expr, error)
}

// BindMethod exposes def as a method whose receiver fills the slot named
// receiverSlot. The receiver capability is that slot's rule.
func BindMethod(name string, def *Definition, receiverSlot string) Method {
	slot, ok := def.Slot(receiverSlot)
	if !ok {
		panic("expr: definition " + string(def.Kind) + " has no slot " + receiverSlot)
	}
	return Method{
		Name:     name,
		Kind:     def.Kind,
		Receiver: slot.Rule,
		Call: func(recv *Expr, kw Kwargs) (*Expr, error) {
			args := make(Args, len(kw)+1)
			for k, v := range kw {
				if k == receiverSlot {
					return nil, &ValidationError{Op: def.Kind, Arg: k, Reason: "given as both receiver and keyword"}
				}
				if v != nil {
					args[k] = v
				}
			}
			args[receiverSlot] = recv
			return def.Bind(args)
		},
	}
}

// MethodTable is an immutable per-capability function table.
// Several methods may share a name with different receiver capabilities;
// the most recently added matching entry wins.
type MethodTable struct {
	byName map[string][]Method
}

// NewMethodTable builds a table from methods.
func NewMethodTable(methods ...Method) *MethodTable {
	return (&MethodTable{}).With(methods...)
}

// With returns a new table containing the receiver's methods plus methods.
// The receiver is not modified.
func (mt *MethodTable) With(methods ...Method) *MethodTable {
	out := &MethodTable{byName: make(map[string][]Method, len(mt.byName)+len(methods))}
	for name, ms := range mt.byName {
		out.byName[name] = append([]Method(nil), ms...)
	}
	for _, m := range methods {
		// Prepend so later registrations shadow earlier ones.
		out.byName[m.Name] = append([]Method{m}, out.byName[m.Name]...)
	}
	return out
}

// Call invokes method name on recv.
//
// Fails with *TypeError when no method has that name or the receiver has
// none of the capabilities it is defined for. Argument problems surface as
// *ValidationError from the method itself.
func (mt *MethodTable) Call(recv *Expr, name string, kw Kwargs) (*Expr, error) {
	if recv == nil {
		return nil, &TypeError{Method: name}
	}
	candidates := mt.byName[name]
	for _, m := range candidates {
		if m.Receiver.Accepts(recv.Type()) {
			return m.Call(recv, kw)
		}
	}
	accepted := make([]string, 0, len(candidates))
	for _, m := range candidates {
		accepted = append(accepted, m.Receiver.String())
	}
	return nil, &TypeError{Method: name, Receiver: recv.Type(), Accepted: accepted}
}

// Lookup returns the methods registered under name, most recent first.
func (mt *MethodTable) Lookup(name string) []Method {
	return append([]Method(nil), mt.byName[name]...)
}

// Names returns all method names, sorted.
func (mt *MethodTable) Names() []string {
	names := make([]string, 0, len(mt.byName))
	for n := range mt.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// For returns the sorted names of methods callable on a receiver of type t.
func (mt *MethodTable) For(t ir.ValueType) []string {
	var names []string
	for name, ms := range mt.byName {
		for _, m := range ms {
			if m.Receiver.Accepts(t) {
				names = append(names, name)
				break
			}
		}
	}
	sort.Strings(names)
	return names
}
