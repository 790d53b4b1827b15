package ir

// OperationSpec is a declaratively defined operation, as compiled from a CUE
// `operation: <Kind>: {...}` block. It carries no behavior; the extension
// package turns it into a definition, a bound method and SQL rules.
type OperationSpec struct {
	Kind      string             `json:"kind"`
	Method    string             `json:"method,omitempty"`    // binding-layer method name; empty = not bound
	Reduction bool               `json:"reduction,omitempty"` // many rows -> one value
	Receiver  string             `json:"receiver,omitempty"`  // slot the method is invoked on
	Args      []ArgSpec          `json:"args"`                // declaration order
	Output    OutputSpec         `json:"output"`
	SQL       map[string]SQLSpec `json:"sql,omitempty"` // dialect -> rendering
}

// ArgSpec declares one argument slot and its constraint.
type ArgSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`  // family ("integer", "numeric", "boolean", ...) or concrete type name
	Shape    string `json:"shape"` // "column", "scalar" or "any"
	Optional bool   `json:"optional,omitempty"`
}

// OutputSpec declares how the output type is derived.
// Exactly one of Like and Type is set.
type OutputSpec struct {
	Like  string `json:"like,omitempty"`  // take the element type of this slot
	Type  string `json:"type,omitempty"`  // fixed element type
	Shape string `json:"shape"`           // "scalar", "column" or "elementwise"
}

// SQLSpec declares how an operation renders for one dialect.
type SQLSpec struct {
	Func string   `json:"function"`
	Args []string `json:"args,omitempty"` // positional slots; default: receiver for reductions, all slots otherwise
}

// Slot returns the named argument spec.
func (s *OperationSpec) Slot(name string) (ArgSpec, bool) {
	for _, a := range s.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgSpec{}, false
}
