// Package expr provides the typed expression graph that operations are
// defined over.
//
// ARCHITECTURE:
//
//	[Definition + slot rules] → Bind → [*Op node] → wrapped in [*Expr]
//	[MethodTable] → capability check on receiver → Definition.Bind
//
// Nodes are immutable once constructed. An Expr owns exactly one node and
// child expressions are shared freely, so expression trees form a DAG.
//
// EXTENSION POINTS:
//
// A new operation is a Definition: a Kind, ordered Slots each carrying a
// Rule, and an OutputRule computing the result type from the bound
// arguments. Binding an operation as a method on a capability is a Method
// entry in a MethodTable. Neither mutates shared state; tables are built
// explicitly and extended by copying (MethodTable.With).
//
// ERRORS:
//
//   - ValidationError: an argument violates its slot rule, is missing, or is unknown
//   - TypeError: a method is invoked on a receiver lacking the capability
package expr
