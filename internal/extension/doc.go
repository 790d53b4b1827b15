// Package extension installs declaratively defined operations.
//
// An ir.OperationSpec (compiled from CUE by package compiler) becomes three
// things: an expr.Definition, a method in a derived expr.MethodTable and one
// sqlgen rule per declared dialect in a derived sqlgen.Registry. The input
// table and registry are never modified, so code holding the built-in
// tables keeps its behavior.
package extension
