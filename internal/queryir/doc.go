// Package queryir provides a small statement representation around
// expressions: which table to read, which expressions to project, how to
// filter and group.
//
// ARCHITECTURE:
//
//	[expr graph] --> [queryir.Select] --> [querysql.SQLCompiler] --> SQL + params
//
// Expressions are compiled fragment by fragment through the sqlgen
// registry; queryir only arranges them into a statement and checks that
// the arrangement makes sense before any SQL is produced.
//
// SEALED INTERFACES:
//
// Query is a sealed interface using the marker method pattern. Only types
// in this package implement it, so backends can switch exhaustively:
//
//	switch q := query.(type) {
//	case *Select:
//	    // Handle select
//	default:
//	    // Impossible - compiler knows all Query types
//	}
//
// SINGLE SOURCE:
//
// Every Select reads exactly one table. Expressions referencing any other
// table are rejected by Validate. Joins are out of scope.
package queryir
