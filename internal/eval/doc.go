// Package eval computes expression results in memory.
//
// It is the semantic oracle for the conformance harness: compiled SQL run on
// a real engine must agree with what Eval returns for the same rows.
// Semantics follow SQL: reductions skip NULLs and return NULL over an empty
// input (count returns 0), comparisons with NULL yield NULL, AND/OR use
// three-valued logic.
//
// Values are plain Go: nil, bool, int64, float64, string. Temporal values
// are carried as strings.
package eval
