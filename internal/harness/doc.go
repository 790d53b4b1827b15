// Package harness runs conformance scenarios for expressions.
//
// A scenario builds one expression over one table through the method table,
// compiles it for each dialect and checks the outcome. When a value is
// expected it is checked three ways: against the in-memory reference
// evaluator and against every embedded engine (sqlite and duckdb) holding
// the scenario's rows.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: bitwise_and_where_true
//	description: "What this scenario validates"
//	ops: ops/                  # optional CUE operation declarations
//	table:
//	  name: t
//	  columns:
//	    - {name: x, type: int64}
//	  rows:
//	    - [10]
//	    - [40]
//	expr:
//	  call: bitwise_and
//	  on: {col: x}
//	  args:
//	    where: {lit: true}
//	dialects: [postgres, duckdb, sqlite, mapd]
//	expect:
//	  type: int64 scalar
//	  value: 8
//	  sql:
//	    postgres: 'bit_and("x") FILTER (WHERE TRUE)'
//	  unsupported: [mapd]
//
// A scenario expecting the expression to be rejected sets
// expect.error to "validation" or "type" instead.
//
// # Checks
//
//   - build: the expression builds, or fails with the expected category
//   - type: the expression type matches
//   - sql: each compiled fragment matches, and compiling again agrees
//   - unsupported: exactly the listed dialects have no rule
//   - value: reference evaluator and engines agree with the expected value
//
// # Golden Files
//
// RunWithGolden snapshots the type and compiled SQL of a scenario in
// testdata/golden/<name>.golden as canonical JSON.
package harness
