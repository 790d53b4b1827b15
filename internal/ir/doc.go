// Package ir provides the foundational type and value definitions for exprext.
//
// This package contains data types, shapes, schemas, literal values and the
// declarative OperationSpec produced by the CUE compiler. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float literals (canonical encoding forbids floats); float columns are fine
//   - Every expression carries a ValueType: element DataType plus Shape
//   - Canonical JSON is the only serialization used for fingerprints
//   - All JSON tags use snake_case
package ir
