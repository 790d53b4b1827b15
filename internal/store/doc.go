// Package store opens embedded databases used to check compiled SQL
// against a real engine.
//
// Each Open creates an isolated in-memory database:
//
//	sqlite   mattn/go-sqlite3, shared-cache memory DSN named per store
//	duckdb   duckdb/duckdb-go, in-process in-memory database
//
// Other dialects have no embedded engine and fail with
// ErrUnsupportedDialect.
//
// # SQLite Aggregates
//
// SQLite has no bit_and/bit_or/bit_xor. They are registered on every
// connection through a driver ConnectHook under the driver name
// "sqlite3_exprext". Like the built-in aggregates they skip NULLs and
// return NULL over an empty input.
//
// # Database Configuration
//
//   - One open connection per store (SQLite shared cache, DuckDB in-memory)
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
