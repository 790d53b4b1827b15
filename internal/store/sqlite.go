package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
)

const sqliteDriverName = "sqlite3_exprext"

var registerOnce sync.Once

// registerSQLiteDriver registers the sqlite3 driver with the bitwise
// aggregates attached to every new connection.
func registerSQLiteDriver() {
	registerOnce.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				aggregates := map[string]func() *bitFold{
					"bit_and": func() *bitFold { return &bitFold{op: func(a, b int64) int64 { return a & b }} },
					"bit_or":  func() *bitFold { return &bitFold{op: func(a, b int64) int64 { return a | b }} },
					"bit_xor": func() *bitFold { return &bitFold{op: func(a, b int64) int64 { return a ^ b }} },
				}
				for name, ctor := range aggregates {
					if err := conn.RegisterAggregator(name, ctor, true); err != nil {
						return fmt.Errorf("register %s: %w", name, err)
					}
				}
				return nil
			},
		})
	})
}

// bitFold is a sqlite aggregate folding integers with op.
type bitFold struct {
	op   func(a, b int64) int64
	acc  int64
	seen bool
}

// Step receives one argument value; NULLs are skipped.
func (f *bitFold) Step(v any) error {
	if v == nil {
		return nil
	}
	n, ok := v.(int64)
	if !ok {
		return fmt.Errorf("bitwise aggregate over non-integer %T", v)
	}
	if !f.seen {
		f.acc, f.seen = n, true
		return nil
	}
	f.acc = f.op(f.acc, n)
	return nil
}

// Done returns NULL when no non-null value was seen.
func (f *bitFold) Done() (any, error) {
	if !f.seen {
		return nil, nil
	}
	return f.acc, nil
}
