package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect names a target SQL dialect.
type Dialect string

const (
	Postgres Dialect = "postgres"
	DuckDB   Dialect = "duckdb"
	SQLite   Dialect = "sqlite"
	MapD     Dialect = "mapd"
)

type style struct {
	quoteIdentifiers bool
	filterClause     bool
	numberedParams   bool
	typedTemporal    bool // DATE '...' / TIMESTAMP '...' literals
}

var styles = map[Dialect]style{
	Postgres: {quoteIdentifiers: true, filterClause: true, numberedParams: true, typedTemporal: true},
	DuckDB:   {quoteIdentifiers: true, filterClause: true, typedTemporal: true},
	SQLite:   {quoteIdentifiers: true, filterClause: true},
	MapD:     {filterClause: false, typedTemporal: true},
}

// Dialects returns the known dialects in a stable order.
func Dialects() []Dialect {
	return []Dialect{Postgres, DuckDB, SQLite, MapD}
}

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	d := Dialect(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := styles[d]; !ok {
		return "", fmt.Errorf("unknown dialect %q: must be one of %v", name, Dialects())
	}
	return d, nil
}

func (d Dialect) String() string { return string(d) }

// SupportsFilterClause reports whether aggregates accept FILTER (WHERE ...).
func (d Dialect) SupportsFilterClause() bool {
	return styles[d].filterClause
}

// QuoteIdentifier quotes name for the dialect. Embedded quotes are doubled.
func (d Dialect) QuoteIdentifier(name string) string {
	if !styles[d].quoteIdentifiers {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Placeholder returns the n-th (1-based) bind parameter marker.
func (d Dialect) Placeholder(n int) string {
	if styles[d].numberedParams {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// QuoteString renders a SQL string literal.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
