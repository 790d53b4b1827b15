package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/queryir"
	"github.com/roach88/exprext/internal/sqlgen"
)

// SourceAlias is the alias given to the FROM table.
const SourceAlias = "t0"

// InvalidQueryError is returned when a statement fails queryir.Validate.
type InvalidQueryError struct {
	Problems []string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + strings.Join(e.Problems, "; ")
}

// SQLCompiler compiles statements to parameterized SQL for one dialect.
//
// Expression fragments come from Registry; non-null literals are always
// bound as parameters, never interpolated.
type SQLCompiler struct {
	Dialect  sqlgen.Dialect
	Registry *sqlgen.Registry
}

// NewSQLCompiler creates a compiler using the default rule registry.
func NewSQLCompiler(d sqlgen.Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d, Registry: sqlgen.Default()}
}

// Compile converts a statement to SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if result := queryir.Validate(q); !result.Valid {
		return "", nil, &InvalidQueryError{Problems: result.Problems}
	}

	switch query := q.(type) {
	case *queryir.Select:
		return c.compileSelect(query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *SQLCompiler) compileSelect(q *queryir.Select) (string, []any, error) {
	registry := c.Registry
	if registry == nil {
		registry = sqlgen.Default()
	}
	tr := registry.NewTranslator(c.Dialect,
		sqlgen.WithTableAlias(q.From, SourceAlias),
		sqlgen.WithParameters(),
	)

	var b strings.Builder
	b.WriteString("SELECT ")
	for i, p := range q.Projections {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := tr.Translate(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile projection %s: %w", p.Name(), err)
		}
		b.WriteString(s)
		if needsAlias(p) {
			b.WriteString(" AS ")
			b.WriteString(tr.QuoteIdentifier(p.Name()))
		}
	}

	b.WriteString(" FROM ")
	b.WriteString(tr.QuoteIdentifier(q.From.Name()))
	b.WriteString(" AS ")
	b.WriteString(SourceAlias)

	if q.Filter != nil {
		s, err := tr.Translate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(s)
	}

	if len(q.GroupBy) > 0 {
		keys := make([]string, len(q.GroupBy))
		for i, k := range q.GroupBy {
			s, err := tr.Translate(k)
			if err != nil {
				return "", nil, fmt.Errorf("compile group key %s: %w", k.Name(), err)
			}
			keys[i] = s
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(keys, ", "))
	}

	if l := q.Limit; l != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(l.Count, 10))
		if l.Offset > 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.FormatInt(l.Offset, 10))
		}
	}

	return b.String(), tr.Params(), nil
}

// needsAlias is false for bare, unrenamed column references, whose output
// name already matches.
func needsAlias(e *expr.Expr) bool {
	if _, ok := e.Op().(*expr.Column); ok {
		return e.HasAlias()
	}
	return true
}
