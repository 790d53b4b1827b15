package queryir

import (
	"fmt"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// ValidationResult lists everything wrong with a statement.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems are human readable, in discovery order.
	Problems []string
}

// Validate checks that a statement can be compiled:
//  1. a FROM table and at least one projection
//  2. every expression reads only the FROM table
//  3. the filter is boolean and contains no reduction
//  4. when reducing or grouping, column projections are group keys
//  5. projection names are unique
//  6. limit and offset are not negative
//
// Validate is a pure function with no side effects.
func Validate(query Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validateQuery(query)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case *Select:
		if query == nil {
			v.addProblem("nil select")
			return
		}
		v.validateSelect(query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type: %T", q)
	}
}

func (v *validator) validateSelect(sel *Select) {
	if sel.From == nil {
		v.addProblem("missing FROM table")
	}
	if len(sel.Projections) == 0 {
		v.addProblem("empty projection list")
	}

	aggregate := len(sel.GroupBy) > 0
	names := map[string]bool{}
	for i, p := range sel.Projections {
		if p == nil {
			v.addProblem("projection %d is nil", i)
			continue
		}
		v.checkSource(sel.From, p)
		if expr.ContainsReduction(p) {
			aggregate = true
		}
		name := p.Name()
		if names[name] {
			v.addProblem("duplicate projection name %q", name)
		}
		names[name] = true
	}

	for i, k := range sel.GroupBy {
		if k == nil {
			v.addProblem("group key %d is nil", i)
			continue
		}
		v.checkSource(sel.From, k)
		if expr.ContainsReduction(k) {
			v.addProblem("group key %s contains a reduction", k)
		}
	}

	if aggregate {
		for _, p := range sel.Projections {
			if p != nil && p.Type().IsColumn() && !isGroupKey(p, sel.GroupBy) {
				v.addProblem("projection %s is neither reduced nor grouped", p)
			}
		}
	}

	if f := sel.Filter; f != nil {
		v.checkSource(sel.From, f)
		if f.Type().DType != ir.Boolean {
			v.addProblem("filter must be boolean, got %s", f.Type())
		}
		if expr.ContainsReduction(f) {
			v.addProblem("filter %s contains a reduction", f)
		}
	}

	if l := sel.Limit; l != nil {
		if l.Count < 0 {
			v.addProblem("negative limit %d", l.Count)
		}
		if l.Offset < 0 {
			v.addProblem("negative offset %d", l.Offset)
		}
	}
}

// checkSource reports expressions that read a table other than from.
func (v *validator) checkSource(from *expr.Table, e *expr.Expr) {
	if from == nil {
		return
	}
	for _, t := range expr.Tables(e) {
		if t != from {
			v.addProblem("expression %s reads table %q, not %q", e, t.Name(), from.Name())
		}
	}
}

func isGroupKey(e *expr.Expr, keys []*expr.Expr) bool {
	for _, k := range keys {
		if k != nil && e.Equals(k) {
			return true
		}
	}
	return false
}
