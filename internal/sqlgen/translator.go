package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
)

// Translator holds the state of one compilation pass: the target dialect,
// table aliases, collected bind parameters and a memo of already translated
// nodes. A Translator is not safe for concurrent use; create one per pass.
type Translator struct {
	registry     *Registry
	dialect      Dialect
	aliases      map[*expr.Table]string
	parameterize bool
	params       []any
	memo         map[expr.Node]string
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTableAlias qualifies columns of tbl with alias.
func WithTableAlias(tbl *expr.Table, alias string) TranslatorOption {
	return func(t *Translator) {
		t.aliases[tbl] = alias
	}
}

// WithParameters emits non-null literals as bind parameters instead of
// inlining them. Collected values are returned by Params.
func WithParameters() TranslatorOption {
	return func(t *Translator) {
		t.parameterize = true
	}
}

// NewTranslator starts a compilation pass for dialect d.
func (r *Registry) NewTranslator(d Dialect, opts ...TranslatorOption) *Translator {
	t := &Translator{
		registry: r,
		dialect:  d,
		aliases:  make(map[*expr.Table]string),
		memo:     make(map[expr.Node]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Translator) Dialect() Dialect { return t.dialect }

// Params returns the bind parameters collected so far, in placeholder order.
func (t *Translator) Params() []any { return t.params }

// Translate compiles e by dispatching on (kind, dialect). A node shared by
// several parents is translated once per pass.
func (t *Translator) Translate(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("cannot translate nil expression")
	}
	node := e.Op()
	if s, ok := t.memo[node]; ok {
		return s, nil
	}
	kind := node.Kind()
	rule, ok := t.registry.Lookup(kind, t.dialect)
	if !ok {
		return "", &UnsupportedOperationError{Kind: kind, Dialect: t.dialect}
	}
	s, err := rule(t, e)
	if err != nil {
		return "", err
	}
	if t.memoizable() {
		t.memo[node] = s
	}
	return s, nil
}

// memoizable is false when reusing a fragment would reuse positional "?"
// markers without re-binding their values.
func (t *Translator) memoizable() bool {
	return !t.parameterize || styles[t.dialect].numberedParams
}

// TranslateArg translates the named argument of e's operation. ok is false
// when the slot is absent.
func (t *Translator) TranslateArg(e *expr.Expr, name string) (sql string, ok bool, err error) {
	arg := Arg(e, name)
	if arg == nil {
		return "", false, nil
	}
	sql, err = t.Translate(arg)
	return sql, err == nil, err
}

// QuoteIdentifier quotes name for the target dialect.
func (t *Translator) QuoteIdentifier(name string) string {
	return t.dialect.QuoteIdentifier(name)
}

// Bind records a bind parameter and returns its placeholder.
func (t *Translator) Bind(v any) string {
	t.params = append(t.params, v)
	return t.dialect.Placeholder(len(t.params))
}

// TableAlias returns the alias registered for tbl, if any.
func (t *Translator) TableAlias(tbl *expr.Table) (string, bool) {
	a, ok := t.aliases[tbl]
	return a, ok
}

// Arg returns the named argument of e's operation, or nil.
func Arg(e *expr.Expr, name string) *expr.Expr {
	op, ok := e.Op().(*expr.Op)
	if !ok {
		return nil
	}
	return op.Arg(name)
}

// FuncCall renders name(arg, ...).
func FuncCall(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

// Filtered appends a FILTER clause to an aggregate call.
func Filtered(agg, pred string) string {
	return agg + " FILTER (WHERE " + pred + ")"
}

// ReductionRule compiles a reduction over slot "arg" to fn(arg). With a
// "where" argument it becomes fn(arg) FILTER (WHERE pred), or
// fn(CASE WHEN pred THEN arg END) on dialects without FILTER.
func ReductionRule(fn string) Rule {
	return ReductionRuleFor(fn, "arg", "where")
}

// ReductionRuleFor is ReductionRule with explicit slot names. An empty
// whereSlot disables filtering.
func ReductionRuleFor(fn, argSlot, whereSlot string) Rule {
	return func(t *Translator, e *expr.Expr) (string, error) {
		arg, ok, err := t.TranslateArg(e, argSlot)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("%s: missing argument %q", e.Op().Kind(), argSlot)
		}
		if whereSlot == "" {
			return FuncCall(fn, arg), nil
		}
		pred, hasWhere, err := t.TranslateArg(e, whereSlot)
		if err != nil {
			return "", err
		}
		if !hasWhere {
			return FuncCall(fn, arg), nil
		}
		if !t.dialect.SupportsFilterClause() {
			return FuncCall(fn, "CASE WHEN "+pred+" THEN "+arg+" END"), nil
		}
		return Filtered(FuncCall(fn, arg), pred), nil
	}
}

// FuncRule compiles an operation to fn(slot1, slot2, ...). Absent optional
// slots are skipped.
func FuncRule(fn string, slots ...string) Rule {
	return func(t *Translator, e *expr.Expr) (string, error) {
		args := make([]string, 0, len(slots))
		for _, name := range slots {
			s, ok, err := t.TranslateArg(e, name)
			if err != nil {
				return "", err
			}
			if ok {
				args = append(args, s)
			}
		}
		return FuncCall(fn, args...), nil
	}
}

func columnRule(t *Translator, e *expr.Expr) (string, error) {
	c, ok := e.Op().(*expr.Column)
	if !ok {
		return "", fmt.Errorf("column rule applied to %s", e.Op().Kind())
	}
	name := t.QuoteIdentifier(c.Name())
	if alias, ok := t.TableAlias(c.Table()); ok {
		return alias + "." + name, nil
	}
	return name, nil
}

func literalRule(t *Translator, e *expr.Expr) (string, error) {
	l, ok := e.Op().(*expr.Literal)
	if !ok {
		return "", fmt.Errorf("literal rule applied to %s", e.Op().Kind())
	}
	if _, isNull := l.Value().(ir.IRNull); isNull {
		return "NULL", nil
	}
	if t.parameterize {
		return t.Bind(ir.ToGo(l.Value())), nil
	}
	return inlineLiteral(t.dialect, l.Value(), l.Type().DType)
}

func inlineLiteral(d Dialect, v ir.IRValue, dtype ir.DataType) (string, error) {
	switch val := v.(type) {
	case ir.IRBool:
		if val {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.IRString:
		s := QuoteString(string(val))
		if styles[d].typedTemporal {
			switch dtype {
			case ir.Date:
				return "DATE " + s, nil
			case ir.Timestamp:
				return "TIMESTAMP " + s, nil
			}
		}
		return s, nil
	}
	return "", fmt.Errorf("cannot render literal of type %T", v)
}
