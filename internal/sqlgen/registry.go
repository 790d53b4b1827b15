package sqlgen

import (
	"sort"
	"sync"

	"github.com/roach88/exprext/internal/expr"
)

// Rule translates one expression into a SQL fragment. Rules call
// t.Translate for child expressions.
type Rule func(t *Translator, e *expr.Expr) (string, error)

type ruleKey struct {
	kind    expr.Kind
	dialect Dialect
}

// Builder accumulates rules before freezing them into a Registry.
type Builder struct {
	rules map[ruleKey]Rule
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{rules: make(map[ruleKey]Rule)}
}

// Register binds rule to exactly one (kind, dialect) pair, replacing any
// previous rule for that pair.
func (b *Builder) Register(kind expr.Kind, d Dialect, rule Rule) *Builder {
	b.rules[ruleKey{kind, d}] = rule
	return b
}

// RegisterAll binds the same rule in several dialects.
func (b *Builder) RegisterAll(kind expr.Kind, rule Rule, dialects ...Dialect) *Builder {
	for _, d := range dialects {
		b.Register(kind, d, rule)
	}
	return b
}

// Build freezes the builder. Later changes to the builder do not affect the
// returned registry.
func (b *Builder) Build() *Registry {
	rules := make(map[ruleKey]Rule, len(b.rules))
	for k, r := range b.rules {
		rules[k] = r
	}
	return &Registry{rules: rules}
}

// Registry is an immutable (kind × dialect) → Rule table. Safe for
// concurrent use.
type Registry struct {
	rules map[ruleKey]Rule
}

// Default returns the registry of built-in rules. Built once on first use.
var Default = sync.OnceValue(func() *Registry {
	b := NewBuilder()
	registerBuiltins(b)
	return b.Build()
})

// Lookup returns the rule for (kind, dialect).
func (r *Registry) Lookup(kind expr.Kind, d Dialect) (Rule, bool) {
	rule, ok := r.rules[ruleKey{kind, d}]
	return rule, ok
}

// Supports reports whether a rule exists for (kind, dialect).
func (r *Registry) Supports(kind expr.Kind, d Dialect) bool {
	_, ok := r.rules[ruleKey{kind, d}]
	return ok
}

// DialectsFor returns the dialects with a rule for kind, sorted.
func (r *Registry) DialectsFor(kind expr.Kind) []Dialect {
	var out []Dialect
	for k := range r.rules {
		if k.kind == kind {
			out = append(out, k.dialect)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extend returns a new registry holding this registry's rules plus whatever
// fn registers. The receiver is unchanged.
func (r *Registry) Extend(fn func(b *Builder)) *Registry {
	b := NewBuilder()
	for k, rule := range r.rules {
		b.rules[k] = rule
	}
	fn(b)
	return b.Build()
}

// Compile translates e for dialect d in a fresh pass. Column references are
// unqualified and literals are inlined.
func (r *Registry) Compile(e *expr.Expr, d Dialect) (string, error) {
	return r.NewTranslator(d).Translate(e)
}

// Compile translates e with the default registry.
func Compile(e *expr.Expr, d Dialect) (string, error) {
	return Default().Compile(e, d)
}
