package extension

import (
	"errors"
	"fmt"

	"github.com/roach88/exprext/internal/compiler"
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/sqlgen"
)

// Installed is the outcome of Install.
type Installed struct {
	Methods     *expr.MethodTable
	Registry    *sqlgen.Registry
	Definitions map[expr.Kind]*expr.Definition
}

// Install derives a method table and registry that also carry specs.
//
// Specs are validated first; a kind that already has rules in registry is
// rejected so built-in operations cannot be redefined.
func Install(specs []*ir.OperationSpec, methods *expr.MethodTable, registry *sqlgen.Registry) (*Installed, error) {
	if verrs := compiler.Validate(specs); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, v := range verrs {
			errs[i] = v
		}
		return nil, errors.Join(errs...)
	}

	defs := make(map[expr.Kind]*expr.Definition, len(specs))
	var bound []expr.Method
	for _, spec := range specs {
		kind := expr.Kind(spec.Kind)
		if len(registry.DialectsFor(kind)) > 0 {
			return nil, fmt.Errorf("operation %s is already defined", kind)
		}
		def, err := Definition(spec)
		if err != nil {
			return nil, err
		}
		defs[kind] = def
		if spec.Method != "" {
			bound = append(bound, expr.BindMethod(spec.Method, def, spec.Receiver))
		}
	}

	extended := registry.Extend(func(b *sqlgen.Builder) {
		for _, spec := range specs {
			for dialect, r := range spec.SQL {
				b.Register(expr.Kind(spec.Kind), sqlgen.Dialect(dialect), Rule(spec, r))
			}
		}
	})

	return &Installed{
		Methods:     methods.With(bound...),
		Registry:    extended,
		Definitions: defs,
	}, nil
}

// Definition builds the expr.Definition declared by spec.
func Definition(spec *ir.OperationSpec) (*expr.Definition, error) {
	def := &expr.Definition{
		Kind:      expr.Kind(spec.Kind),
		Reduction: spec.Reduction,
	}
	names := make([]string, 0, len(spec.Args))
	for _, a := range spec.Args {
		rule, err := slotRule(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Kind, err)
		}
		def.Slots = append(def.Slots, expr.Slot{Name: a.Name, Rule: rule, Optional: a.Optional})
		names = append(names, a.Name)
	}
	out, err := outputRule(spec.Output, names)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Kind, err)
	}
	def.Output = out
	return def, nil
}

func slotRule(a ir.ArgSpec) (expr.Rule, error) {
	pred, ok := expr.PredicateByName(a.Type)
	if !ok {
		return nil, fmt.Errorf("argument %q: unknown type %q", a.Name, a.Type)
	}
	switch a.Shape {
	case "", "any":
		return expr.ValueOf(pred), nil
	case "column":
		return expr.ColumnOf(pred), nil
	case "scalar":
		return expr.ScalarOf(pred), nil
	default:
		return nil, fmt.Errorf("argument %q: unknown shape %q", a.Name, a.Shape)
	}
}

func outputRule(out ir.OutputSpec, slots []string) (expr.OutputRule, error) {
	if out.Like != "" {
		switch out.Shape {
		case "scalar":
			return expr.ScalarLike(out.Like), nil
		case "column":
			return fixedShape(expr.Like(out.Like), ir.Column), nil
		case "elementwise", "":
			return expr.ElementwiseLike(out.Like, slots...), nil
		}
		return nil, fmt.Errorf("unknown output shape %q", out.Shape)
	}

	d, err := ir.ParseDataType(out.Type)
	if err != nil {
		return nil, err
	}
	switch out.Shape {
	case "scalar":
		return expr.ScalarOfType(d), nil
	case "column":
		return fixedShape(expr.ScalarOfType(d), ir.Column), nil
	case "elementwise", "":
		return expr.ElementwiseOf(d, slots...), nil
	}
	return nil, fmt.Errorf("unknown output shape %q", out.Shape)
}

func fixedShape(rule expr.OutputRule, shape ir.Shape) expr.OutputRule {
	return func(args expr.Args) (ir.ValueType, error) {
		t, err := rule(args)
		if err != nil {
			return ir.ValueType{}, err
		}
		t.Shape = shape
		return t, nil
	}
}

// Rule builds the SQL rule for one dialect rendering of spec.
//
// Reductions render fn(<first listed slot or receiver>) and take their
// filter from a declared "where" slot. Other operations render
// fn(<listed slots>), defaulting to every slot in declaration order.
func Rule(spec *ir.OperationSpec, r ir.SQLSpec) sqlgen.Rule {
	if spec.Reduction {
		arg := spec.Receiver
		if len(r.Args) > 0 {
			arg = r.Args[0]
		}
		where := ""
		if _, ok := spec.Slot("where"); ok {
			where = "where"
		}
		return sqlgen.ReductionRuleFor(r.Func, arg, where)
	}
	slots := r.Args
	if len(slots) == 0 {
		for _, a := range spec.Args {
			slots = append(slots, a.Name)
		}
	}
	return sqlgen.FuncRule(r.Func, slots...)
}
