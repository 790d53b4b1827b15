package expr

import (
	"fmt"
	"sort"

	"github.com/roach88/exprext/internal/ir"
)

// Args maps slot names to argument values for Definition.Bind.
type Args map[string]*Expr

// Slot is one declared argument of an operation.
type Slot struct {
	Name     string
	Rule     Rule
	Optional bool
}

// OutputRule computes the output type from validated arguments.
// Absent optional slots are missing from args.
type OutputRule func(args Args) (ir.ValueType, error)

// Definition declares an operation: its kind, argument slots and output rule.
// Definitions are values shared by every node built from them and must not be
// modified after first use.
type Definition struct {
	Kind  Kind
	Slots []Slot

	// Output computes the node type at construction time.
	Output OutputRule

	// Reduction marks operations that fold many rows into one value.
	Reduction bool
}

// Slot returns the slot with the given name.
func (d *Definition) Slot(name string) (Slot, bool) {
	for _, s := range d.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// Bind validates args against the slots and constructs the node.
//
// Fails with *ValidationError when:
//   - an argument name matches no slot
//   - a required slot is missing
//   - a value does not satisfy its slot rule
//   - a reduction argument itself contains a reduction
//
// Unknown names are reported in sorted order.
func (d *Definition) Bind(args Args) (*Expr, error) {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := d.Slot(name); !ok {
			return nil, &ValidationError{Op: d.Kind, Arg: name, Reason: "unknown argument"}
		}
	}

	present := make(Args, len(args))
	bound := make([]Arg, len(d.Slots))
	for i, slot := range d.Slots {
		v := args[slot.Name]
		bound[i] = Arg{Name: slot.Name, Value: v}
		if v == nil {
			if !slot.Optional {
				return nil, &ValidationError{Op: d.Kind, Arg: slot.Name, Reason: "required argument missing"}
			}
			continue
		}
		if !slot.Rule.Accepts(v.Type()) {
			return nil, &ValidationError{
				Op:   d.Kind,
				Arg:  slot.Name,
				Rule: slot.Rule.String(),
				Got:  v.Type().String(),
			}
		}
		// SQL rejects aggregates nested in aggregate arguments or FILTER.
		if d.Reduction && ContainsReduction(v) {
			return nil, &ValidationError{Op: d.Kind, Arg: slot.Name, Reason: "must not contain a reduction"}
		}
		present[slot.Name] = v
	}

	typ, err := d.Output(present)
	if err != nil {
		if IsValidationError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: output type: %w", d.Kind, err)
	}
	return New(&Op{def: d, args: bound, typ: typ}), nil
}

// ScalarLike outputs the element type of slot, reduced to a scalar.
func ScalarLike(slot string) OutputRule {
	return func(args Args) (ir.ValueType, error) {
		a, ok := args[slot]
		if !ok {
			return ir.ValueType{}, fmt.Errorf("slot %q not bound", slot)
		}
		return ir.ScalarOf(a.Type().DType), nil
	}
}

// Like outputs exactly the type of slot.
func Like(slot string) OutputRule {
	return func(args Args) (ir.ValueType, error) {
		a, ok := args[slot]
		if !ok {
			return ir.ValueType{}, fmt.Errorf("slot %q not bound", slot)
		}
		return a.Type(), nil
	}
}

// ScalarOfType outputs a fixed scalar type.
func ScalarOfType(d ir.DataType) OutputRule {
	return func(Args) (ir.ValueType, error) {
		return ir.ScalarOf(d), nil
	}
}

// WidenedScalar outputs a scalar of the widest type in the family of slot:
// integers become int64 and floats become float64.
func WidenedScalar(slot string) OutputRule {
	return func(args Args) (ir.ValueType, error) {
		a, ok := args[slot]
		if !ok {
			return ir.ValueType{}, fmt.Errorf("slot %q not bound", slot)
		}
		d := a.Type().DType
		switch {
		case d.IsInteger():
			return ir.ScalarOf(ir.Int64), nil
		case d.IsFloating():
			return ir.ScalarOf(ir.Float64), nil
		default:
			return ir.ScalarOf(d), nil
		}
	}
}

// ElementwiseOf outputs element type d with a column shape if any of the
// listed slots is a column, else a scalar shape.
func ElementwiseOf(d ir.DataType, slots ...string) OutputRule {
	return func(args Args) (ir.ValueType, error) {
		return ir.ValueType{DType: d, Shape: elementwiseShape(args, slots)}, nil
	}
}

// ElementwiseLike outputs the element type of slot, shaped as ElementwiseOf.
func ElementwiseLike(slot string, slots ...string) OutputRule {
	return func(args Args) (ir.ValueType, error) {
		a, ok := args[slot]
		if !ok {
			return ir.ValueType{}, fmt.Errorf("slot %q not bound", slot)
		}
		return ir.ValueType{DType: a.Type().DType, Shape: elementwiseShape(args, append([]string{slot}, slots...))}, nil
	}
}

func elementwiseShape(args Args, slots []string) ir.Shape {
	for _, s := range slots {
		if a, ok := args[s]; ok && a.Type().IsColumn() {
			return ir.Column
		}
	}
	return ir.Scalar
}
