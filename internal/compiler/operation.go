package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/exprext/internal/ir"
)

// CompileOperation parses a CUE value into an OperationSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the operation struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`operation: BitwiseAnd: { ... }`)
//	spec, err := CompileOperation(v.LookupPath(cue.ParsePath("operation.BitwiseAnd")))
//
// Defaults: shape "any" for arguments; the receiver is "arg" when that slot
// exists, else the first declared slot; the output shape is "scalar" for
// reductions and "elementwise" otherwise.
func CompileOperation(v cue.Value) (*ir.OperationSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.OperationSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Kind = labels[len(labels)-1].String()
	}

	var err error
	if spec.Method, err = optionalString(v, "method"); err != nil {
		return nil, err
	}
	if spec.Reduction, err = optionalBool(v, "reduction"); err != nil {
		return nil, err
	}
	if spec.Receiver, err = optionalString(v, "receiver"); err != nil {
		return nil, err
	}

	spec.Args, err = parseArgs(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Args) == 0 {
		return nil, &CompileError{
			Field:   "args",
			Message: "at least one argument is required",
			Pos:     v.Pos(),
		}
	}
	if spec.Receiver == "" {
		spec.Receiver = spec.Args[0].Name
		if _, ok := spec.Slot("arg"); ok {
			spec.Receiver = "arg"
		}
	}

	spec.Output, err = parseOutput(v, spec.Reduction)
	if err != nil {
		return nil, err
	}

	spec.SQL, err = parseSQL(v)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// parseArgs extracts argument slots in declaration order.
func parseArgs(v cue.Value) ([]ir.ArgSpec, error) {
	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return nil, &CompileError{
			Field:   "args",
			Message: "args is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := argsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var args []ir.ArgSpec
	for iter.Next() {
		argVal := iter.Value()
		arg := ir.ArgSpec{Name: iter.Label()}

		typeVal := argVal.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   "type",
				Message: fmt.Sprintf("argument %q: type is required", arg.Name),
				Pos:     argVal.Pos(),
			}
		}
		if arg.Type, err = typeVal.String(); err != nil {
			return nil, formatCUEError(err)
		}

		if arg.Shape, err = optionalString(argVal, "shape"); err != nil {
			return nil, err
		}
		if arg.Shape == "" {
			arg.Shape = "any"
		}
		if arg.Optional, err = optionalBool(argVal, "optional"); err != nil {
			return nil, err
		}

		args = append(args, arg)
	}
	return args, nil
}

func parseOutput(v cue.Value, reduction bool) (ir.OutputSpec, error) {
	var out ir.OutputSpec

	outVal := v.LookupPath(cue.ParsePath("output"))
	if !outVal.Exists() {
		return out, &CompileError{
			Field:   "output",
			Message: "output is required",
			Pos:     v.Pos(),
		}
	}

	var err error
	if out.Like, err = optionalString(outVal, "like"); err != nil {
		return out, err
	}
	if out.Type, err = optionalString(outVal, "type"); err != nil {
		return out, err
	}
	if (out.Like == "") == (out.Type == "") {
		return out, &CompileError{
			Field:   "output",
			Message: "exactly one of like and type is required",
			Pos:     outVal.Pos(),
		}
	}
	if out.Shape, err = optionalString(outVal, "shape"); err != nil {
		return out, err
	}
	if out.Shape == "" {
		out.Shape = "elementwise"
		if reduction {
			out.Shape = "scalar"
		}
	}
	return out, nil
}

// parseSQL extracts per-dialect renderings. Dialect keys are sorted so the
// resulting spec does not depend on declaration order.
func parseSQL(v cue.Value) (map[string]ir.SQLSpec, error) {
	sqlVal := v.LookupPath(cue.ParsePath("sql"))
	if !sqlVal.Exists() {
		return nil, nil
	}

	iter, err := sqlVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	out := map[string]ir.SQLSpec{}
	for iter.Next() {
		dialect := iter.Label()
		dv := iter.Value()

		fn, err := optionalString(dv, "function")
		if err != nil {
			return nil, err
		}
		if fn == "" {
			return nil, &CompileError{
				Field:   "sql",
				Message: fmt.Sprintf("dialect %q: function is required", dialect),
				Pos:     dv.Pos(),
			}
		}
		spec := ir.SQLSpec{Func: fn}

		argsVal := dv.LookupPath(cue.ParsePath("args"))
		if argsVal.Exists() {
			list, err := argsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for list.Next() {
				s, err := list.Value().String()
				if err != nil {
					return nil, formatCUEError(err)
				}
				spec.Args = append(spec.Args, s)
			}
		}
		out[dialect] = spec
	}
	return out, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// SortedDialects returns the dialect keys of spec.SQL in sorted order.
func SortedDialects(spec *ir.OperationSpec) []string {
	out := make([]string, 0, len(spec.SQL))
	for d := range spec.SQL {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
