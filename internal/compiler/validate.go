package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/sqlgen"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// OperationSpec errors (E101-E119)
	ErrInvalidKind       = "E101" // kind must be CamelCase
	ErrInvalidMethodName = "E102" // method must be snake_case
	ErrNoArgs            = "E103" // at least one argument required
	ErrInvalidArgType    = "E104" // unknown type family or type name
	ErrDuplicateName     = "E105" // duplicate kind or method across specs
	ErrInvalidShape      = "E106" // shape must be column, scalar or any
	ErrInvalidReceiver   = "E107" // receiver must name a required slot
	ErrInvalidOutput     = "E108" // output like/type/shape invalid
	ErrInvalidSQL        = "E109" // rendering references unknown slots
	ErrUnknownDialect    = "E110" // sql key is not a known dialect
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	kindPattern   = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	methodPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// Validate validates compiled operation specs against schema rules.
// Returns all errors found (does not fail-fast).
// Supports *ir.OperationSpec, ir.OperationSpec and []*ir.OperationSpec;
// slices are additionally checked for duplicate kinds and methods.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.OperationSpec:
		return validateOperation(spec)
	case ir.OperationSpec:
		return validateOperation(&spec)
	case []*ir.OperationSpec:
		return validateAll(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateAll(specs []*ir.OperationSpec) []ValidationError {
	var errs []ValidationError
	kinds := map[string]bool{}
	methods := map[string]string{}
	for _, spec := range specs {
		errs = append(errs, validateOperation(spec)...)

		if kinds[spec.Kind] {
			errs = append(errs, ValidationError{
				Field:   "operation." + spec.Kind,
				Message: fmt.Sprintf("duplicate operation kind %q", spec.Kind),
				Code:    ErrDuplicateName,
			})
		}
		kinds[spec.Kind] = true

		if spec.Method == "" {
			continue
		}
		if prev, ok := methods[spec.Method]; ok {
			errs = append(errs, ValidationError{
				Field:   "operation." + spec.Kind + ".method",
				Message: fmt.Sprintf("method %q already declared by %s", spec.Method, prev),
				Code:    ErrDuplicateName,
			})
		}
		methods[spec.Method] = spec.Kind
	}
	return errs
}

func validateOperation(spec *ir.OperationSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   "operation." + spec.Kind + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	// E101: kind must be CamelCase so derived names stay readable
	if !kindPattern.MatchString(spec.Kind) {
		add("", ErrInvalidKind, "invalid kind %q, expected CamelCase", spec.Kind)
	}

	// E102: method name
	if spec.Method != "" && !methodPattern.MatchString(spec.Method) {
		add(".method", ErrInvalidMethodName, "invalid method name %q, expected snake_case", spec.Method)
	}

	// E103: at least one argument
	if len(spec.Args) == 0 {
		add(".args", ErrNoArgs, "at least one argument is required")
	}

	for _, arg := range spec.Args {
		// E104: type family or concrete type
		if _, ok := expr.PredicateByName(arg.Type); !ok {
			add(".args."+arg.Name+".type", ErrInvalidArgType, "invalid type %q for argument %q", arg.Type, arg.Name)
		}
		// E106: shape
		if arg.Shape != "any" {
			if _, err := ir.ParseShape(arg.Shape); err != nil {
				add(".args."+arg.Name+".shape", ErrInvalidShape, "invalid shape %q for argument %q", arg.Shape, arg.Name)
			}
		}
	}

	// E107: receiver must be a required slot
	if recv, ok := spec.Slot(spec.Receiver); !ok {
		add(".receiver", ErrInvalidReceiver, "receiver %q is not an argument", spec.Receiver)
	} else if recv.Optional {
		add(".receiver", ErrInvalidReceiver, "receiver %q must not be optional", spec.Receiver)
	}

	errs = append(errs, validateOutput(spec)...)
	errs = append(errs, validateSQL(spec)...)
	return errs
}

// E108
func validateOutput(spec *ir.OperationSpec) []ValidationError {
	var errs []ValidationError
	field := "operation." + spec.Kind + ".output"
	out := spec.Output

	switch {
	case out.Like != "" && out.Type != "":
		errs = append(errs, ValidationError{Field: field, Code: ErrInvalidOutput,
			Message: "like and type are mutually exclusive"})
	case out.Like != "":
		if _, ok := spec.Slot(out.Like); !ok {
			errs = append(errs, ValidationError{Field: field + ".like", Code: ErrInvalidOutput,
				Message: fmt.Sprintf("like refers to unknown argument %q", out.Like)})
		}
	case out.Type != "":
		if _, err := ir.ParseDataType(out.Type); err != nil {
			errs = append(errs, ValidationError{Field: field + ".type", Code: ErrInvalidOutput,
				Message: fmt.Sprintf("invalid output type %q", out.Type)})
		}
	default:
		errs = append(errs, ValidationError{Field: field, Code: ErrInvalidOutput,
			Message: "one of like and type is required"})
	}

	switch out.Shape {
	case "scalar", "column", "elementwise":
	default:
		errs = append(errs, ValidationError{Field: field + ".shape", Code: ErrInvalidOutput,
			Message: fmt.Sprintf("invalid output shape %q, must be \"scalar\", \"column\" or \"elementwise\"", out.Shape)})
	}
	return errs
}

// E109, E110
func validateSQL(spec *ir.OperationSpec) []ValidationError {
	var errs []ValidationError
	for _, dialect := range SortedDialects(spec) {
		field := "operation." + spec.Kind + ".sql." + dialect
		r := spec.SQL[dialect]

		if _, err := sqlgen.ParseDialect(dialect); err != nil {
			errs = append(errs, ValidationError{Field: field, Code: ErrUnknownDialect,
				Message: fmt.Sprintf("unknown dialect %q", dialect)})
		}
		if r.Func == "" {
			errs = append(errs, ValidationError{Field: field + ".func", Code: ErrInvalidSQL,
				Message: "function is required"})
		}
		for _, a := range r.Args {
			if _, ok := spec.Slot(a); !ok {
				errs = append(errs, ValidationError{Field: field + ".args", Code: ErrInvalidSQL,
					Message: fmt.Sprintf("unknown argument %q", a)})
			}
		}
		if spec.Reduction && len(r.Args) > 1 {
			errs = append(errs, ValidationError{Field: field + ".args", Code: ErrInvalidSQL,
				Message: "reductions render a single argument; filters come from the where slot"})
		}
	}
	return errs
}
