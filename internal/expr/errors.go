package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/exprext/internal/ir"
)

// ValidationError reports an argument that fails its declared slot rule
// during node construction.
type ValidationError struct {
	// Op is the operation being constructed.
	Op Kind

	// Arg is the offending argument slot.
	Arg string

	// Rule describes the constraint, e.g. "integer column". Empty for
	// missing/unknown argument errors.
	Rule string

	// Got is the type of the supplied value, if any.
	Got string

	// Reason is set for structural failures (missing, unknown, duplicate).
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: argument %q: %s", e.Op, e.Arg, e.Reason)
	}
	return fmt.Sprintf("%s: argument %q must be %s, got %s", e.Op, e.Arg, e.Rule, e.Got)
}

// TypeError reports a method invoked on a receiver that lacks the required
// capability, or a method name that does not exist at all.
type TypeError struct {
	Method   string
	Receiver ir.ValueType

	// Accepted lists the capabilities the method is defined for.
	// Empty when no method with this name exists.
	Accepted []string
}

func (e *TypeError) Error() string {
	if len(e.Accepted) == 0 {
		return fmt.Sprintf("%s: no such method on %s", e.Method, e.Receiver)
	}
	return fmt.Sprintf("%s: not defined for %s (requires %s)",
		e.Method, e.Receiver, strings.Join(e.Accepted, " or "))
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTypeError returns true if err is or wraps a TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}
