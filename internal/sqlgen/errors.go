package sqlgen

import (
	"errors"
	"fmt"

	"github.com/roach88/exprext/internal/expr"
)

// UnsupportedOperationError reports that no compilation rule is registered
// for an operation kind in a dialect.
type UnsupportedOperationError struct {
	Kind    expr.Kind
	Dialect Dialect
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %s is not supported by dialect %s", e.Kind, e.Dialect)
}

// IsUnsupported returns true if err is or wraps an UnsupportedOperationError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedOperationError
	return errors.As(err, &ue)
}
