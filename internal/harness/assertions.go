package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/exprext/internal/eval"
	"github.com/roach88/exprext/internal/ir"
)

// AssertionError is returned when an expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Check    string // What was checked, e.g. "sql[postgres]"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkBuildError compares a build failure category with the expected one.
// got is empty when the expression was built.
func checkBuildError(expect *Expectation, got string, cause error) error {
	if expect.Error == got {
		return nil
	}
	actual := "expression built"
	if got != "" {
		actual = fmt.Sprintf("%s error: %v", got, cause)
	}
	expected := "expression built"
	if expect.Error != "" {
		expected = expect.Error + " error"
	}
	return &AssertionError{Check: "build", Expected: expected, Actual: actual}
}

func checkType(expect *Expectation, got ir.ValueType) error {
	if expect.Type == "" || expect.Type == got.String() {
		return nil
	}
	return &AssertionError{Check: "type", Expected: expect.Type, Actual: got.String()}
}

func checkSQL(expect *Expectation, dialect, got string) error {
	if slices.Contains(expect.Unsupported, dialect) {
		return &AssertionError{Check: "sql[" + dialect + "]", Expected: "unsupported", Actual: got}
	}
	want, ok := expect.SQL[dialect]
	if !ok || want == got {
		return nil
	}
	return &AssertionError{Check: "sql[" + dialect + "]", Expected: want, Actual: got}
}

func checkUnsupported(expect *Expectation, dialect string, cause error) error {
	if slices.Contains(expect.Unsupported, dialect) {
		return nil
	}
	return &AssertionError{Check: "sql[" + dialect + "]", Expected: "compiled SQL", Actual: cause.Error()}
}

func checkValue(backend string, want, got any) error {
	if reflect.DeepEqual(want, got) {
		return nil
	}
	return &AssertionError{
		Check:    "value[" + backend + "]",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", got),
	}
}

// expectedValue decodes the expected value and normalizes it to t: a single
// value for scalars, a list with one value per row for columns.
func expectedValue(expect *Expectation, t ir.ValueType) (any, error) {
	var raw any
	if err := expect.Value.Decode(&raw); err != nil {
		return nil, fmt.Errorf("expect.value: %w", err)
	}
	if t.IsScalar() {
		v, err := eval.Normalize(raw, t.DType)
		if err != nil {
			return nil, fmt.Errorf("expect.value: %w", err)
		}
		return v, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expect.value: %s expression needs a list, got %T", t, raw)
	}
	out := make([]any, len(list))
	for i, v := range list {
		n, err := eval.Normalize(v, t.DType)
		if err != nil {
			return nil, fmt.Errorf("expect.value[%d]: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}
