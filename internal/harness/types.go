package harness

// Backend names used as keys of Result.Values besides dialect names.
const BackendReference = "reference"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// Type is the type of the built expression. Empty when building failed.
	Type string `json:"type,omitempty"`

	// BuildError is the category of the build failure (validation or type),
	// empty when the expression was built.
	BuildError string `json:"build_error,omitempty"`

	// SQL holds the compiled fragment per dialect.
	SQL map[string]string `json:"sql,omitempty"`

	// Unsupported lists the dialects that rejected the expression.
	Unsupported []string `json:"unsupported,omitempty"`

	// Values holds the evaluated value per backend: "reference" for the
	// in-memory evaluator, otherwise the engine's dialect name.
	Values map[string]any `json:"values,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		SQL:    make(map[string]string),
		Values: make(map[string]any),
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Fail records a failed check.
func (r *Result) Fail(err error) {
	if err != nil {
		r.AddError(err.Error())
	}
}
