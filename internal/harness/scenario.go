package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/sqlgen"
)

// Scenario defines a conformance test scenario.
// A scenario builds one expression over one table, compiles it for a set of
// dialects and checks the outcome against its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Ops is an optional directory of CUE operation declarations installed
	// before the expression is built. Relative to the scenario file.
	Ops string `yaml:"ops,omitempty"`

	// Table is the input table and its rows.
	Table TableSpec `yaml:"table"`

	// Expr is the expression under test.
	Expr *Node `yaml:"expr"`

	// Dialects to compile for. Empty means every known dialect.
	Dialects []string `yaml:"dialects,omitempty"`

	// Expect is the expected outcome.
	Expect Expectation `yaml:"expect"`
}

// TableSpec declares a table's schema and contents.
type TableSpec struct {
	Name    string       `yaml:"name"`
	Columns []ColumnSpec `yaml:"columns"`

	// Rows hold one value per column, in column order. null is NULL.
	Rows [][]any `yaml:"rows,omitempty"`
}

// ColumnSpec is one column of a TableSpec.
type ColumnSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Node is one node of an expression tree. Exactly one of Col, Lit and Call
// is set.
//
//	col: x                          column reference
//	lit: 5                          literal (type: date to force a type)
//	call: bitwise_and               method call on `on`
//	on: {col: x}
//	args: {where: {lit: true}}
type Node struct {
	Col  string           `yaml:"col,omitempty"`
	Lit  yaml.Node        `yaml:"lit,omitempty"`
	Type string           `yaml:"type,omitempty"`
	Call string           `yaml:"call,omitempty"`
	On   *Node            `yaml:"on,omitempty"`
	Args map[string]*Node `yaml:"args,omitempty"`
	As   string           `yaml:"as,omitempty"`
}

// IsLiteral reports whether the node carries a lit key, including lit: null.
func (n *Node) IsLiteral() bool { return n.Lit.Kind != 0 }

// Expectation is the expected outcome of a scenario. Either Error is set,
// or Value and SQL describe a successful build.
type Expectation struct {
	// Value is the expected result of evaluating the expression. Checked
	// against the reference evaluator and every embedded engine.
	Value yaml.Node `yaml:"value,omitempty"`

	// Type is the expected expression type, e.g. "int64 scalar".
	Type string `yaml:"type,omitempty"`

	// SQL maps dialect names to the exact expected fragment.
	SQL map[string]string `yaml:"sql,omitempty"`

	// Unsupported lists dialects expected to reject the expression.
	Unsupported []string `yaml:"unsupported,omitempty"`

	// Error is the expected build failure: validation or type.
	Error string `yaml:"error,omitempty"`
}

// HasValue reports whether a value expectation is present.
func (e *Expectation) HasValue() bool { return e.Value.Kind != 0 }

// Expected build error categories.
const (
	ErrorValidation = "validation"
	ErrorType       = "type"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The ops directory is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Ops != "" && !filepath.IsAbs(scenario.Ops) {
		scenario.Ops = filepath.Join(filepath.Dir(path), scenario.Ops)
	}
	if scenario.Ops != "" {
		if _, err := os.Stat(scenario.Ops); err != nil {
			return nil, fmt.Errorf("invalid scenario: ops directory: %w", err)
		}
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expcet:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Schema converts the declared columns to an ir.Schema.
func (t TableSpec) Schema() (ir.Schema, error) {
	fields := make([]ir.Field, len(t.Columns))
	for i, c := range t.Columns {
		dtype, err := ir.ParseDataType(c.Type)
		if err != nil {
			return ir.Schema{}, fmt.Errorf("column %q: %w", c.Name, err)
		}
		fields[i] = ir.Field{Name: c.Name, DType: dtype}
	}
	return ir.NewSchema(fields...)
}

// Table builds the expression-layer table for the declared columns.
func (t TableSpec) Table() (*expr.Table, error) {
	schema, err := t.Schema()
	if err != nil {
		return nil, err
	}
	return expr.NewTable(t.Name, schema)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Table.Name == "" {
		return fmt.Errorf("table.name is required")
	}
	if len(s.Table.Columns) == 0 {
		return fmt.Errorf("table.columns list is required and must be non-empty")
	}
	if _, err := s.Table.Schema(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	for i, row := range s.Table.Rows {
		if len(row) != len(s.Table.Columns) {
			return fmt.Errorf("table.rows[%d]: has %d values, expected %d", i, len(row), len(s.Table.Columns))
		}
	}

	if s.Expr == nil {
		return fmt.Errorf("expr is required")
	}
	if err := validateNode("expr", s.Expr); err != nil {
		return err
	}

	for _, d := range s.Dialects {
		if _, err := sqlgen.ParseDialect(d); err != nil {
			return fmt.Errorf("dialects: %w", err)
		}
	}

	return validateExpectation(&s.Expect)
}

// validateNode checks that each node is exactly one of col, lit or call.
func validateNode(path string, n *Node) error {
	if n == nil {
		return fmt.Errorf("%s: node is empty", path)
	}
	set := 0
	if n.Col != "" {
		set++
	}
	if n.IsLiteral() {
		set++
	}
	if n.Call != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%s: exactly one of col, lit or call is required", path)
	}
	if n.Type != "" && !n.IsLiteral() {
		return fmt.Errorf("%s: type is only valid on literals", path)
	}
	if n.Call == "" {
		if n.On != nil || len(n.Args) > 0 {
			return fmt.Errorf("%s: on and args are only valid on calls", path)
		}
		return nil
	}
	if n.On == nil {
		return fmt.Errorf("%s: call %q requires on", path, n.Call)
	}
	if err := validateNode(path+".on", n.On); err != nil {
		return err
	}
	for name, arg := range n.Args {
		if err := validateNode(path+".args."+name, arg); err != nil {
			return err
		}
	}
	return nil
}

func validateExpectation(e *Expectation) error {
	switch e.Error {
	case "":
		if !e.HasValue() && e.Type == "" && len(e.SQL) == 0 && len(e.Unsupported) == 0 {
			return fmt.Errorf("expect: at least one of value, type, sql, unsupported or error is required")
		}
	case ErrorValidation, ErrorType:
		if e.HasValue() || len(e.SQL) > 0 || len(e.Unsupported) > 0 {
			return fmt.Errorf("expect: error cannot be combined with value, sql or unsupported")
		}
	default:
		return fmt.Errorf("expect: unknown error category %q", e.Error)
	}
	for d := range e.SQL {
		if _, err := sqlgen.ParseDialect(d); err != nil {
			return fmt.Errorf("expect.sql: %w", err)
		}
	}
	for _, d := range e.Unsupported {
		if _, err := sqlgen.ParseDialect(d); err != nil {
			return fmt.Errorf("expect.unsupported: %w", err)
		}
	}
	return nil
}
