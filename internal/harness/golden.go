package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/exprext/internal/ir"
)

// Snapshot captures the compiled outcome of a scenario. Values are left out:
// they are checked against expectations, and float values have no
// canonical encoding.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Type         string            `json:"type,omitempty"`
	BuildError   string            `json:"build_error,omitempty"`
	SQL          map[string]string `json:"sql,omitempty"`
	Unsupported  []string          `json:"unsupported,omitempty"`
}

// NewSnapshot extracts the snapshot of a result.
func NewSnapshot(name string, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		Type:         result.Type,
		BuildError:   result.BuildError,
		SQL:          result.SQL,
		Unsupported:  result.Unsupported,
	}
}

// toCanonical converts the snapshot to an IR object for canonical JSON
// serialization. Empty fields are omitted.
func (s Snapshot) toCanonical() ir.IRObject {
	obj := ir.IRObject{"scenario_name": ir.IRString(s.ScenarioName)}
	if s.Type != "" {
		obj["type"] = ir.IRString(s.Type)
	}
	if s.BuildError != "" {
		obj["build_error"] = ir.IRString(s.BuildError)
	}
	if len(s.SQL) > 0 {
		sql := make(ir.IRObject, len(s.SQL))
		for d, q := range s.SQL {
			sql[d] = ir.IRString(q)
		}
		obj["sql"] = sql
	}
	if len(s.Unsupported) > 0 {
		arr := make(ir.IRArray, len(s.Unsupported))
		for i, d := range s.Unsupported {
			arr[i] = ir.IRString(d)
		}
		obj["unsupported"] = arr
	}
	return obj
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonical())
}

// RunWithGolden executes a scenario, fails t on any expectation mismatch
// and compares the compiled SQL against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts Options) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	// Compare with golden file using goldie
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
