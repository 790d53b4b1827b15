package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const whereTrue = "testdata/scenarios/bitwise_and_where_true.yaml"

func TestCompileCommandText(t *testing.T) {
	out, err := execute(t, "compile", whereTrue)
	require.NoError(t, err)

	assert.Contains(t, out, "int64 scalar")
	assert.Contains(t, out, `postgres  bit_and("x") FILTER (WHERE TRUE)`)
	assert.Contains(t, out, `sqlite    bit_and("x") FILTER (WHERE TRUE)`)
	assert.Contains(t, out, "mapd      (unsupported)")
}

func TestCompileCommandSelectedDialect(t *testing.T) {
	out, err := execute(t, "compile", whereTrue, "--dialect", "duckdb")
	require.NoError(t, err)

	assert.Contains(t, out, `duckdb    bit_and("x") FILTER (WHERE TRUE)`)
	assert.NotContains(t, out, "postgres")
}

func TestCompileCommandRequestedDialectUnsupported(t *testing.T) {
	out, err := execute(t, "compile", whereTrue, "--dialect", "mapd")
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeUnsupported)
	assert.Contains(t, out, "mapd")
}

func TestCompileCommandUnknownDialect(t *testing.T) {
	out, err := execute(t, "compile", whereTrue, "--dialect", "oracle")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeDialect)
}

func TestCompileCommandMissingScenario(t *testing.T) {
	out, err := execute(t, "compile", "testdata/scenarios/nope.yaml")
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeScenario)
}

func TestCompileCommandStatementJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "compile", whereTrue, "--statement", "--dialect", "postgres")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   CompileOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "bitwise_and_where_true", resp.Data.Scenario)
	assert.Equal(t, "int64 scalar", resp.Data.Type)

	require.Len(t, resp.Data.Dialects, 1)
	got := resp.Data.Dialects[0]
	assert.Equal(t, "postgres", got.Dialect)
	assert.Contains(t, got.SQL, `bit_and(t0."x") FILTER (WHERE $1)`)
	assert.Contains(t, got.SQL, `FROM "t" AS t0`)
	assert.Equal(t, []any{true}, got.Params)
}

func TestCompileCommandDeclaredOperation(t *testing.T) {
	out, err := execute(t, "compile", "testdata/scenarios/declared_reverse.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, `postgres  reverse("g")`)
	assert.Contains(t, out, "sqlite    (unsupported)")
}

func TestCompileCommandBuildError(t *testing.T) {
	out, err := execute(t, "compile", "../harness/testdata/scenarios/bitwise_and_string_receiver.yaml")
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeBuild)
}
