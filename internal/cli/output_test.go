package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

func TestOutputFormatter_Success(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(DialectOutput{Dialect: "duckdb", SQL: `bit_and("x")`}))
	resp := decodeResponse(t, buf)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"dialect": "duckdb", "sql": `bit_and("x")`}, resp.Data)

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Success("✓ All operations valid (1)"))
	assert.Equal(t, "✓ All operations valid (1)\n", buf.String())
}

func TestOutputFormatter_Error(t *testing.T) {
	details := []string{"operation.Reverse.method: must be snake_case"}

	tests := []struct {
		name    string
		format  string
		verbose bool
		check   func(t *testing.T, out *bytes.Buffer)
	}{
		{"json", "json", false, func(t *testing.T, out *bytes.Buffer) {
			resp := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeUnsupported, resp.Error.Code)
			assert.Equal(t, "operation BitwiseAnd is not supported by dialect mapd", resp.Error.Message)
			assert.Len(t, resp.Error.Details, 1)
		}},
		{"text", "text", false, func(t *testing.T, out *bytes.Buffer) {
			assert.Equal(t, "Error [E203]: operation BitwiseAnd is not supported by dialect mapd\n", out.String())
		}},
		{"text verbose", "text", true, func(t *testing.T, out *bytes.Buffer) {
			assert.Contains(t, out.String(), "Error [E203]")
			assert.Contains(t, out.String(), "Details: [operation.Reverse.method: must be snake_case]")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tt.format, Writer: buf, Verbose: tt.verbose}
			require.NoError(t, f.Error(ErrCodeUnsupported, "operation BitwiseAnd is not supported by dialect mapd", details))
			tt.check(t, buf)
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.Fail(ExitCommandError, ErrCodeDialect, `unknown dialect "oracle"`, nil)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, `E204: unknown dialect "oracle"`, err.Error())
	assert.Contains(t, buf.String(), "Error [E204]")
}

func TestOutputFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	f.Table([]string{"METHOD", "KIND"}, [][]string{{"bitwise_and", "BitwiseAnd"}})
	out := buf.String()
	assert.Contains(t, out, "METHOD")
	assert.Contains(t, out, "bitwise_and")
	assert.Contains(t, out, "BitwiseAnd")
}

func TestOutputFormatter_VerboseOutput(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: stdout, ErrWriter: stderr, Verbose: true}

	f.VerboseLog("loaded %d operations", 2)
	f.Logger().Debug("compiled", "dialect", "duckdb")
	assert.Empty(t, stdout.String(), "diagnostics must not corrupt JSON output")
	assert.Contains(t, stderr.String(), "loaded 2 operations")
	assert.Contains(t, stderr.String(), "dialect=duckdb")

	stderr.Reset()
	f.Verbose = false
	f.VerboseLog("hidden")
	f.Logger().Info("hidden")
	assert.Empty(t, stderr.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "1 scenario failed")))

	wrapped := WrapExitError(ExitCommandError, "bad path", assert.AnError)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Equal(t, "bad path: "+assert.AnError.Error(), wrapped.Error())
}
