package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "exprext")
	for _, sub := range []string{"compile", "run", "ops", "validate"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--format")
	assert.Contains(t, out, "--ops")
	assert.Contains(t, out, "--verbose")
}

func TestRootCommandInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "ops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommandDefaults(t *testing.T) {
	cmd := NewRootCommand()

	format, err := cmd.PersistentFlags().GetString("format")
	require.NoError(t, err)
	assert.Equal(t, "text", format)

	verbose, err := cmd.PersistentFlags().GetBool("verbose")
	require.NoError(t, err)
	assert.False(t, verbose)
}
