package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDir(t *testing.T) {
	result, errs := LoadDir("testdata/ops", LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, result)

	assert.Equal(t, 2, result.FileCount)
	require.Len(t, result.Operations, 2)

	kinds := map[string]bool{}
	for _, op := range result.Operations {
		kinds[op.Kind] = true
	}
	assert.True(t, kinds["BitwiseNand"])
	assert.True(t, kinds["Reverse"])
}

func TestLoadDir_NotFound(t *testing.T) {
	_, errs := LoadDir("testdata/missing", LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoadDir_NoFiles(t *testing.T) {
	dir := t.TempDir()
	_, errs := LoadDir(dir, LoadModeFailFast)
	require.Len(t, errs, 1)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNoFiles, le.Code)
}

func TestLoadDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x.cue")
	require.NoError(t, os.WriteFile(file, []byte("package x\n"), 0o644))

	_, errs := LoadDir(file, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "not a directory")
}

func TestLoadSource_CollectsAll(t *testing.T) {
	src := `
operation: Good: {
	args: arg: {type: "integer"}
	output: {like: "arg"}
}
operation: NoArgs: {
	output: {type: "int64"}
}
operation: badKind: {
	args: arg: {type: "integer"}
	output: {like: "arg"}
}
`
	result, errs := LoadSource("inline.cue", src, LoadModeCollectAll)
	require.NotNil(t, result)
	require.Len(t, errs, 2)
	assert.Len(t, result.Operations, 2)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrNoArgs, le.Code)
	assert.Contains(t, le.Message, "operation.NoArgs")

	var ve ValidationError
	require.ErrorAs(t, errs[1], &ve)
	assert.Equal(t, ErrInvalidKind, ve.Code)
}

func TestLoadSource_FailFast(t *testing.T) {
	src := `
operation: NoArgs: {
	output: {type: "int64"}
}
operation: Good: {
	args: arg: {type: "integer"}
	output: {like: "arg"}
}
`
	result, errs := LoadSource("inline.cue", src, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Empty(t, result.Operations)
}

func TestLoadSource_NoOperations(t *testing.T) {
	_, errs := LoadSource("inline.cue", `other: 1`, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no operation declarations")
}

func TestLoadSource_SyntaxError(t *testing.T) {
	_, errs := LoadSource("inline.cue", `operation: {`, LoadModeCollectAll)
	require.Len(t, errs, 1)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeBuildFailed, le.Code)
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles("testdata/ops")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
