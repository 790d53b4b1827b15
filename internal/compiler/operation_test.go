package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/exprext/internal/ir"
)

func compileOne(t *testing.T, src, path string) (*ir.OperationSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileOperation(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileOperationBasic(t *testing.T) {
	spec, err := compileOne(t, `
		operation: BitwiseAnd: {
			method: "bitwise_and"
			reduction: true
			receiver: "arg"
			args: {
				arg:   {type: "integer", shape: "column"}
				where: {type: "boolean", optional: true}
			}
			output: {like: "arg", shape: "scalar"}
			sql: {postgres: {function: "bit_and"}, duckdb: {function: "bit_and"}}
		}
	`, "operation.BitwiseAnd")
	require.NoError(t, err)

	assert.Equal(t, "BitwiseAnd", spec.Kind)
	assert.Equal(t, "bitwise_and", spec.Method)
	assert.True(t, spec.Reduction)
	assert.Equal(t, "arg", spec.Receiver)
	assert.Equal(t, []ir.ArgSpec{
		{Name: "arg", Type: "integer", Shape: "column"},
		{Name: "where", Type: "boolean", Shape: "any", Optional: true},
	}, spec.Args)
	assert.Equal(t, ir.OutputSpec{Like: "arg", Shape: "scalar"}, spec.Output)
	assert.Equal(t, map[string]ir.SQLSpec{
		"postgres": {Func: "bit_and"},
		"duckdb":   {Func: "bit_and"},
	}, spec.SQL)
	assert.Equal(t, []string{"duckdb", "postgres"}, SortedDialects(spec))
}

func TestCompileOperationDefaults(t *testing.T) {
	spec, err := compileOne(t, `
		operation: Pad: {
			args: {
				text:  {type: "string"}
				width: {type: "integer", shape: "scalar"}
			}
			output: {type: "string"}
		}
	`, "operation.Pad")
	require.NoError(t, err)

	assert.Equal(t, "text", spec.Receiver, "first slot when no arg slot exists")
	assert.Equal(t, "elementwise", spec.Output.Shape)
	assert.Empty(t, spec.Method)
	assert.Nil(t, spec.SQL)
}

func TestCompileOperationReductionDefaultsToScalar(t *testing.T) {
	spec, err := compileOne(t, `
		operation: Any: {
			reduction: true
			args: {
				first: {type: "boolean", shape: "column"}
				arg:   {type: "boolean", shape: "column"}
			}
			output: {type: "boolean"}
		}
	`, "operation.Any")
	require.NoError(t, err)
	assert.Equal(t, "scalar", spec.Output.Shape)
	assert.Equal(t, "arg", spec.Receiver)
}

func TestCompileOperationMissingArgs(t *testing.T) {
	_, err := compileOne(t, `
		operation: Bad: {
			output: {type: "int64"}
		}
	`, "operation.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "args")
	assert.Contains(t, err.Error(), "required")
}

func TestCompileOperationMissingType(t *testing.T) {
	_, err := compileOne(t, `
		operation: Bad: {
			args: arg: {shape: "column"}
			output: {like: "arg"}
		}
	`, "operation.Bad")
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "type", ce.Field)
	assert.Contains(t, ce.Message, `argument "arg"`)
}

func TestCompileOperationOutputExclusive(t *testing.T) {
	_, err := compileOne(t, `
		operation: Bad: {
			args: arg: {type: "integer"}
			output: {like: "arg", type: "int64"}
		}
	`, "operation.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one of like and type")

	_, err = compileOne(t, `
		operation: Bad: {
			args: arg: {type: "integer"}
			output: {shape: "scalar"}
		}
	`, "operation.Bad")
	require.Error(t, err)
}

func TestCompileOperationSQLRequiresFunc(t *testing.T) {
	_, err := compileOne(t, `
		operation: Bad: {
			args: arg: {type: "integer"}
			output: {like: "arg"}
			sql: postgres: {args: ["arg"]}
		}
	`, "operation.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "function is required")
}

func TestCompileOperationWrongFieldKind(t *testing.T) {
	_, err := compileOne(t, `
		operation: Bad: {
			reduction: "yes"
			args: arg: {type: "integer"}
			output: {like: "arg"}
		}
	`, "operation.Bad")
	require.Error(t, err)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "args", Message: "args is required"}
	assert.Equal(t, "args: args is required", err.Error())
}
