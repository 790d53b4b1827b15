package cli

import (
	"errors"

	"github.com/roach88/exprext/internal/compiler"
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/extension"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
	"github.com/roach88/exprext/internal/sqlgen"
)

// environment is what commands build and compile with: the built-in
// operations plus any declared ones.
type environment struct {
	Methods  *expr.MethodTable
	Registry *sqlgen.Registry
	Declared []*ir.OperationSpec
}

// loadEnvironment installs the operations declared in opsDir. An empty
// opsDir yields the built-ins. Failures are reported through f.
func loadEnvironment(opsDir string, f *OutputFormatter) (*environment, error) {
	env := &environment{Methods: ops.Methods(), Registry: sqlgen.Default()}
	if opsDir == "" {
		return env, nil
	}

	loaded, errs := compiler.LoadDir(opsDir, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		code, message := describeLoadError(errs[0])
		return nil, f.Fail(ExitCommandError, code, message, errorMessages(errs))
	}
	f.VerboseLog("Loaded %d operation(s) from %d CUE file(s) in %s", len(loaded.Operations), loaded.FileCount, opsDir)

	installed, err := extension.Install(loaded.Operations, env.Methods, env.Registry)
	if err != nil {
		return nil, f.Fail(ExitCommandError, compiler.ErrCodeGeneric, err.Error(), nil)
	}
	env.Methods = installed.Methods
	env.Registry = installed.Registry
	env.Declared = loaded.Operations
	return env, nil
}

// describeLoadError extracts error code and message from a loader error.
func describeLoadError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr.Code, verr.Field + ": " + verr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

func errorMessages(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
