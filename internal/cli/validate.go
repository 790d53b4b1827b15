package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/exprext/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Operations []string                   `json:"operations,omitempty"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <ops-dir>",
		Short: "Validate CUE operation declarations",
		Long: `Validate the CUE operation declarations in a directory.

Checks syntax, the declaration schema (kinds, method names, argument
types, outputs and SQL renderings) and name clashes between declarations.
Nothing is installed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	loaded, errs := compiler.LoadDir(dir, compiler.LoadModeCollectAll)

	// Directory not found, no files, etc.
	if loaded == nil {
		code, message := describeLoadError(errs[0])
		return f.Fail(ExitCommandError, code, message, nil)
	}
	f.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, dir)

	verrs := make([]compiler.ValidationError, 0, len(errs))
	for _, err := range errs {
		verrs = append(verrs, toValidationError(err))
	}
	if len(verrs) > 0 {
		return outputValidationErrors(f, verrs)
	}

	kinds := make([]string, len(loaded.Operations))
	for i, spec := range loaded.Operations {
		kinds[i] = spec.Kind
		f.VerboseLog("Validated operation: %s", spec.Kind)
	}

	if f.Format == "json" {
		return f.Success(ValidationResult{Valid: true, Operations: kinds})
	}
	fmt.Fprintf(f.Writer, "✓ All operations valid (%d)\n", len(kinds))
	return nil
}

// toValidationError converts a loader error for reporting.
func toValidationError(err error) compiler.ValidationError {
	var verr compiler.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		line := 0
		if loadErr.Pos.IsValid() {
			line = loadErr.Pos.Line()
		}
		return compiler.ValidationError{Field: "load", Message: loadErr.Message, Code: loadErr.Code, Line: line}
	}
	return compiler.ValidationError{Field: "operations", Message: err.Error(), Code: compiler.ErrCodeGeneric}
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if f.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := encodeIndented(f.Writer, response); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(f.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(f.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return exitErr
}
