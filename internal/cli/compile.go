package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/harness"
	"github.com/roach88/exprext/internal/queryir"
	"github.com/roach88/exprext/internal/querysql"
	"github.com/roach88/exprext/internal/sqlgen"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Dialects  []string // empty = every dialect
	Statement bool     // wrap the expression in a parameterized SELECT
}

// DialectOutput is the compilation outcome for one dialect.
type DialectOutput struct {
	Dialect     string `json:"dialect"`
	SQL         string `json:"sql,omitempty"`
	Params      []any  `json:"params,omitempty"`
	Unsupported bool   `json:"unsupported,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// CompileOutput is the JSON payload of the compile command.
type CompileOutput struct {
	Scenario string          `json:"scenario"`
	Expr     string          `json:"expr"`
	Type     string          `json:"type"`
	Dialects []DialectOutput `json:"dialects"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <scenario.yaml>",
		Short: "Compile a scenario's expression to SQL",
		Long: `Build the expression of a scenario file and print the SQL it
compiles to for each dialect.

Dialects without a compilation rule for some operation in the expression
are reported as unsupported. Naming such a dialect with --dialect is an
error.

Exit codes:
  0 - Compiled
  1 - Expression rejected, or a requested dialect is unsupported
  2 - Command error (missing file, unknown dialect, etc.)

Examples:
  exprext compile scenario.yaml
  exprext compile scenario.yaml --dialect postgres --dialect duckdb
  exprext compile scenario.yaml --statement --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Dialects, "dialect", nil, "target dialect (repeatable; default: all)")
	cmd.Flags().BoolVar(&opts.Statement, "statement", false, "compile a full SELECT with bind parameters")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), nil)
	}

	dialects, err := parseDialects(opts.Dialects)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDialect, err.Error(), sqlgen.Dialects())
	}

	opsDir := opts.OpsDir
	if opsDir == "" {
		opsDir = scenario.Ops
	}
	env, err := loadEnvironment(opsDir, f)
	if err != nil {
		return err
	}

	tbl, err := scenario.Table.Table()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeScenario, err.Error(), nil)
	}
	e, err := harness.Build(scenario.Expr, tbl, env.Methods)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeBuild, err.Error(), nil)
	}
	f.VerboseLog("Built %s : %s", e, e.Type())

	out := CompileOutput{
		Scenario: scenario.Name,
		Expr:     e.String(),
		Type:     e.Type().String(),
	}
	var rejected []string
	for _, d := range dialects {
		res, err := compileFor(env, e, d, opts.Statement)
		if sqlgen.IsUnsupported(err) {
			res.Unsupported, res.Reason = true, err.Error()
			rejected = append(rejected, string(d))
		} else if err != nil {
			return f.Fail(ExitFailure, ErrCodeBuild, err.Error(), nil)
		}
		out.Dialects = append(out.Dialects, res)
	}

	if len(opts.Dialects) > 0 && len(rejected) > 0 {
		return f.Fail(ExitFailure, ErrCodeUnsupported,
			fmt.Sprintf("expression is not supported on %s", strings.Join(rejected, ", ")), out)
	}

	if f.Format == "json" {
		return f.Success(out)
	}
	w := f.Writer
	fmt.Fprintf(w, "%s : %s\n\n", out.Expr, out.Type)
	for _, res := range out.Dialects {
		if res.Unsupported {
			fmt.Fprintf(w, "%-9s (unsupported)\n", res.Dialect)
			continue
		}
		fmt.Fprintf(w, "%-9s %s\n", res.Dialect, res.SQL)
		if len(res.Params) > 0 {
			fmt.Fprintf(w, "%-9s params: %v\n", "", res.Params)
		}
	}
	return nil
}

// compileFor compiles e for d, as a bare fragment or as a statement.
func compileFor(env *environment, e *expr.Expr, d sqlgen.Dialect, statement bool) (DialectOutput, error) {
	res := DialectOutput{Dialect: string(d)}
	if !statement {
		sql, err := env.Registry.Compile(e, d)
		if err != nil {
			return res, err
		}
		res.SQL = sql
		return res, nil
	}
	sel, err := queryir.FromExpr(e)
	if err != nil {
		return res, err
	}
	sql, params, err := (&querysql.SQLCompiler{Dialect: d, Registry: env.Registry}).Compile(sel)
	if err != nil {
		return res, err
	}
	res.SQL, res.Params = sql, params
	return res, nil
}

// parseDialects resolves dialect names; none means all of them.
func parseDialects(names []string) ([]sqlgen.Dialect, error) {
	if len(names) == 0 {
		return sqlgen.Dialects(), nil
	}
	out := make([]sqlgen.Dialect, 0, len(names))
	for _, name := range names {
		d, err := sqlgen.ParseDialect(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
