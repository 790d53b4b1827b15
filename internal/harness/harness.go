package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/exprext/internal/compiler"
	"github.com/roach88/exprext/internal/eval"
	"github.com/roach88/exprext/internal/expr"
	"github.com/roach88/exprext/internal/extension"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/ops"
	"github.com/roach88/exprext/internal/queryir"
	"github.com/roach88/exprext/internal/querysql"
	"github.com/roach88/exprext/internal/sqlgen"
	"github.com/roach88/exprext/internal/store"
)

// engines are the dialects with an embedded database to execute against.
var engines = map[sqlgen.Dialect]bool{
	sqlgen.SQLite: true,
	sqlgen.DuckDB: true,
}

// Options configures Run.
type Options struct {
	// Logger receives progress at debug level. Nil discards.
	Logger *slog.Logger

	// Names names the embedded databases. Nil uses random names.
	Names store.NameGenerator
}

// Harness is the test execution context of one scenario.
type Harness struct {
	scenario *Scenario
	methods  *expr.MethodTable
	registry *sqlgen.Registry
	table    *expr.Table
	frame    *eval.Frame
	opts     Options
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Install declared operations, if any
//  2. Build the table and the expression through the method table
//  3. Compile the expression for every dialect (twice, results must agree)
//  4. Execute on each embedded engine and on the reference evaluator
//  5. Return result with pass/fail and mismatches
//
// The returned error is reserved for scenarios that cannot be executed at
// all; expectation mismatches are reported in Result.Errors.
func Run(scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	}
	h := &Harness{
		scenario: scenario,
		methods:  ops.Methods(),
		registry: sqlgen.Default(),
		opts:     opts,
		logger:   logger.With("scenario", scenario.Name),
	}
	if err := h.install(); err != nil {
		return nil, err
	}
	if err := h.loadTable(); err != nil {
		return nil, err
	}

	result := NewResult()
	e, err := Build(scenario.Expr, h.table, h.methods)
	category := classify(err)
	if err != nil && category == "" {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}
	result.BuildError = category
	result.Fail(checkBuildError(&scenario.Expect, category, err))
	if err != nil {
		h.logger.Debug("build failed", "category", category, "error", err)
		return result, nil
	}
	result.Type = e.Type().String()
	result.Fail(checkType(&scenario.Expect, e.Type()))

	var want any
	if scenario.Expect.HasValue() {
		if want, err = expectedValue(&scenario.Expect, e.Type()); err != nil {
			return nil, err
		}
	}

	dialects, err := h.dialects()
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	for _, d := range dialects {
		if err := h.runDialect(ctx, d, e, want, result); err != nil {
			return nil, err
		}
	}
	for d := range scenario.Expect.SQL {
		if _, compiled := result.SQL[d]; !compiled {
			result.AddError(fmt.Sprintf("expect.sql[%s]: dialect was not compiled", d))
		}
	}

	if scenario.Expect.HasValue() {
		h.runReference(e, want, result)
	}
	return result, nil
}

// install loads the scenario's CUE operations on top of the built-ins.
func (h *Harness) install() error {
	if h.scenario.Ops == "" {
		return nil
	}
	loaded, errs := compiler.LoadDir(h.scenario.Ops, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		return fmt.Errorf("failed to load operations: %w", errors.Join(errs...))
	}
	installed, err := extension.Install(loaded.Operations, h.methods, h.registry)
	if err != nil {
		return fmt.Errorf("failed to install operations: %w", err)
	}
	h.methods = installed.Methods
	h.registry = installed.Registry
	h.logger.Debug("installed operations", "count", len(loaded.Operations), "files", loaded.FileCount)
	return nil
}

func (h *Harness) loadTable() error {
	tbl, err := h.scenario.Table.Table()
	if err != nil {
		return fmt.Errorf("table: %w", err)
	}
	schema := tbl.Schema()
	rows := make([][]any, len(h.scenario.Table.Rows))
	for i, row := range h.scenario.Table.Rows {
		rows[i] = make([]any, len(row))
		for j, v := range row {
			// YAML timestamps may arrive as time.Time
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.DateTime)
				if schema.Fields()[j].DType == ir.Date {
					v = ts.UTC().Format(time.DateOnly)
				}
			}
			rows[i][j] = v
		}
	}
	frame, err := eval.NewFrame(tbl, rows)
	if err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	h.table, h.frame = tbl, frame
	return nil
}

func (h *Harness) dialects() ([]sqlgen.Dialect, error) {
	if len(h.scenario.Dialects) == 0 {
		return sqlgen.Dialects(), nil
	}
	out := make([]sqlgen.Dialect, 0, len(h.scenario.Dialects))
	for _, name := range h.scenario.Dialects {
		d, err := sqlgen.ParseDialect(name)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// runDialect compiles e for d and, when d has an embedded engine and a
// value is expected, executes it.
func (h *Harness) runDialect(ctx context.Context, d sqlgen.Dialect, e *expr.Expr, want any, result *Result) error {
	name := string(d)
	sql, err := h.registry.Compile(e, d)
	if sqlgen.IsUnsupported(err) {
		h.logger.Debug("unsupported", "dialect", name, "error", err)
		result.Unsupported = append(result.Unsupported, name)
		result.Fail(checkUnsupported(&h.scenario.Expect, name, err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("compile for %s: %w", name, err)
	}
	result.SQL[name] = sql
	result.Fail(checkSQL(&h.scenario.Expect, name, sql))

	again, err := h.registry.Compile(e, d)
	if err != nil || again != sql {
		result.AddError(fmt.Sprintf("sql[%s]: recompiling gave %q (error: %v), first pass gave %q", name, again, err, sql))
	}

	if !h.scenario.Expect.HasValue() || !engines[d] {
		return nil
	}
	if len(expr.Tables(e)) != 1 {
		h.logger.Debug("skipping engine: expression reads no table", "dialect", name)
		return nil
	}
	got, err := h.execute(ctx, d, e)
	if err != nil {
		result.AddError(fmt.Sprintf("value[%s]: %v", name, err))
		return nil
	}
	result.Values[name] = got
	result.Fail(checkValue(name, want, got))
	return nil
}

// execute loads the table into a fresh database and runs e as a select.
func (h *Harness) execute(ctx context.Context, d sqlgen.Dialect, e *expr.Expr) (any, error) {
	var opts []store.Option
	opts = append(opts, store.WithLogger(h.logger))
	if h.opts.Names != nil {
		opts = append(opts, store.WithNames(h.opts.Names))
	}
	st, err := store.Open(ctx, d, opts...)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	schema := h.table.Schema()
	if err := st.CreateTable(ctx, h.table.Name(), schema); err != nil {
		return nil, err
	}
	if err := st.Insert(ctx, h.table.Name(), schema, h.frame.Rows()); err != nil {
		return nil, err
	}

	sel, err := queryir.FromExpr(e)
	if err != nil {
		return nil, err
	}
	sql, params, err := (&querysql.SQLCompiler{Dialect: d, Registry: h.registry}).Compile(sel)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("executing", "dialect", string(d), "sql", sql)

	dtype := e.Type().DType
	if e.Type().IsScalar() {
		return st.QueryScalar(ctx, dtype, sql, params...)
	}
	res, err := st.Query(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, err := store.Coerce(row[0], dtype)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// runReference evaluates e in memory. Operations without an evaluation
// rule, such as declared extensions, are checked on engines only.
func (h *Harness) runReference(e *expr.Expr, want any, result *Result) {
	got, err := eval.Eval(e, h.frame)
	if errors.Is(err, eval.ErrUnsupportedKind) {
		h.logger.Debug("skipping reference evaluation", "error", err)
		return
	}
	if err != nil {
		result.AddError(fmt.Sprintf("value[%s]: %v", BackendReference, err))
		return
	}
	v := got.Value()
	if col, ok := v.([]any); ok && col == nil {
		v = []any{}
	}
	result.Values[BackendReference] = v
	result.Fail(checkValue(BackendReference, want, v))
}

// classify maps an expression-layer error to its expectation category.
func classify(err error) string {
	switch {
	case err == nil:
		return ""
	case expr.IsValidationError(err):
		return ErrorValidation
	case expr.IsTypeError(err):
		return ErrorType
	}
	return ""
}
