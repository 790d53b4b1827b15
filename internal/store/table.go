package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/exprext/internal/eval"
	"github.com/roach88/exprext/internal/ir"
	"github.com/roach88/exprext/internal/sqlgen"
)

// columnTypes maps element types to column declarations per engine.
// SQLite stores temporal values as ISO-8601 text.
var columnTypes = map[sqlgen.Dialect]map[ir.DataType]string{
	sqlgen.SQLite: {
		ir.Boolean:   "BOOLEAN",
		ir.Int8:      "INTEGER",
		ir.Int16:     "INTEGER",
		ir.Int32:     "INTEGER",
		ir.Int64:     "INTEGER",
		ir.Float32:   "REAL",
		ir.Float64:   "REAL",
		ir.String:    "TEXT",
		ir.Date:      "TEXT",
		ir.Timestamp: "TEXT",
		ir.Binary:    "BLOB",
	},
	sqlgen.DuckDB: {
		ir.Boolean:   "BOOLEAN",
		ir.Int8:      "TINYINT",
		ir.Int16:     "SMALLINT",
		ir.Int32:     "INTEGER",
		ir.Int64:     "BIGINT",
		ir.Float32:   "FLOAT",
		ir.Float64:   "DOUBLE",
		ir.String:    "VARCHAR",
		ir.Date:      "DATE",
		ir.Timestamp: "TIMESTAMP",
		ir.Binary:    "BLOB",
	},
}

// CreateTable creates an empty table with the given schema.
func (s *Store) CreateTable(ctx context.Context, name string, schema ir.Schema) error {
	if schema.Len() == 0 {
		return fmt.Errorf("create table %q: schema has no fields", name)
	}
	types := columnTypes[s.dialect]
	cols := make([]string, 0, schema.Len())
	for _, f := range schema.Fields() {
		typ, ok := types[f.DType]
		if !ok {
			return fmt.Errorf("create table %q: column %q has unsupported type %s", name, f.Name, f.DType)
		}
		cols = append(cols, s.dialect.QuoteIdentifier(f.Name)+" "+typ)
	}
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)", s.dialect.QuoteIdentifier(name), strings.Join(cols, ", "))
	return s.exec(ctx, stmt)
}

// Insert appends rows in a single transaction. Each row holds one value per
// schema field, in schema order; nil is NULL.
func (s *Store) Insert(ctx context.Context, name string, schema ir.Schema, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	fields := schema.Fields()
	cols := make([]string, len(fields))
	marks := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = s.dialect.QuoteIdentifier(f.Name)
		marks[i] = s.dialect.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.QuoteIdentifier(name), strings.Join(cols, ", "), strings.Join(marks, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert into %q: %w", name, err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("prepare insert into %q: %w", name, err)
	}
	defer prepared.Close()

	for i, row := range rows {
		if len(row) != len(fields) {
			return fmt.Errorf("insert into %q: row %d has %d values, schema has %d fields", name, i, len(row), len(fields))
		}
		args := make([]any, len(row))
		for j, v := range row {
			if args[j], err = s.bindValue(v, fields[j].DType); err != nil {
				return fmt.Errorf("insert into %q: row %d column %q: %w", name, i, fields[j].Name, err)
			}
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert into %q: row %d: %w", name, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert into %q: %w", name, err)
	}
	s.logger.Debug("inserted rows", "table", name, "rows", len(rows))
	return nil
}

// bindValue converts v to the Go type the driver binds for a column of
// type d. DuckDB binds by declared parameter type, so narrow integers and
// temporal values must arrive as their exact Go types.
func (s *Store) bindValue(v any, d ir.DataType) (any, error) {
	v, err := eval.Normalize(v, d)
	if err != nil || v == nil || s.dialect != sqlgen.DuckDB {
		return v, err
	}
	switch d {
	case ir.Int8:
		return int8(v.(int64)), nil
	case ir.Int16:
		return int16(v.(int64)), nil
	case ir.Int32:
		return int32(v.(int64)), nil
	case ir.Float32:
		return float32(v.(float64)), nil
	case ir.Date:
		return time.Parse(time.DateOnly, v.(string))
	case ir.Timestamp:
		return parseTimestamp(v.(string))
	}
	return v, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (s *Store) exec(ctx context.Context, stmt string, args ...any) error {
	s.logger.Debug("exec", "sql", stmt, "params", len(args))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("exec %q: %w", stmt, err)
	}
	return nil
}
