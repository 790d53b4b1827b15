package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/exprext/internal/sqlgen"
)

// ErrUnsupportedDialect is returned by Open for dialects without an
// embedded engine.
var ErrUnsupportedDialect = errors.New("no embedded engine for dialect")

// NameGenerator names databases. The default uses random UUIDs so that
// concurrently opened stores never share a shared-cache database.
type NameGenerator interface {
	Generate() string
}

type uuidNames struct{}

func (uuidNames) Generate() string { return uuid.NewString() }

// Option configures Open.
type Option func(*options)

type options struct {
	names  NameGenerator
	logger *slog.Logger
}

// WithNames replaces the database name generator.
func WithNames(g NameGenerator) Option {
	return func(o *options) { o.names = g }
}

// WithLogger logs every executed statement at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Store is one embedded database.
type Store struct {
	db      *sql.DB
	dialect sqlgen.Dialect
	name    string
	logger  *slog.Logger
}

// Open creates an empty in-memory database for dialect d.
func Open(ctx context.Context, d sqlgen.Dialect, opts ...Option) (*Store, error) {
	o := options{
		names:  uuidNames{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	name := o.names.Generate()
	var (
		db  *sql.DB
		err error
	)
	switch d {
	case sqlgen.SQLite:
		registerSQLiteDriver()
		db, err = sql.Open(sqliteDriverName, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	case sqlgen.DuckDB:
		db, err = sql.Open("duckdb", "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, d)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Fail at Open, not at the first query, when the driver cannot start.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Memory databases live as long as a connection does; keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dialect: d, name: name, logger: o.logger.With("dialect", string(d), "db", name)}
	if d == sqlgen.SQLite {
		if err := s.applyPragmas(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}
	s.logger.Debug("opened database")
	return s, nil
}

// Close closes the database connection. The in-memory database is
// discarded with it.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() sqlgen.Dialect { return s.dialect }
func (s *Store) Name() string            { return s.name }

// applyPragmas sets required SQLite configuration.
func (s *Store) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if !strings.EqualFold(value, expected) {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
