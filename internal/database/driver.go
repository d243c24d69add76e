package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jmoiron/sqlx"
)

// Dialect identifies the SQL flavour spoken by a driver.
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite"
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// Rebind rewrites `?` placeholders into the form the dialect expects.
func (d Dialect) Rebind(query string) string {
	if d == Postgres {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// ExactMatch returns a case-sensitive equality predicate for column against one
// placeholder. MySQL's default collations compare case-insensitively.
func (d Dialect) ExactMatch(column string) string {
	if d == MySQL {
		return "BINARY " + column + " = ?"
	}
	return column + " = ?"
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier is the set of primitives queries and mutations are written against.
// Statements use `?` placeholders regardless of dialect.
type Querier interface {
	Dialect() Dialect
	ExecContext(ctx context.Context, query string, args ...any) (int64, error)
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) Row
	// InsertContext runs an INSERT and returns the generated value of idColumn.
	InsertContext(ctx context.Context, query string, idColumn string, args ...any) (int64, error)
}

type DatabaseDriver interface {
	Querier
	Connect(ctx context.Context, dsn string) error
	Close() error
	Ping(ctx context.Context) error
	// ExecuteTx runs txFunc inside a transaction. A returned error or panic rolls
	// the transaction back; otherwise it is committed.
	ExecuteTx(ctx context.Context, txFunc func(Querier) error) error
}

// New returns an unconnected driver for the given name.
func New(name string) (DatabaseDriver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return &PostgresDriver{}, nil
	case "mysql":
		return &MySQLDriver{}, nil
	case "sqlite", "sqlite3":
		return &SQLiteDriver{}, nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", name)
}

// Open resolves and connects a driver in one step.
func Open(ctx context.Context, name, dsn string) (DatabaseDriver, error) {
	driver, err := New(name)
	if err != nil {
		return nil, err
	}
	if err := driver.Connect(ctx, dsn); err != nil {
		return nil, fmt.Errorf("connect %s: %w", name, err)
	}
	return driver, nil
}

// IsUniqueViolation reports whether err is a unique or primary key violation
// raised by any of the supported engines.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return isPostgresUniqueViolation(err) || isMySQLUniqueViolation(err) || isSQLiteUniqueViolation(err)
}

// IsNoRows reports whether a single-row scan found nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
