package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteDriver stores data in a local SQLite file.
type SQLiteDriver struct {
	sqlDriver
}

// Connect accepts either a bare file path or a path with query parameters.
// Foreign keys and the sqlite time format are enabled for bare paths.
func (sd *SQLiteDriver) Connect(ctx context.Context, dsn string) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return fmt.Errorf("storage path is required")
	}
	if !strings.Contains(dsn, "?") {
		dsn = filepath.Clean(dsn) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	}
	sd.dialect = SQLite
	if err := sd.connect(ctx, "sqlite", dsn); err != nil {
		return err
	}
	// A single connection keeps transactions and plain reads from locking each other out.
	sd.db.SetMaxOpenConns(1)
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
