package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// sqlExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}

type sqlQuerier struct {
	dialect Dialect
	exec    sqlExecutor
}

func (sq sqlQuerier) Dialect() Dialect { return sq.dialect }

func (sq sqlQuerier) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := sq.exec.ExecContext(ctx, sq.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (sq sqlQuerier) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := sq.exec.QueryContext(ctx, sq.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{Rows: rows}, nil
}

func (sq sqlQuerier) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return sq.exec.QueryRowContext(ctx, sq.dialect.Rebind(query), args...)
}

func (sq sqlQuerier) InsertContext(ctx context.Context, query string, _ string, args ...any) (int64, error) {
	res, err := sq.exec.ExecContext(ctx, sq.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// sqlDriver is the database/sql backed part shared by MySQL and SQLite.
type sqlDriver struct {
	dialect Dialect
	db      *sqlx.DB
}

func (sd *sqlDriver) connect(ctx context.Context, driverName, dsn string) error {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return err
	}
	sd.db = db
	return nil
}

func (sd *sqlDriver) querier() sqlQuerier {
	return sqlQuerier{dialect: sd.dialect, exec: sd.db}
}

func (sd *sqlDriver) Close() error {
	if sd.db == nil {
		return nil
	}
	return sd.db.Close()
}

func (sd *sqlDriver) Ping(ctx context.Context) error {
	if sd.db == nil {
		return fmt.Errorf("%s driver is not connected", sd.dialect)
	}
	return sd.db.PingContext(ctx)
}

func (sd *sqlDriver) Dialect() Dialect { return sd.dialect }

func (sd *sqlDriver) ExecuteTx(ctx context.Context, txFunc func(Querier) error) (err error) {
	tx, err := sd.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = txFunc(sqlQuerier{dialect: sd.dialect, exec: tx})
	return err
}

func (sd *sqlDriver) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	return sd.querier().ExecContext(ctx, query, args...)
}

func (sd *sqlDriver) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return sd.querier().QueryContext(ctx, query, args...)
}

func (sd *sqlDriver) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return sd.querier().QueryRowContext(ctx, query, args...)
}

func (sd *sqlDriver) InsertContext(ctx context.Context, query string, idColumn string, args ...any) (int64, error) {
	return sd.querier().InsertContext(ctx, query, idColumn, args...)
}
