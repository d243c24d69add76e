package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresDriver acquires a pooled connection for each call and releases it
// when the call (or the returned rows) completes.
type PostgresDriver struct {
	pool *pgxpool.Pool
}

// pgxExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxQuerier struct {
	exec pgxExecutor
}

func (pq pgxQuerier) Dialect() Dialect { return Postgres }

func (pq pgxQuerier) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := pq.exec.Exec(ctx, Postgres.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (pq pgxQuerier) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return pq.exec.Query(ctx, Postgres.Rebind(query), args...)
}

func (pq pgxQuerier) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return pq.exec.QueryRow(ctx, Postgres.Rebind(query), args...)
}

func (pq pgxQuerier) InsertContext(ctx context.Context, query string, idColumn string, args ...any) (int64, error) {
	var id int64
	if err := pq.exec.QueryRow(ctx, Postgres.Rebind(query)+" RETURNING "+idColumn, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (pd *PostgresDriver) Connect(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	pd.pool = pool
	return nil
}

func (pd *PostgresDriver) Close() error {
	if pd.pool != nil {
		pd.pool.Close()
	}
	return nil
}

func (pd *PostgresDriver) Ping(ctx context.Context) error {
	if pd.pool == nil {
		return fmt.Errorf("postgres driver is not connected")
	}
	return pd.pool.Ping(ctx)
}

func (pd *PostgresDriver) Dialect() Dialect { return Postgres }

func (pd *PostgresDriver) ExecuteTx(ctx context.Context, txFunc func(Querier) error) (err error) {
	tx, err := pd.pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = txFunc(pgxQuerier{exec: tx})
	return err
}

func (pd *PostgresDriver) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	return pgxQuerier{exec: pd.pool}.ExecContext(ctx, query, args...)
}

func (pd *PostgresDriver) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return pgxQuerier{exec: pd.pool}.QueryContext(ctx, query, args...)
}

func (pd *PostgresDriver) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return pgxQuerier{exec: pd.pool}.QueryRowContext(ctx, query, args...)
}

func (pd *PostgresDriver) InsertContext(ctx context.Context, query string, idColumn string, args ...any) (int64, error) {
	return pgxQuerier{exec: pd.pool}.InsertContext(ctx, query, idColumn, args...)
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
