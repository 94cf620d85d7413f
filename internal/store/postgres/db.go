// Package postgres holds the PostgreSQL side of goodnews: the per-user remote
// link collection and the user directory of the sign-in flow.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// DB wraps the pool so repositories can be built on a mock.
type DB struct{ Pool PgxPool }

// New creates a connection pool for dsn.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Ping checks that the database answers.
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

// Close closes the underlying pool.
func (db *DB) Close() { db.Pool.Close() }

const (
	codeUniqueViolation    = "23505"
	codeInsufficientPrivil = "42501"
)

func pgCode(err error) string {
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return pg.Code
	}
	return ""
}

// isUniqueViolation reports whether the error is a unique constraint violation.
func isUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

// mapErr turns a refused statement into errs.ErrPermissionDenied and wraps
// everything else with op.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if pgCode(err) == codeInsufficientPrivil {
		return fmt.Errorf("%s: %w: %v", op, errs.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
