package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier represents the minimal database operations used by services.
// Both *pgxpool.Pool and pgxmock pools satisfy this interface.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ErrNotFound covers both a missing row and a row the caller may not view or
// mutate. The two cases are reported identically so callers cannot probe for
// the existence of private places or routes.
var ErrNotFound = errors.New("not found")

// ErrConflict signals a duplicate like or an already-redeemed QR code.
var ErrConflict = errors.New("conflict")
