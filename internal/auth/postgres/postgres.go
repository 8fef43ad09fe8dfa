// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

// Package postgres provides PostgreSQL implementations of the auth
// repositories.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories need. Satisfied by
// *pgxpool.Pool and by pgxmock.PgxPoolIface in unit tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
