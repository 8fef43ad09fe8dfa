// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/keygate/keygate/internal/auth"
)

// RefreshSessionRepository implements auth.RefreshSessionRepository using
// PostgreSQL.
type RefreshSessionRepository struct {
	db DB
}

// NewRefreshSessionRepository creates a new RefreshSessionRepository.
func NewRefreshSessionRepository(db DB) *RefreshSessionRepository {
	return &RefreshSessionRepository{db: db}
}

// Create stores a new refresh session.
func (r *RefreshSessionRepository) Create(ctx context.Context, session *auth.RefreshSession) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_sessions (id, account_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`,
		session.ID.String(),
		session.AccountID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert refresh_session").
			With("account_id", session.AccountID).
			Wrap(err)
	}
	return nil
}

// Get retrieves a session by ID.
func (r *RefreshSessionRepository) Get(ctx context.Context, id ulid.ULID) (*auth.RefreshSession, error) {
	var (
		idStr     string
		accountID int64
		expiresAt time.Time
		createdAt time.Time
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, expires_at, created_at
		FROM refresh_sessions
		WHERE id = $1
	`, id.String()).Scan(&idStr, &accountID, &expiresAt, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get refresh_session").
			With("id", id.String()).
			Wrap(err)
	}

	parsed, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.RefreshSession{
		ID:        parsed,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// Delete removes a session by ID.
func (r *RefreshSessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM refresh_sessions WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete refresh_session").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns the count.
func (r *RefreshSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM refresh_sessions WHERE expires_at < $1
	`, time.Now())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired refresh_sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.RefreshSessionRepository = (*RefreshSessionRepository)(nil)
