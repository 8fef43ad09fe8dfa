// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RefreshSession represents one issued refresh credential. Its ID matches the
// session claim embedded in the refresh token; the row stores no token
// material, so a leaked table never leaks usable tokens. Deleting the row
// revokes the token.
type RefreshSession struct {
	ID        ulid.ULID
	AccountID int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshSession creates a validated RefreshSession for an account.
func NewRefreshSession(accountID int64, expiresAt time.Time) (*RefreshSession, error) {
	if accountID <= 0 {
		return nil, oops.Code("SESSION_INVALID_ACCOUNT").Errorf("account ID must be positive")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &RefreshSession{
		ID:        ulid.Make(),
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *RefreshSession) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *RefreshSession) IsExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// RefreshSessionRepository manages refresh session persistence. It is used
// exclusively by the TokenIssuer and logout/rotation flows; nothing else may
// mutate sessions.
type RefreshSessionRepository interface {
	// Create stores a new refresh session.
	Create(ctx context.Context, session *RefreshSession) error

	// Get retrieves a session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ulid.ULID) (*RefreshSession, error)

	// Delete removes a session by ID, revoking its refresh token.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
