// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Default token lifetimes. Access tokens are short-lived and stateless;
// refresh tokens are long-lived and backed by a session row.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Token type claim values. Each kind is stamped so a refresh token cannot be
// replayed where an access token is expected, and vice versa.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenPair holds one freshly issued access/refresh token pair. It is never
// persisted; the refresh token's session row is the only durable trace.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccessClaims are the claims carried by an access token.
type AccessClaims struct {
	Role      Role   `json:"role"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// AccountID returns the token subject as an account ID.
func (c *AccessClaims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// RefreshClaims are the claims carried by a refresh token. SessionID keys the
// RefreshSession row that must exist for the token to be honored.
type RefreshClaims struct {
	SessionID string `json:"sid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuerConfig configures a TokenIssuer. Zero values fall back to
// defaults.
type TokenIssuerConfig struct {
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenIssuer mints and verifies RS256-signed token pairs. Verification needs
// only the public key, so other services can validate access tokens without
// the signing secret.
type TokenIssuer struct {
	key        *rsa.PrivateKey
	sessions   RefreshSessionRepository
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(key *rsa.PrivateKey, sessions RefreshSessionRepository, cfg TokenIssuerConfig) (*TokenIssuer, error) {
	if key == nil {
		return nil, oops.Code("TOKEN_ISSUER_INVALID").Errorf("signing key is required")
	}
	if sessions == nil {
		return nil, oops.Code("TOKEN_ISSUER_INVALID").Errorf("session repository is required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "keygate"
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenIssuer{
		key:        key,
		sessions:   sessions,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// PublicKey returns the verification key for issued tokens.
func (t *TokenIssuer) PublicKey() *rsa.PublicKey {
	return &t.key.PublicKey
}

// AccessTTL returns the configured access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (t *TokenIssuer) RefreshTTL() time.Duration {
	return t.refreshTTL
}

// Issue mints an access/refresh token pair for an account and persists the
// refresh session in the same operation. If the session row cannot be stored
// no tokens are returned.
func (t *TokenIssuer) Issue(ctx context.Context, account *Account) (TokenPair, error) {
	if account == nil || account.ID <= 0 {
		return TokenPair{}, oops.Code("TOKEN_ISSUE_FAILED").Errorf("account with assigned ID is required")
	}

	now := time.Now()
	subject := strconv.FormatInt(account.ID, 10)

	session, err := NewRefreshSession(account.ID, now.Add(t.refreshTTL))
	if err != nil {
		return TokenPair{}, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "create refresh session").
			Wrap(err)
	}

	access := jwt.NewWithClaims(jwt.SigningMethodRS256, &AccessClaims{
		Role:      account.Role,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	})
	accessToken, err := access.SignedString(t.key)
	if err != nil {
		return TokenPair{}, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "sign access token").
			Wrap(err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodRS256, &RefreshClaims{
		SessionID: session.ID.String(),
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	})
	refreshToken, err := refresh.SignedString(t.key)
	if err != nil {
		return TokenPair{}, oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "sign refresh token").
			Wrap(err)
	}

	if err := t.sessions.Create(ctx, session); err != nil {
		return TokenPair{}, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist refresh session").
			With("account_id", account.ID).
			Wrap(err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccess checks an access token's signature, expiry, and kind. A refresh
// token is rejected even though it carries the same signature. Any failure is
// reported as ErrInvalidToken.
func (t *TokenIssuer) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.parse(tokenStr, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh checks a refresh token's signature and expiry, then requires a
// live session row. A deleted or expired session yields the same
// ErrInvalidToken as a signature failure so callers cannot probe session
// state. Infrastructure failures while reading the session store are reported
// separately.
func (t *TokenIssuer) VerifyRefresh(ctx context.Context, tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := t.parse(tokenStr, claims); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	sessionID, err := ulid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := t.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, oops.Code("TOKEN_VERIFY_FAILED").
			With("operation", "get refresh session").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, ErrInvalidToken
	}

	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || session.AccountID != accountID {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (t *TokenIssuer) parse(tokenStr string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return &t.key.PublicKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
