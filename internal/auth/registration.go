// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Registration is a validated registration payload. The validation gate is
// responsible for field rules and trimming; by the time a Registration
// reaches the service the fields are assumed well-formed.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegistrationService composes the hasher, account store, and token issuer
// into the end-to-end registration flow.
type RegistrationService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	issuer   *TokenIssuer
	logger   *slog.Logger
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(accounts AccountRepository, hasher PasswordHasher, issuer *TokenIssuer, logger *slog.Logger) (*RegistrationService, error) {
	if accounts == nil {
		return nil, oops.Code("REGISTRATION_SERVICE_INVALID").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("REGISTRATION_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if issuer == nil {
		return nil, oops.Code("REGISTRATION_SERVICE_INVALID").Errorf("token issuer is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{
		accounts: accounts,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger,
	}, nil
}

// Register creates an account and issues its first token pair.
//
// The password is hashed before the insert so the CPU-bound work never holds
// a database transaction open. Duplicate emails surface as ErrDuplicateEmail,
// decided by the store's uniqueness constraint rather than a prior read.
//
// If token issuance fails after the account was created, the account is kept
// and the error returned: registration is at-least-once on the account, and
// the client simply logs in to obtain tokens. No compensating delete is
// attempted.
func (s *RegistrationService) Register(ctx context.Context, reg Registration) (*Account, TokenPair, error) {
	s.logger.Debug("new registration request",
		"first_name", reg.FirstName,
		"last_name", reg.LastName,
		"email", reg.Email,
	)

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, TokenPair{}, oops.Code("AUTH_HASH_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(reg.FirstName, reg.LastName, reg.Email, hash)
	if err != nil {
		return nil, TokenPair{}, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "build account").
			Wrap(err)
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, TokenPair{}, err
		}
		return nil, TokenPair{}, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			Wrap(err)
	}

	pair, err := s.issuer.Issue(ctx, account)
	if err != nil {
		// Account exists but has no session; see doc comment above.
		return nil, TokenPair{}, oops.Code("TOKEN_ISSUE_FAILED").
			With("account_id", account.ID).
			Wrap(err)
	}

	s.logger.Info("account registered", "account_id", account.ID)

	return account, pair, nil
}
