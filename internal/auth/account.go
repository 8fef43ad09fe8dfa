// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Role is an account's authorization role.
type Role string

// Account roles. Registration always produces RoleCustomer; elevation to
// RoleAdmin is reserved for trusted internal callers and never derived from
// request input.
const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Account represents a registered user account. The ID is assigned by the
// store on creation and is the only field exposed to clients.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewAccount creates a validated Account with RoleCustomer. The email is
// trimmed; its format is the validation gate's responsibility.
func NewAccount(firstName, lastName, email, passwordHash string) (*Account, error) {
	email = strings.TrimSpace(email)
	if firstName == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("first name cannot be empty")
	}
	if lastName == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("last name cannot be empty")
	}
	if email == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("password hash cannot be empty")
	}

	return &Account{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleCustomer,
		CreatedAt:    time.Now(),
	}, nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account and fills in its ID. The existence check
	// and insert are a single atomic unit: under concurrent calls with the
	// same email exactly one succeeds and the others get ErrDuplicateEmail.
	Create(ctx context.Context, account *Account) error

	// GetByEmail retrieves an account by its exact stored email.
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id int64) (*Account, error)
}
