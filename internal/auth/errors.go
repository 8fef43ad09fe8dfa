// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when account creation hits the email
// uniqueness constraint. Callers must not reveal which account matched.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, expired, malformed, or (for refresh tokens) no live
// session row. The causes are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid token")
