// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

// Package auth provides the credential issuance core for KeyGate.
//
// # Domain Types
//
// Domain types (Account, RefreshSession) should be created using their
// constructors:
//   - NewAccount - creates an Account with a trimmed email and default role
//   - NewRefreshSession - creates a RefreshSession with validated owner and expiry
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - RegistrationService - hashes credentials, creates the account, issues tokens
//   - TokenIssuer - mints and verifies RS256 access/refresh token pairs
//
// Token verification for refresh tokens consults the RefreshSessionRepository:
// a refresh token without a live session row is invalid regardless of its
// signature.
package auth
