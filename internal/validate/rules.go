// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Default password length bounds. Both a minimum and a maximum must exist;
// callers may reconfigure the values but not remove either bound.
const (
	DefaultPasswordMin = 8
	DefaultPasswordMax = 20
)

// emailRegex accepts addresses of the shape local@domain.tld without
// whitespace. Full RFC 5322 parsing is deliberately out of scope.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationInput is the typed registration payload the rule table is
// evaluated against.
type RegistrationInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Rule is one declarative validation rule: a field name, the message reported
// on failure, and a predicate returning true when the input passes.
type Rule struct {
	Field   string
	Message string
	Check   func(in *RegistrationInput) bool
}

// PasswordBounds configures the password length rule pair.
type PasswordBounds struct {
	Min int
	Max int
}

// DefaultPasswordBounds returns the standard 8..20 bounds.
func DefaultPasswordBounds() PasswordBounds {
	return PasswordBounds{Min: DefaultPasswordMin, Max: DefaultPasswordMax}
}

// RegistrationRules returns the ordered rule table for registration. The
// email is trimmed by the engine's sanitize pass before any rule runs.
func RegistrationRules(bounds PasswordBounds) []Rule {
	if bounds.Min <= 0 {
		bounds.Min = DefaultPasswordMin
	}
	if bounds.Max <= 0 {
		bounds.Max = DefaultPasswordMax
	}

	return []Rule{
		{
			Field:   "firstName",
			Message: "First name is required",
			Check:   func(in *RegistrationInput) bool { return in.FirstName != "" },
		},
		{
			Field:   "lastName",
			Message: "Last name is required",
			Check:   func(in *RegistrationInput) bool { return in.LastName != "" },
		},
		{
			Field:   "email",
			Message: "Email is required",
			Check:   func(in *RegistrationInput) bool { return in.Email != "" },
		},
		{
			Field:   "email",
			Message: "Email is not valid",
			Check:   func(in *RegistrationInput) bool { return emailRegex.MatchString(in.Email) },
		},
		{
			Field:   "password",
			Message: "Password is required",
			Check:   func(in *RegistrationInput) bool { return in.Password != "" },
		},
		{
			Field:   "password",
			Message: passwordMinMessage(bounds.Min),
			Check: func(in *RegistrationInput) bool {
				// Length bounds count characters, not bytes, so multibyte
				// passwords are measured the way users count them.
				return utf8.RuneCountInString(in.Password) >= bounds.Min
			},
		},
		{
			Field:   "password",
			Message: passwordMaxMessage(bounds.Max),
			Check: func(in *RegistrationInput) bool {
				return utf8.RuneCountInString(in.Password) <= bounds.Max
			},
		},
	}
}

// sanitize normalizes the input before rule evaluation. Email is trimmed;
// the password is left untouched since leading/trailing spaces are legal
// password characters.
func sanitize(in *RegistrationInput) {
	in.Email = strings.TrimSpace(in.Email)
}

func passwordMinMessage(minLen int) string {
	return "Password must be at least " + strconv.Itoa(minLen) + " characters"
}

func passwordMaxMessage(maxLen int) string {
	return "Password must be at most " + strconv.Itoa(maxLen) + " characters"
}
