// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keygate/keygate/internal/validate"
)

func validInput() validate.RegistrationInput {
	return validate.RegistrationInput{
		FirstName: "ranjeet",
		LastName:  "hinge",
		Email:     "ab@gmail.com",
		Password:  "secret_password",
	}
}

func TestRun(t *testing.T) {
	rules := validate.RegistrationRules(validate.DefaultPasswordBounds())

	t.Run("valid input passes", func(t *testing.T) {
		in := validInput()
		errs := validate.Run(rules, &in)
		assert.Empty(t, errs)
	})

	t.Run("trims email before evaluation", func(t *testing.T) {
		in := validInput()
		in.Email = "  ab@gmail.com "
		errs := validate.Run(rules, &in)
		assert.Empty(t, errs)
		assert.Equal(t, "ab@gmail.com", in.Email)
	})

	t.Run("whitespace-only email reports required", func(t *testing.T) {
		in := validInput()
		in.Email = "   "
		errs := validate.Run(rules, &in)
		require.Len(t, errs, 1)
		assert.Equal(t, "Email is required", errs[0].Msg)
	})

	t.Run("failed field skips its remaining rules", func(t *testing.T) {
		// Empty email must report only the required rule, not the format rule.
		in := validInput()
		in.Email = ""
		errs := validate.Run(rules, &in)
		require.Len(t, errs, 1)
		assert.Equal(t, "Email is required", errs[0].Msg)
	})

	t.Run("errors follow rule declaration order", func(t *testing.T) {
		in := validate.RegistrationInput{}
		errs := validate.Run(rules, &in)
		require.Len(t, errs, 4)
		assert.Equal(t, "First name is required", errs[0].Msg)
		assert.Equal(t, "Last name is required", errs[1].Msg)
		assert.Equal(t, "Email is required", errs[2].Msg)
		assert.Equal(t, "Password is required", errs[3].Msg)
	})

	tests := []struct {
		name   string
		mutate func(in *validate.RegistrationInput)
		want   string
	}{
		{
			name:   "missing first name",
			mutate: func(in *validate.RegistrationInput) { in.FirstName = "" },
			want:   "First name is required",
		},
		{
			name:   "missing last name",
			mutate: func(in *validate.RegistrationInput) { in.LastName = "" },
			want:   "Last name is required",
		},
		{
			name:   "malformed email",
			mutate: func(in *validate.RegistrationInput) { in.Email = "not-an-email" },
			want:   "Email is not valid",
		},
		{
			name:   "email without tld",
			mutate: func(in *validate.RegistrationInput) { in.Email = "ab@gmail" },
			want:   "Email is not valid",
		},
		{
			name:   "email with spaces",
			mutate: func(in *validate.RegistrationInput) { in.Email = "a b@gmail.com" },
			want:   "Email is not valid",
		},
		{
			name:   "short password",
			mutate: func(in *validate.RegistrationInput) { in.Password = "test" },
			want:   "Password must be at least 8 characters",
		},
		{
			name:   "long password",
			mutate: func(in *validate.RegistrationInput) { in.Password = "this password is far too long" },
			want:   "Password must be at most 20 characters",
		},
		{
			name: "multibyte password below minimum",
			// 4 characters, 8 bytes in UTF-8.
			mutate: func(in *validate.RegistrationInput) { in.Password = "ññññ" },
			want:   "Password must be at least 8 characters",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			errs := validate.Run(rules, &in)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.want, errs[0].Msg)
		})
	}
}

func TestRegistrationRulesBounds(t *testing.T) {
	t.Run("custom bounds appear in messages", func(t *testing.T) {
		rules := validate.RegistrationRules(validate.PasswordBounds{Min: 12, Max: 64})

		in := validInput()
		in.Password = "short"
		errs := validate.Run(rules, &in)
		require.Len(t, errs, 1)
		assert.Equal(t, "Password must be at least 12 characters", errs[0].Msg)
	})

	t.Run("length bounds count characters not bytes", func(t *testing.T) {
		rules := validate.RegistrationRules(validate.DefaultPasswordBounds())

		// 20 characters, 40 bytes in UTF-8. Must pass the max rule.
		in := validInput()
		in.Password = strings.Repeat("п", 20)
		errs := validate.Run(rules, &in)
		assert.Empty(t, errs)

		// 21 characters must still fail it.
		in = validInput()
		in.Password = strings.Repeat("п", 21)
		errs = validate.Run(rules, &in)
		require.Len(t, errs, 1)
		assert.Equal(t, "Password must be at most 20 characters", errs[0].Msg)
	})

	t.Run("zero bounds fall back to defaults", func(t *testing.T) {
		rules := validate.RegistrationRules(validate.PasswordBounds{})

		in := validInput()
		in.Password = "test"
		errs := validate.Run(rules, &in)
		require.Len(t, errs, 1)
		assert.Equal(t, "Password must be at least 8 characters", errs[0].Msg)
	})
}

func TestErrorsError(t *testing.T) {
	errs := validate.Errors{
		{Msg: "Email is required"},
		{Msg: "Password is required"},
	}
	assert.Equal(t, "validation failed: Email is required; Password is required", errs.Error())
}
