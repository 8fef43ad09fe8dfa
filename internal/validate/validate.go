// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package validate

import "strings"

// FieldError is one failed rule, reported to the client as {"msg": ...}.
type FieldError struct {
	Msg string `json:"msg"`
}

// Errors is an ordered list of field errors. It implements error so the gate
// outcome can travel through error returns.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Msg
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Run sanitizes the input in place, then evaluates the rules in declaration
// order. It returns nil when every rule passes. A field that fails a rule
// skips its remaining rules.
func Run(rules []Rule, in *RegistrationInput) Errors {
	sanitize(in)

	var errs Errors
	failed := make(map[string]bool, 4)
	for _, r := range rules {
		if failed[r.Field] {
			continue
		}
		if !r.Check(in) {
			failed[r.Field] = true
			errs = append(errs, FieldError{Msg: r.Message})
		}
	}
	return errs
}
