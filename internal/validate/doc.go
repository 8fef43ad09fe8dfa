// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

// Package validate implements the registration validation gate.
//
// The gate is split into two units: a declarative rule table
// (RegistrationRules) and the engine that evaluates it (Run). Rules are
// evaluated in declaration order and failures are reported in that order,
// one message per failed rule. A field that fails a rule skips its remaining
// rules, so an empty email reports only "Email is required".
package validate
