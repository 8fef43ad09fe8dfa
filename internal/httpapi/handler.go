// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/keygate/keygate/internal/auth"
	"github.com/keygate/keygate/internal/observability"
	"github.com/keygate/keygate/internal/validate"
	"github.com/keygate/keygate/pkg/errutil"
)

// DefaultRequestTimeout bounds every store and signing call made while
// handling one request.
const DefaultRequestTimeout = 10 * time.Second

// Cookie names for the issued token pair.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// maxRequestBody caps how much of a registration body is read. Four short
// fields fit comfortably; anything larger is hostile or malformed.
const maxRequestBody = 64 << 10 // 64 KiB

// conflictMessage is what a duplicate email reports. It carries the same
// shape as a validation failure so the response does not disclose which
// account matched.
const conflictMessage = "Unable to register with the provided details"

// HandlerConfig configures request handling behavior.
type HandlerConfig struct {
	// PasswordBounds sets the password length rule pair. Zero values fall
	// back to the defaults.
	PasswordBounds validate.PasswordBounds

	// CookieSecure marks issued cookies Secure. Leave false only for local
	// development over plain HTTP.
	CookieSecure bool

	// RequestTimeout bounds one request's store and signing work.
	RequestTimeout time.Duration
}

// Handler holds the wiring for all API routes.
type Handler struct {
	registrations *auth.RegistrationService
	issuer        *auth.TokenIssuer
	rules         []validate.Rule
	metrics       *observability.Metrics
	logger        *slog.Logger
	cookieSecure  bool
	timeout       time.Duration
}

// NewHandler creates an API handler. metrics may be nil; logger defaults to
// slog.Default().
func NewHandler(registrations *auth.RegistrationService, issuer *auth.TokenIssuer, metrics *observability.Metrics, logger *slog.Logger, cfg HandlerConfig) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	return &Handler{
		registrations: registrations,
		issuer:        issuer,
		rules:         validate.RegistrationRules(cfg.PasswordBounds),
		metrics:       metrics,
		logger:        logger,
		cookieSecure:  cfg.CookieSecure,
		timeout:       cfg.RequestTimeout,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("GET /.well-known/jwks.json", h.handleJWKS)
	return mux
}

// handleRegister runs the registration flow: decode, validate, register, and
// map the outcome to a transport response.
//
// Outcomes:
//   - validation failure: 400 with the ordered field-error list, no side
//     effects performed
//   - duplicate email: 400 with a generic error body, opaque by design
//   - store or issuance failure: 500, no internals leaked
//   - success: 201 with {"id": n} and both token cookies set
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in validate.RegistrationInput
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&in); err != nil {
		h.record(observability.OutcomeRejected)
		writeErrors(w, http.StatusBadRequest, validate.Errors{{Msg: "Invalid request body"}})
		return
	}

	if errs := validate.Run(h.rules, &in); len(errs) > 0 {
		h.record(observability.OutcomeRejected)
		writeErrors(w, http.StatusBadRequest, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	account, pair, err := h.registrations.Register(ctx, auth.Registration{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  in.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			h.record(observability.OutcomeConflict)
			writeErrors(w, http.StatusBadRequest, validate.Errors{{Msg: conflictMessage}})
			return
		}
		h.record(observability.OutcomeError)
		errutil.LogError(h.logger, "registration failed", err)
		writeErrors(w, http.StatusInternalServerError, validate.Errors{{Msg: "Internal server error"}})
		return
	}

	h.setTokenCookies(w, pair)
	h.record(observability.OutcomeCreated)
	writeJSON(w, http.StatusCreated, map[string]int64{"id": account.ID})
}

// setTokenCookies delivers the token pair. Both cookies are httpOnly so
// scripts cannot read them; the refresh cookie is scoped to /auth so it only
// travels on auth endpoints.
func (h *Handler) setTokenCookies(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(h.issuer.AccessTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/auth",
		MaxAge:   int(h.issuer.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) record(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordRegistration(outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write error is not recoverable here
	json.NewEncoder(w).Encode(body)
}

func writeErrors(w http.ResponseWriter, status int, errs validate.Errors) {
	writeJSON(w, status, map[string]validate.Errors{"errors": errs})
}
