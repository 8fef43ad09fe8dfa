// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package httpapi

import (
	"encoding/base64"
	"math/big"
	"net/http"
)

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// handleJWKS publishes the access-token verification key so other services
// can validate tokens without the signing secret.
func (h *Handler) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := h.issuer.PublicKey()

	writeJSON(w, http.StatusOK, jwks{
		Keys: []jwk{{
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}
