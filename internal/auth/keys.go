// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/samber/oops"
)

// LoadPrivateKey reads an RSA private key from a PEM file. Both PKCS#1 and
// PKCS#8 encodings are accepted.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Code("AUTH_KEY_READ_FAILED").
			With("path", path).
			Wrap(err)
	}
	return ParsePrivateKey(b)
}

// ParsePrivateKey parses a PEM-encoded RSA private key.
func ParsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, oops.Code("AUTH_KEY_INVALID").Errorf("no PEM block found")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, oops.Code("AUTH_KEY_INVALID").
			With("operation", "parse private key").
			Wrap(err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, oops.Code("AUTH_KEY_INVALID").Errorf("private key is not RSA")
	}
	return key, nil
}
