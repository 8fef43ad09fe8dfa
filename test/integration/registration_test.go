// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 KeyGate Contributors

//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/keygate/keygate/internal/auth"
)

type registerResponse struct {
	ID     int64 `json:"id"`
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

func postRegister(body string) (*http.Response, registerResponse) {
	resp, err := http.Post(env.server.URL+"/auth/register", "application/json", bytes.NewReader([]byte(body)))
	Expect(err).NotTo(HaveOccurred())

	var decoded registerResponse
	Expect(json.NewDecoder(resp.Body).Decode(&decoded)).To(Succeed())
	Expect(resp.Body.Close()).To(Succeed())
	return resp, decoded
}

func accountCount(email string) int {
	var count int
	err := env.pool.QueryRow(env.ctx, `SELECT count(*) FROM accounts WHERE email = $1`, email).Scan(&count)
	Expect(err).NotTo(HaveOccurred())
	return count
}

const validPayload = `{"firstName":"ranjeet","lastName":"hinge","email":"ab@gmail.com","password":"secret_password"}`

var _ = Describe("POST /auth/register", func() {
	BeforeEach(func() {
		env.truncate()
	})

	Context("with a valid payload", func() {
		It("creates the account and returns 201 with the new ID", func() {
			resp, body := postRegister(validPayload)

			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(body.ID).To(BeNumerically(">", 0))

			account, err := env.Accounts.GetByEmail(env.ctx, "ab@gmail.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(account.ID).To(Equal(body.ID))
			Expect(account.Role).To(Equal(auth.RoleCustomer))
			Expect(account.PasswordHash).To(HavePrefix("$argon2id$"))
			Expect(account.PasswordHash).NotTo(Equal("secret_password"))
		})

		It("sets two httpOnly cookies holding verifiable tokens", func() {
			resp, _ := postRegister(validPayload)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			cookies := resp.Cookies()
			Expect(cookies).To(HaveLen(2))

			byName := map[string]*http.Cookie{}
			for _, c := range cookies {
				Expect(c.HttpOnly).To(BeTrue())
				byName[c.Name] = c
			}

			access := byName["accessToken"]
			Expect(access).NotTo(BeNil())
			Expect(strings.Count(access.Value, ".")).To(Equal(2))
			claims, err := env.Issuer.VerifyAccess(access.Value)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Role).To(Equal(auth.RoleCustomer))

			refresh := byName["refreshToken"]
			Expect(refresh).NotTo(BeNil())
			_, err = env.Issuer.VerifyRefresh(env.ctx, refresh.Value)
			Expect(err).NotTo(HaveOccurred())
		})

		It("trims surrounding whitespace from the email", func() {
			resp, _ := postRegister(`{"firstName":"ranjeet","lastName":"hinge","email":"  ab@gmail.com ","password":"secret_password"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			Expect(accountCount("ab@gmail.com")).To(Equal(1))
		})
	})

	Context("with an invalid payload", func() {
		It("rejects an empty email without side effects", func() {
			resp, body := postRegister(`{"firstName":"ranjeet","lastName":"hinge","email":"","password":"secret_password"}`)

			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body.Errors).To(HaveLen(1))
			Expect(body.Errors[0].Msg).To(Equal("Email is required"))

			var count int
			err := env.pool.QueryRow(env.ctx, `SELECT count(*) FROM accounts`).Scan(&count)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
		})

		It("rejects a four-character password", func() {
			resp, _ := postRegister(`{"firstName":"ranjeet","lastName":"hinge","email":"ab@gmail.com","password":"test"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(accountCount("ab@gmail.com")).To(BeZero())
		})
	})

	Context("with a duplicate email", func() {
		It("rejects the second registration and keeps one row", func() {
			resp, _ := postRegister(validPayload)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			resp, body := postRegister(validPayload)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(body.Errors).To(HaveLen(1))
			Expect(body.Errors[0].Msg).NotTo(ContainSubstring("ab@gmail.com"))

			Expect(accountCount("ab@gmail.com")).To(Equal(1))
		})
	})

	Context("refresh token revocation", func() {
		It("invalidates the refresh token once its session row is deleted", func() {
			resp, _ := postRegister(validPayload)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var refresh string
			for _, c := range resp.Cookies() {
				if c.Name == "refreshToken" {
					refresh = c.Value
				}
			}
			Expect(refresh).NotTo(BeEmpty())

			claims, err := env.Issuer.VerifyRefresh(env.ctx, refresh)
			Expect(err).NotTo(HaveOccurred())

			sessionID, err := ulid.Parse(claims.SessionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(env.Sessions.Delete(env.ctx, sessionID)).To(Succeed())

			_, err = env.Issuer.VerifyRefresh(env.ctx, refresh)
			Expect(errors.Is(err, auth.ErrInvalidToken)).To(BeTrue())
		})
	})
})

var _ = Describe("GET /.well-known/jwks.json", func() {
	It("publishes the RS256 verification key", func() {
		resp, err := http.Get(env.server.URL + "/.well-known/jwks.json")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var body struct {
			Keys []struct {
				Kty string `json:"kty"`
				Alg string `json:"alg"`
			} `json:"keys"`
		}
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Keys).To(HaveLen(1))
		Expect(body.Keys[0].Kty).To(Equal("RSA"))
		Expect(body.Keys[0].Alg).To(Equal("RS256"))
	})
})
