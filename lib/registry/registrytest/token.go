// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registrytest

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// sessionLifetime bounds how long an issued token is accepted, even
// without a logout.
const sessionLifetime = 12 * time.Hour

// tokenIssuer signs HS256 session tokens. The key is random per
// server, so tokens never survive a restart.
type tokenIssuer struct {
	key []byte
}

func newTokenIssuer() (*tokenIssuer, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("registrytest: generating signing key: %w", err)
	}
	return &tokenIssuer{key: key}, nil
}

// issue returns a signed token for username and its session ID.
func (issuer *tokenIssuer) issue(username string, now time.Time) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(issuer.key)
	if err != nil {
		return "", "", fmt.Errorf("registrytest: signing token: %w", err)
	}
	return token, sessionID, nil
}

// verify checks the signature and expiry and returns the session ID.
// A valid signature alone does not make a live session: the caller
// still looks the ID up, so logout takes effect immediately.
func (issuer *tokenIssuer) verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return issuer.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", fmt.Errorf("registrytest: token has no session ID")
	}
	return claims.ID, nil
}
