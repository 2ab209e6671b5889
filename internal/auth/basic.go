// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately above the library default. Login is a rare
// operation here, so the extra hashing time is acceptable.
const bcryptCost = 12

const minPasswordLength = 8

// BasicAuthManager validates credentials against the configured admin
// account. The password is hashed once at startup and the plain text is
// never retained.
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager hashes the admin password and returns a manager.
func NewBasicAuthManager(username, password string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}
	if password == "" {
		return nil, errors.New("admin password is required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("admin password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &BasicAuthManager{
		username:     username,
		passwordHash: hash,
	}, nil
}

// ValidateCredentials checks an Authorization header carrying Basic
// credentials and returns the authenticated username.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", errors.New("authorization header must use the Basic scheme")
	}

	payload, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return "", errors.New("invalid base64 in authorization header")
	}

	parts := strings.SplitN(string(payload), ":", 2)
	if len(parts) != 2 {
		return "", errors.New("malformed basic credentials")
	}

	if !m.Verify(parts[0], parts[1]) {
		return "", errors.New("invalid username or password")
	}
	return parts[0], nil
}

// Verify checks a username/password pair. Both comparisons always run so
// response timing does not reveal which field was wrong.
func (m *BasicAuthManager) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

// GetWWWAuthenticateHeader returns the challenge value for 401 responses
// in basic auth mode.
func (m *BasicAuthManager) GetWWWAuthenticateHeader() string {
	return `Basic realm="StreamScope API", charset="UTF-8"`
}
