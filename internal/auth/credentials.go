// Airlog - Radio Program Activity Analytics and Live Notifications
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/airlog

package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/airlog/internal/config"
)

// Credentials holds the bootstrap admin login. The plaintext password from
// configuration is bcrypt-hashed once at startup and then discarded.
type Credentials struct {
	username     string
	passwordHash []byte
}

// NewCredentials hashes the configured admin password.
func NewCredentials(cfg *config.SecurityConfig) (*Credentials, error) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil, fmt.Errorf("admin username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &Credentials{
		username:     cfg.AdminUsername,
		passwordHash: hash,
	}, nil
}

// Verify checks a login attempt. Username comparison is constant-time and
// the password check always runs, so failures do not leak which field was
// wrong through timing.
func (c *Credentials) Verify(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

// Username returns the bootstrap admin username.
func (c *Credentials) Username() string {
	return c.username
}
