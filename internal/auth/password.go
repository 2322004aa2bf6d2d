// Package auth provides the credential verifier and session tokens for
// BillMap. Password hashing is isolated behind the Hasher interface so
// the services never see bcrypt directly.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password, so callers cannot tell registered accounts apart
	// from unregistered ones.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword rejects passwords below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// Hasher hashes and verifies password credentials. It is stateless; both
// methods are safe for concurrent use.
type Hasher interface {
	// Hash derives a one-way hash from a plaintext password.
	Hash(password string) (string, error)

	// Compare checks a plaintext password against a stored hash.
	// Returns ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error

	// ValidatePassword checks that a new password meets minimum
	// requirements before it is hashed.
	ValidatePassword(password string) error
}

// BcryptHasher implements Hasher using bcrypt at the default cost.
type BcryptHasher struct{}

// NewBcryptHasher creates a bcrypt-backed Hasher.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

// Hash derives a bcrypt hash from the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare checks the password against the stored bcrypt hash.
func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// ValidatePassword checks minimum password requirements.
func (h *BcryptHasher) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}
