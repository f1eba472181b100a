package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier compares a plaintext password with a stored hash.
type PasswordVerifier interface {
	Verify(plaintext, hash string) (bool, error)
}

// BcryptVerifier is the bcrypt backed PasswordVerifier.
type BcryptVerifier struct{}

// Verify reports a mismatch as (false, nil). Any other bcrypt failure, such as
// a malformed stored hash, is returned as an error.
func (BcryptVerifier) Verify(plaintext, hash string) (bool, error) {
	err := ComparePassword(hash, plaintext)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
