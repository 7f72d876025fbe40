package auth

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
)

// MinPasswordLength is the shortest password accepted by HashPassword.
const MinPasswordLength = 8

// HashPassword derives an argon2id hash suitable for the users.password_hash column.
func HashPassword(password string) (string, error) {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return "", errors.New("auth: password too short")
	}
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(password, hash)
}
