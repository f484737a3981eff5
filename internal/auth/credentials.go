package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore returns the bcrypt hash stored for a username.
type CredentialStore interface {
	PasswordHash(username string) (string, bool)
}

// StaticCredentials is a single configured admin account.
type StaticCredentials struct {
	Username string
	Hash     string
}

func (s StaticCredentials) PasswordHash(username string) (string, bool) {
	if s.Username == "" || s.Hash == "" || username != s.Username {
		return "", false
	}
	return s.Hash, true
}

// ChainCredentials tries each store in order.
type ChainCredentials []CredentialStore

func (c ChainCredentials) PasswordHash(username string) (string, bool) {
	for _, store := range c {
		if store == nil {
			continue
		}
		if hash, ok := store.PasswordHash(username); ok {
			return hash, true
		}
	}
	return "", false
}

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
