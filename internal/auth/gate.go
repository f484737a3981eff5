// Package auth implements the admin session gate.
//
// A Gate grants a single capability, "admin", through either the shared
// passcode or a username/password pair. Both paths write the same marker
// under SessionKey with the same expiry, so route guards only ever ask
// Authenticated.
package auth

import (
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// SessionKey is the storage key of the session marker.
	SessionKey = "admin_session"

	sessionMarker = "authenticated"
)

// GateConfig configures both login paths.
type GateConfig struct {
	Passcode    string
	Credentials CredentialStore
	TTL         time.Duration
}

// Gate holds one session's authentication state. It is not safe for
// concurrent use; build one per request or per CLI session.
type Gate struct {
	cfg           GateConfig
	storage       Storage
	authenticated bool
}

// NewGate creates a gate and restores its state from storage.
func NewGate(cfg GateConfig, storage Storage) *Gate {
	g := &Gate{cfg: cfg, storage: storage}
	if v, ok := storage.Get(SessionKey); ok && v == sessionMarker {
		g.authenticated = true
	}
	return g
}

// Login checks passcode against the configured secret. A mismatch leaves
// the current state untouched.
func (g *Gate) Login(passcode string) bool {
	if g.cfg.Passcode == "" || passcode == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(passcode), []byte(g.cfg.Passcode)) != 1 {
		return false
	}
	g.grant()
	return true
}

// LoginWithCredentials checks a username/password pair against the
// credential store.
func (g *Gate) LoginWithCredentials(username, password string) bool {
	if g.cfg.Credentials == nil || username == "" || password == "" {
		return false
	}
	hash, ok := g.cfg.Credentials.PasswordHash(username)
	if !ok || hash == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return false
	}
	g.grant()
	return true
}

// Logout clears the session. Calling it while logged out is a no-op.
func (g *Gate) Logout() {
	g.authenticated = false
	g.storage.Remove(SessionKey)
}

// Authenticated reports whether the session holds the admin capability.
// A marker that expired or was cleared from storage ends the session.
func (g *Gate) Authenticated() bool {
	if !g.authenticated {
		return false
	}
	if v, ok := g.storage.Get(SessionKey); !ok || v != sessionMarker {
		g.authenticated = false
	}
	return g.authenticated
}

func (g *Gate) grant() {
	g.authenticated = true
	g.storage.Set(SessionKey, sessionMarker, g.cfg.TTL)
}
