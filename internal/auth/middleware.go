package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const gateContextKey = "auth.gate"

// Manager builds a cookie-backed gate for every request.
type Manager struct {
	gateCfg GateConfig
	secret  string
	secure  bool
}

// NewManager creates a Manager from the admin config. Without a session
// secret a random one is generated, so sessions do not survive a restart.
func NewManager(cfg config.AdminConfig, creds CredentialStore) *Manager {
	secret := cfg.SessionSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		secret = hex.EncodeToString(buf)
		log.Warn().Str("component", "auth").Msg("session_secret not set, using an ephemeral secret")
	}

	return &Manager{
		gateCfg: GateConfig{
			Passcode:    cfg.Passcode,
			Credentials: creds,
			TTL:         cfg.SessionTTL(),
		},
		secret: secret,
		secure: cfg.CookieSecure,
	}
}

// Attach restores the request's gate from its session cookie.
func (m *Manager) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(gateContextKey, NewGate(m.gateCfg, NewCookieStorage(c, m.secret, m.secure)))
		c.Next()
	}
}

// RequireAdmin aborts with 401 unless the request's gate is authenticated.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		gate := FromContext(c)
		if gate == nil || !gate.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// FromContext returns the gate attached to c, or nil.
func FromContext(c *gin.Context) *Gate {
	v, ok := c.Get(gateContextKey)
	if !ok {
		return nil
	}
	gate, _ := v.(*Gate)
	return gate
}
