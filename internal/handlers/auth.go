package handlers

import (
	"net/http"

	"github.com/dlomaxw/shinebebright-sub001/internal/auth"
	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/schema"
	"github.com/gin-gonic/gin"
)

// AuthHandler drives the per-request admin gate. Routes using it must sit
// behind auth.Manager.Attach.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) gate(c *gin.Context) *auth.Gate {
	gate := auth.FromContext(c)
	if gate == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
	}
	return gate
}

// Login checks the shared passcode
func (h *AuthHandler) Login(c *gin.Context) {
	var in schema.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	gate := h.gate(c)
	if gate == nil {
		return
	}
	if !gate.Login(in.Passcode) {
		logging.FromGin(c).Warn().Str("method", "passcode").Msg("admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid passcode"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// LoginWithCredentials checks a username and password
func (h *AuthHandler) LoginWithCredentials(c *gin.Context) {
	var in schema.CredentialsInput
	if !bindJSON(c, &in) {
		return
	}
	gate := h.gate(c)
	if gate == nil {
		return
	}
	if !gate.LoginWithCredentials(in.Username, in.Password) {
		logging.FromGin(c).Warn().Str("method", "credentials").Str("username", in.Username).Msg("admin login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// Logout always succeeds
func (h *AuthHandler) Logout(c *gin.Context) {
	if gate := h.gate(c); gate != nil {
		gate.Logout()
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
	}
}

func (h *AuthHandler) Session(c *gin.Context) {
	if gate := h.gate(c); gate != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": gate.Authenticated()})
	}
}
