// Package handlers exposes the public site API and the admin back-office
// over gin.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dlomaxw/shinebebright-sub001/internal/logging"
	"github.com/dlomaxw/shinebebright-sub001/internal/schema"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errorStatus = map[error]int{
	gorm.ErrRecordNotFound: http.StatusNotFound,
	gorm.ErrDuplicatedKey:  http.StatusConflict,
}

// respondError maps err to a status code and writes {"error": ...}
func respondError(c *gin.Context, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
		return
	}

	for target, status := range errorStatus {
		if errors.Is(err, target) {
			c.JSON(status, gin.H{"error": http.StatusText(status)})
			return
		}
	}

	logging.FromGin(c).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
}

// bindJSON decodes and validates the request body into dst. It writes the
// error response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := schema.Validate(dst); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

func queryBool(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
