package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/dlomaxw/shinebebright-sub001/internal/config"
	"github.com/gin-gonic/gin"
)

// KeyedLimiter keeps one RateLimiter per client key, usually the remote IP
type KeyedLimiter struct {
	cfg config.RateLimitConfig
	now func() time.Time

	mu       sync.Mutex
	limiters map[string]*RateLimiter
}

func NewKeyedLimiter(cfg config.RateLimitConfig) *KeyedLimiter {
	return &KeyedLimiter{
		cfg:      cfg,
		now:      time.Now,
		limiters: make(map[string]*RateLimiter),
	}
}

// Allow records a request for key and reports whether it is within limits
func (k *KeyedLimiter) Allow(key string) bool {
	if !k.cfg.Enabled {
		return true
	}
	return k.limiter(key).AllowRequest()
}

// Stats returns the counters of one key
func (k *KeyedLimiter) Stats(key string) Stats {
	if !k.cfg.Enabled {
		return Stats{}
	}
	return k.limiter(key).GetStats()
}

func (k *KeyedLimiter) limiter(key string) *RateLimiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	rl, ok := k.limiters[key]
	if !ok {
		rl = NewRateLimiter(k.cfg.RequestsPerMinute, k.cfg.RequestsPerHour, k.cfg.RequestsPerDay, true)
		rl.now = k.now
		k.limiters[key] = rl
	}
	return rl
}

// Sweep drops keys with no requests in the last day and returns how many
// were removed
func (k *KeyedLimiter) Sweep() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	removed := 0
	for key, rl := range k.limiters {
		if rl.idle() {
			delete(k.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// Middleware rejects requests over the limit with 429, keyed by client IP
func (k *KeyedLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !k.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			return
		}
		c.Next()
	}
}
