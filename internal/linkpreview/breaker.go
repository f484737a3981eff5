package linkpreview

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CircuitBreaker stops outbound fetches to a site after repeated failures
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time
	logger           zerolog.Logger

	failures            int
	totalRequests       int
	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mutex sync.Mutex
}

// NewCircuitBreaker opens after failureThreshold consecutive failures, or a
// 40% failure rate over at least 20 requests
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger zerolog.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// RecordSuccess records a successful request
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.totalRequests++
	cb.consecutiveFailures = 0
}

// RecordFailure records a failed request. statusCode is 0 for network
// errors.
func (cb *CircuitBreaker) RecordFailure(statusCode int) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failures++
	cb.consecutiveFailures++
	cb.totalRequests++
	cb.lastFailureTime = cb.now()

	// blocking responses twice in a row open at once
	blocked := statusCode == http.StatusTooManyRequests || statusCode == http.StatusForbidden
	if cb.consecutiveFailures >= 2 && blocked {
		cb.open("blocked responses")
		return
	}
	if cb.consecutiveFailures >= cb.failureThreshold {
		cb.open("consecutive failures")
		return
	}
	if cb.totalRequests >= 20 && float64(cb.failures)/float64(cb.totalRequests) >= 0.40 {
		cb.open("failure rate")
	}
}

func (cb *CircuitBreaker) open(reason string) {
	if cb.isOpen {
		return
	}
	cb.isOpen = true
	cb.logger.Warn().
		Str("reason", reason).
		Int("failures", cb.failures).
		Int("total", cb.totalRequests).
		Dur("reset_after", cb.resetTimeout).
		Msg("circuit breaker open")
}

// CanProceed reports whether requests are allowed. After resetTimeout an
// open breaker closes with cleared counters.
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.logger.Info().Msg("circuit breaker reset")
		cb.isOpen = false
		cb.failures = 0
		cb.totalRequests = 0
		cb.consecutiveFailures = 0
		return true
	}
	return false
}

// Status is a snapshot of the breaker
type Status struct {
	Open     bool `json:"open"`
	Failures int  `json:"failures"`
	Total    int  `json:"total"`
}

func (cb *CircuitBreaker) GetStatus() Status {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return Status{Open: cb.isOpen, Failures: cb.failures, Total: cb.totalRequests}
}
