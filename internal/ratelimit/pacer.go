package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer bounds concurrent outbound fetches and spaces their start times
type Pacer struct {
	slots     chan struct{}
	baseDelay time.Duration
	jitter    time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewPacer creates a pacer allowing maxInFlight concurrent requests with at
// least baseDelay (plus up to jitter) between starts
func NewPacer(maxInFlight int, baseDelay, jitter time.Duration) *Pacer {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Pacer{
		slots:     make(chan struct{}, maxInFlight),
		baseDelay: baseDelay,
		jitter:    jitter,
	}
}

// Acquire waits for a free slot and the pacing delay. Release must be
// called once the request is done.
func (p *Pacer) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	required := p.baseDelay
	if p.jitter > 0 {
		required += time.Duration(rand.Int63n(int64(p.jitter)))
	}
	if wait := required - time.Since(p.lastRequest); wait > 0 && !p.lastRequest.IsZero() {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			<-p.slots
			return ctx.Err()
		}
	}

	p.lastRequest = time.Now()
	return nil
}

// Release marks a request as completed
func (p *Pacer) Release() {
	<-p.slots
}

// InFlight returns the current number of held slots
func (p *Pacer) InFlight() int {
	return len(p.slots)
}
