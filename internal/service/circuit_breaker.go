package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
)

// circuitBreaker refuses calls after threshold consecutive failures. Once the
// cooldown has passed a single trial call is let through: success closes the
// breaker, failure keeps it open for another cooldown.
type circuitBreaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

func newCircuitBreaker(threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *circuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.threshold <= 0 || b.failures < b.threshold {
		return nil
	}
	if now := b.now(); now.Sub(b.openedAt) >= b.cooldown {
		// half-open: later callers wait for this trial's outcome
		b.openedAt = now
		return nil
	}
	return fmt.Errorf("%w: circuit breaker open after %d consecutive errors", common.ErrGenerationFailed, b.failures)
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.threshold {
		b.openedAt = b.now()
	}
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}
