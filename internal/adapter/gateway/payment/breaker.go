package payment

import (
	"errors"
	"sync"
	"time"

	"github.com/ingressolabs/ticketsales/internal/core/domain"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker guards the gateway from hammering a downstream that is
// already failing. It trips open after consecutive failures, rejects calls
// for a cooldown period, then lets a single probe through half-open.
type circuitBreaker struct {
	mu sync.Mutex

	state         breakerState
	failures      int
	maxFailures   int
	cooldown      time.Duration
	openedAt      time.Time
	probeInFlight bool
}

func newCircuitBreaker(maxFailures int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
	}
}

// allow reports whether a call may proceed. A rejected call is equivalent to
// a transient gateway failure from the caller's point of view.
func (b *circuitBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if time.Since(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
		b.probeInFlight = true
		return true
	default: // half-open: one probe at a time
		if b.probeInFlight {
			return false
		}
		b.probeInFlight = true
		return true
	}
}

// record feeds a call outcome back into the breaker. Only transient failures
// count against the threshold: a declined card says nothing about gateway
// health.
func (b *circuitBreaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.probeInFlight = false

	if err != nil && isTransient(err) {
		b.failures++
		if b.failures >= b.maxFailures || b.state == breakerHalfOpen {
			b.state = breakerOpen
			b.openedAt = time.Now()
		}
		return
	}

	b.failures = 0
	b.state = breakerClosed
}

func isTransient(err error) bool {
	return errors.Is(err, domain.ErrPaymentTransient)
}
