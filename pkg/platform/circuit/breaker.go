// Package circuit is a consecutive-failure circuit breaker for best-effort
// side channels such as audit sinks.
package circuit

import (
	"sync"
	"time"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Breaker opens after threshold consecutive failures and lets a single probe
// through once the cooldown has elapsed.
type Breaker struct {
	mu        sync.Mutex
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	state     State
	openUntil time.Time
}

type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		b.now = now
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: 5,
		cooldown:  time.Minute,
		now:       time.Now,
		state:     StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call may proceed. After the cooldown exactly one
// caller is let through as a half-open probe.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Before(b.openUntil) {
			return false
		}
		b.state = StateHalfOpen
		return true
	default:
		return false
	}
}

// RecordSuccess closes the circuit and reports whether it was not closed before.
func (b *Breaker) RecordSuccess() (recovered bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	recovered = b.state != StateClosed
	b.failures = 0
	b.state = StateClosed
	return recovered
}

// RecordFailure counts a failure and reports whether this call opened the
// circuit. A failed half-open probe reopens it immediately.
func (b *Breaker) RecordFailure() (opened bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == StateHalfOpen || (b.state == StateClosed && b.failures >= b.threshold) {
		b.state = StateOpen
		b.openUntil = b.now().Add(b.cooldown)
		return true
	}
	return false
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.state = StateClosed
}
