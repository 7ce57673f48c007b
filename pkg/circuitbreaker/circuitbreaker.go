// Package circuitbreaker guards calls to a flaky downstream. After enough
// consecutive failures the breaker opens and rejects calls outright until a
// cooldown passes, then lets one probe through before closing again.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

type Config struct {
	Name             string
	FailureThreshold int
	Cooldown         time.Duration
}

type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.Cooldown <= 0 {
		config.Cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		name:      config.Name,
		threshold: config.FailureThreshold,
		cooldown:  config.Cooldown,
		state:     StateClosed,
	}
}

// Execute runs fn under the breaker. While the breaker is open and the
// cooldown has not elapsed, fn is never invoked and ErrOpen is returned;
// the caller can distinguish a rejected call from a failed one.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if time.Since(cb.openedAt) < cb.cooldown {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.state = StateHalfOpen
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
			cb.state = StateOpen
			cb.openedAt = time.Now()
		}
		return err
	}

	cb.state = StateClosed
	cb.failures = 0
	return nil
}

// State reports the breaker's current state without advancing it.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
