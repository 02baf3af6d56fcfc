package llm

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of the circuit breaker
type CircuitState int

const (
	CircuitClosed   CircuitState = iota // Normal operation
	CircuitOpen                         // Failing, reject calls
	CircuitHalfOpen                     // Probing whether the service recovered
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is wrapped in the TransportError returned while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Breaker is a Client decorator that stops calling a failing service.
// Only transport failures count against the service; malformed content is
// the caller's problem, not an outage.
type Breaker struct {
	next Client

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successes       int
	lastFailureTime time.Time
	now             func() time.Time

	FailureThreshold int           // consecutive transport failures before opening
	SuccessThreshold int           // successes in half-open before closing
	Cooldown         time.Duration // how long to stay open before probing
	OnStateChange    func(from, to CircuitState)
}

// NewBreaker wraps next with default thresholds.
func NewBreaker(next Client) *Breaker {
	return NewBreakerWithConfig(next, 5, 2, 30*time.Second)
}

// NewBreakerWithConfig wraps next with custom thresholds.
func NewBreakerWithConfig(next Client, failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	return &Breaker{
		next:             next,
		state:            CircuitClosed,
		now:              time.Now,
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Cooldown:         cooldown,
	}
}

// Generate forwards to the wrapped client unless the circuit is open.
func (b *Breaker) Generate(ctx context.Context, req Request) (string, error) {
	if !b.allow() {
		return "", &TransportError{Err: ErrCircuitOpen}
	}

	text, err := b.next.Generate(ctx, req)
	if err != nil && IsTransport(err) {
		b.recordFailure()
		return "", err
	}
	b.recordSuccess()
	return text, err
}

// State returns the current state
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if b.now().Sub(b.lastFailureTime) > b.Cooldown {
			b.setState(CircuitHalfOpen)
			return true
		}
	}
	return false
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitHalfOpen:
		b.successes++
		if b.successes >= b.SuccessThreshold {
			b.setState(CircuitClosed)
			b.failures = 0
			b.successes = 0
		}
	case CircuitClosed:
		b.failures = 0
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailureTime = b.now()

	switch b.state {
	case CircuitClosed:
		if b.failures >= b.FailureThreshold {
			b.setState(CircuitOpen)
		}
	case CircuitHalfOpen:
		b.setState(CircuitOpen)
		b.successes = 0
	}
}

func (b *Breaker) setState(next CircuitState) {
	if b.OnStateChange != nil && b.state != next {
		b.OnStateChange(b.state, next)
	}
	b.state = next
}
