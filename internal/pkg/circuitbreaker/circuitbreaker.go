// Package circuitbreaker fails calls to an unhealthy dependency fast.
//
// After MaxFailures consecutive failures the breaker opens and rejects calls
// with ErrCircuitOpen. Once Timeout has elapsed a single probe call is let
// through: success closes the breaker, failure reopens it. Cancellation of
// the caller's context is not counted as a dependency failure.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/llmtrace/llmtrace/internal/pkg/metrics"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker is open
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrProbeInFlight is returned when the breaker is half-open and its probe has not returned
	ErrProbeInFlight = errors.New("circuit breaker is half-open, probe in flight")
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed allows requests to pass through
	StateClosed State = iota
	// StateOpen blocks all requests
	StateOpen
	// StateHalfOpen allows one request to test the dependency
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds circuit breaker configuration
type Config struct {
	// Name labels the breaker in metrics and logs
	Name string
	// MaxFailures is the number of consecutive failures before opening
	MaxFailures int
	// Timeout is how long the breaker stays open before probing
	Timeout time.Duration
	// OnStateChange is called synchronously, outside the lock, after a transition
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// CircuitBreaker implements the circuit breaker pattern
type CircuitBreaker struct {
	config Config
	now    func() time.Time

	mu            sync.Mutex
	state         State
	failures      int
	openedAt      time.Time
	probeInFlight bool
}

// New creates a new circuit breaker with the given configuration
func New(config Config) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	metrics.RecordCircuitState(config.Name, int(StateClosed))
	return &CircuitBreaker{
		config: config,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Execute runs fn unless the breaker is open
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		cb.release()
		return err
	}
	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.Timeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		from := cb.transitionLocked(StateHalfOpen)
		cb.probeInFlight = true
		cb.mu.Unlock()
		cb.notify(from, StateHalfOpen)
		return nil

	case StateHalfOpen:
		defer cb.mu.Unlock()
		if cb.probeInFlight {
			return ErrProbeInFlight
		}
		cb.probeInFlight = true
		return nil
	}

	cb.mu.Unlock()
	return nil
}

// release gives up a half-open probe slot without judging the dependency
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.probeInFlight = false
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	cb.probeInFlight = false

	to := cb.state
	if err != nil {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.MaxFailures {
			to = StateOpen
			cb.openedAt = cb.now()
		}
	} else {
		cb.failures = 0
		to = StateClosed
	}

	from := cb.transitionLocked(to)
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

// transitionLocked sets the new state and returns the previous one
func (cb *CircuitBreaker) transitionLocked(to State) State {
	from := cb.state
	if from == to {
		return from
	}
	cb.state = to
	if to == StateClosed {
		cb.failures = 0
	}
	metrics.RecordCircuitState(cb.config.Name, int(to))
	return from
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}
