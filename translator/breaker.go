package translator

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker is a three-state failure isolator guarding calls to one
// external provider. It wraps gobreaker's two-step breaker so admission
// (CanExecute) and outcome recording (RecordSuccess/RecordFailure) can be
// separated by the rate limiter and the provider round trip.
//
// Closed: CanExecute is always true. After failureThreshold consecutive
// recorded failures the breaker opens and CanExecute returns false until
// resetTimeout elapses since the last failure. It then permits exactly one
// half-open trial; a recorded success closes the breaker, a recorded failure
// reopens it and resets the failure clock.
//
// Every admitted CanExecute should be followed by exactly one
// RecordSuccess/RecordFailure. Unpaired Record calls are also accepted and
// count against the breaker directly.
type CircuitBreaker struct {
	name string
	cb   *gobreaker.TwoStepCircuitBreaker[any]

	mu      sync.Mutex
	pending []func(bool)
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// consecutive failures and attempts a single trial after resetTimeout.
func NewCircuitBreaker(name string, failureThreshold uint32, resetTimeout time.Duration) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // one half-open trial
		Timeout:     resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &CircuitBreaker{
		name: name,
		cb:   gobreaker.NewTwoStepCircuitBreaker[any](settings),
	}
}

// CanExecute reports whether a call to the guarded provider may be issued
// now. While the breaker is open it returns false; after the reset timeout it
// admits exactly one trial call.
func (b *CircuitBreaker) CanExecute() bool {
	done, err := b.cb.Allow()
	if err != nil {
		return false
	}
	b.mu.Lock()
	b.pending = append(b.pending, done)
	b.mu.Unlock()
	return true
}

// RecordSuccess records a successful provider call.
func (b *CircuitBreaker) RecordSuccess() { b.record(true) }

// RecordFailure records a failed provider call.
func (b *CircuitBreaker) RecordFailure() { b.record(false) }

func (b *CircuitBreaker) record(success bool) {
	b.mu.Lock()
	var done func(bool)
	if len(b.pending) > 0 {
		done = b.pending[0]
		b.pending = b.pending[1:]
	}
	b.mu.Unlock()

	if done == nil {
		// Unpaired record: register the outcome as its own admission so
		// consecutive failures still trip the breaker.
		var err error
		done, err = b.cb.Allow()
		if err != nil {
			return
		}
	}
	done(success)
}

// Name returns the breaker's name.
func (b *CircuitBreaker) Name() string { return b.name }

// State returns the current breaker state.
func (b *CircuitBreaker) State() gobreaker.State { return b.cb.State() }

// FailureCount returns the current consecutive failure count.
func (b *CircuitBreaker) FailureCount() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}

// Health returns the health status of the breaker.
func (b *CircuitBreaker) Health() HealthStatus {
	state := b.cb.State()
	counts := b.cb.Counts()

	var healthy bool
	var status string
	switch state {
	case gobreaker.StateClosed:
		healthy = true
		status = "closed"
	case gobreaker.StateHalfOpen:
		healthy = true // degraded but operational
		status = "half-open"
	case gobreaker.StateOpen:
		healthy = false
		status = "open"
	default:
		status = "unknown"
	}

	return HealthStatus{
		Healthy: healthy,
		Status:  status,
		Details: map[string]interface{}{
			"name":                 b.name,
			"state":                state.String(),
			"requests":             counts.Requests,
			"total_failures":       counts.TotalFailures,
			"consecutive_failures": counts.ConsecutiveFailures,
		},
	}
}
