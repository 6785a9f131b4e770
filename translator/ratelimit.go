package translator

import (
	"sync"
	"time"
)

const (
	rateLimitWindow = 60 * time.Second
	minBackoff      = 1 * time.Second
	maxBackoff      = 60 * time.Second
)

// RateLimiter performs sliding-window admission control with adaptive
// backoff. Admitted-request timestamps covering the trailing 60-second window
// are kept and evicted lazily on each call; admission succeeds only while the
// window holds fewer than min(requestsPerMinute, burstLimit) entries.
//
// The backoff scalar is a delay hint for callers, not enforced internally:
// it doubles (cap 60s) on a reported failure and halves (floor 1s) on a
// success immediately following a failure.
type RateLimiter struct {
	mu                sync.Mutex
	requestsPerMinute int
	burstLimit        int
	window            []time.Time
	backoff           time.Duration
	lastSuccess       bool
}

// RateLimiterMetrics is a point-in-time snapshot of limiter state.
type RateLimiterMetrics struct {
	InWindow  int           // Admissions currently inside the 60s window
	Backoff   time.Duration // Current adaptive backoff hint
	Remaining int           // Admissions left before the window is full
}

// NewRateLimiter creates a rate limiter admitting at most
// min(requestsPerMinute, burstLimit) requests per sliding 60-second window.
func NewRateLimiter(requestsPerMinute, burstLimit int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		burstLimit:        burstLimit,
		backoff:           minBackoff,
		lastSuccess:       true,
	}
}

// CanProceed reports whether a request may be admitted now, recording the
// admission timestamp when it may.
func (r *RateLimiter) CanProceed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.evict(now)

	limit := r.requestsPerMinute
	if r.burstLimit < limit {
		limit = r.burstLimit
	}
	if len(r.window) < limit {
		r.window = append(r.window, now)
		return true
	}
	return false
}

// WaitDuration returns the time until the oldest admitted timestamp exits the
// window, i.e. how long a denied caller should wait before retrying.
func (r *RateLimiter) WaitDuration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.evict(now)
	if len(r.window) == 0 {
		return 0
	}
	wait := rateLimitWindow - now.Sub(r.window[0])
	if wait < 0 {
		return 0
	}
	return wait
}

// ReportOutcome feeds a call outcome into the adaptive backoff.
func (r *RateLimiter) ReportOutcome(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if success && !r.lastSuccess {
		r.backoff /= 2
		if r.backoff < minBackoff {
			r.backoff = minBackoff
		}
	} else if !success {
		r.backoff *= 2
		if r.backoff > maxBackoff {
			r.backoff = maxBackoff
		}
	}
	r.lastSuccess = success
}

// Backoff returns the current adaptive backoff hint.
func (r *RateLimiter) Backoff() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backoff
}

// Metrics returns a snapshot of limiter state.
func (r *RateLimiter) Metrics() RateLimiterMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evict(time.Now())
	return RateLimiterMetrics{
		InWindow:  len(r.window),
		Backoff:   r.backoff,
		Remaining: r.requestsPerMinute - len(r.window),
	}
}

// evict drops timestamps older than the window. Caller must hold mu.
func (r *RateLimiter) evict(now time.Time) {
	i := 0
	for i < len(r.window) && now.Sub(r.window[i]) > rateLimitWindow {
		i++
	}
	if i > 0 {
		r.window = append(r.window[:0], r.window[i:]...)
	}
}
