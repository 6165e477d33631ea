// Package quota implements fixed-window per-client rate limiting.
//
// Time is divided into windows anchored at each client's first request. The
// counter increments until the window expires; an expired window is replaced
// with a fresh one rather than removed, so the table only grows with distinct
// client keys. State lives in process memory only: a restart resets every
// client's quota, and multiple gateway instances behind a load balancer track
// quotas independently. Both are documented behavior, not defects.
package quota

import (
	"sync"
	"time"
)

// Decision captures the result of an admit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Window    time.Duration
	// RetryAfter and ResetAt are only meaningful when Allowed is false.
	RetryAfter time.Duration
	ResetAt    time.Time
}

// RetryAfterSeconds returns the rejection backoff rounded up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int((d.RetryAfter + time.Second - 1) / time.Second)
}

type usageWindow struct {
	start time.Time
	count int
}

// Limiter enforces a fixed-window request quota per client key.
type Limiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]*usageWindow
}

// New creates a limiter allowing limit requests per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		clock:   func() time.Time { return time.Now().UTC() },
		windows: make(map[string]*usageWindow),
	}
}

// WithClock overrides the time source. Intended for tests.
func (l *Limiter) WithClock(clock func() time.Time) *Limiter {
	l.clock = clock
	return l
}

// Limit returns the configured per-window request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Allow performs the admit check for key, counting the request when admitted.
// The read-decide-mutate sequence runs under the table lock; callers must not
// hold the decision open across network calls.
func (l *Limiter) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > l.window {
		l.windows[key] = &usageWindow{start: now, count: 1}
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - 1,
			Window:    l.window,
		}
	}

	if w.count < l.limit {
		w.count++
		return Decision{
			Allowed:   true,
			Limit:     l.limit,
			Remaining: l.limit - w.count,
			Window:    l.window,
		}
	}

	resetAt := w.start.Add(l.window)
	return Decision{
		Allowed:    false,
		Limit:      l.limit,
		Remaining:  0,
		Window:     l.window,
		RetryAfter: resetAt.Sub(now),
		ResetAt:    resetAt,
	}
}
