package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllowAdmitsUpToLimitThenRejects(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(3, 4*time.Hour).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		d := l.Allow("10.0.0.1")
		require.True(t, d.Allowed, "request %d should be admitted", i+1)
		require.Equal(t, 3, d.Limit)
		require.Equal(t, 2-i, d.Remaining)
	}

	d := l.Allow("10.0.0.1")
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfterSeconds(), 0)
	require.LessOrEqual(t, d.RetryAfterSeconds(), int((4 * time.Hour).Seconds()))
}

func TestRejectionResetTimeIsWindowStartPlusWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	l := New(3, 4*time.Hour).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		l.Allow("client")
	}

	clock.Advance(90 * time.Minute)
	d := l.Allow("client")
	require.False(t, d.Allowed)
	require.Equal(t, start.Add(4*time.Hour), d.ResetAt)
	require.True(t, d.ResetAt.After(clock.Now()), "reset time must be in the future at rejection")
	// 2.5 hours left, rounded up.
	require.Equal(t, int((150 * time.Minute).Seconds()), d.RetryAfterSeconds())
}

func TestRetryAfterRoundsUpToWholeSeconds(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	l := New(1, time.Hour).WithClock(clock.Now)

	l.Allow("client")
	clock.Advance(time.Hour - 300*time.Millisecond)

	d := l.Allow("client")
	require.False(t, d.Allowed)
	require.Equal(t, 1, d.RetryAfterSeconds())
}

func TestWindowExpiryStartsFreshWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	l := New(3, 4*time.Hour).WithClock(clock.Now)

	for i := 0; i < 4; i++ {
		l.Allow("client")
	}

	// Just past the window boundary the client gets a new window with count 1.
	clock.Advance(4*time.Hour + time.Second)
	d := l.Allow("client")
	require.True(t, d.Allowed)
	require.Equal(t, 2, d.Remaining)
}

func TestRequestExactlyAtWindowBoundaryStaysInWindow(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	l := New(3, 4*time.Hour).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		l.Allow("client")
	}

	// now - windowStart == window is still inside the window.
	clock.Advance(4 * time.Hour)
	d := l.Allow("client")
	require.False(t, d.Allowed)
}

func TestKeysAreIndependent(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	l := New(1, time.Hour).WithClock(clock.Now)

	require.True(t, l.Allow("a").Allowed)
	require.False(t, l.Allow("a").Allowed)
	require.True(t, l.Allow("b").Allowed)
}

func TestConcurrentRequestsNeverExceedLimit(t *testing.T) {
	l := New(3, 4*time.Hour)

	const workers = 32
	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared").Allowed {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for range allowed {
		count++
	}
	require.Equal(t, 3, count)
}
