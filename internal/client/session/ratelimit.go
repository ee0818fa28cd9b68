package session

import (
	"sync"
	"time"

	"github.com/example/movequote/internal/common"
)

// attemptLimiter is the client-side credential-guessing guard: a failed
// attempt increments a counter and stamps the time; reaching the threshold
// sets a lock that auto-clears after the window. It is a UX guard only;
// authoritative throttling has to live server-side.
type attemptLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	now    func() time.Time

	failed      int
	lastAttempt time.Time
	lockedUntil time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{max: max, window: window, now: time.Now}
}

// Allow returns common.ErrRateLimited while the lock is active. An expired
// lock, or a failure streak older than the window, resets the counter.
func (l *attemptLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if !l.lockedUntil.IsZero() {
		if now.Before(l.lockedUntil) {
			return common.ErrRateLimited
		}
		l.resetLocked()
	}

	if l.failed > 0 && now.Sub(l.lastAttempt) > l.window {
		l.resetLocked()
	}
	return nil
}

// Fail records one rejected attempt and locks when the threshold is reached.
func (l *attemptLimiter) Fail() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.failed++
	l.lastAttempt = now
	if l.failed >= l.max {
		l.lockedUntil = now.Add(l.window)
	}
}

// Reset clears the counter, e.g. after a successful attempt.
func (l *attemptLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked()
}

func (l *attemptLimiter) resetLocked() {
	l.failed = 0
	l.lastAttempt = time.Time{}
	l.lockedUntil = time.Time{}
}
