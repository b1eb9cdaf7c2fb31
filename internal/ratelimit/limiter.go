package ratelimit

import (
	"sync"
	"time"
)

// Limiter enforces fixed-window attempt budgets keyed by (action, client).
// Every call counts against the window, including ones whose request later
// fails validation, so callers must consult Allow before any other check.
//
// State is process-local. Two server instances do not share counters; the
// original system kept these in per-browser session storage, which was even
// narrower. Scoping here is per client IP.
type Limiter struct {
	mu       sync.Mutex
	counters map[string]*window
	now      func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func New() *Limiter {
	return &Limiter{
		counters: map[string]*window{},
		now:      time.Now,
	}
}

// Allow records one attempt for (action, clientKey) and reports whether the
// attempt is within budget. The first attempt opens a window that closes
// windowLen later; once the window elapses the counter starts over.
func (l *Limiter) Allow(action string, clientKey string, maxAttempts int, windowLen time.Duration) bool {
	key := action + "\x00" + clientKey
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.counters[key]
	if !exists || now.After(w.resetAt) {
		l.counters[key] = &window{count: 1, resetAt: now.Add(windowLen)}
		l.gcLocked(now)
		return true
	}

	w.count++
	return w.count <= maxAttempts
}

// Reset clears the counter for (action, clientKey). Called after a
// successful login so a legitimate user starts the next window clean.
func (l *Limiter) Reset(action string, clientKey string) {
	l.mu.Lock()
	delete(l.counters, action+"\x00"+clientKey)
	l.mu.Unlock()
}

func (l *Limiter) gcLocked(now time.Time) {
	if len(l.counters) < 10000 {
		return
	}

	for key, w := range l.counters {
		if now.After(w.resetAt) {
			delete(l.counters, key)
		}
	}
}
