package httpapi

import (
	"sync"
	"time"
)

// signinLimiter throttles credential-guessing by keeping a sliding
// window of attempts per key (client ip and identifier).
type signinLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time
}

func newSigninLimiter(window time.Duration, max int) *signinLimiter {
	return &signinLimiter{
		window:  window,
		max:     max,
		entries: make(map[string][]time.Time),
	}
}

func (l *signinLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-l.window)
	ts := l.entries[key]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		// No live attempts; drop the key instead of keeping an empty slice.
		delete(l.entries, key)
		kept = nil
	}

	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}

	l.entries[key] = append(kept, now)
	return true
}
