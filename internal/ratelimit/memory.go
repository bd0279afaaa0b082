package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps a sliding window of request timestamps per identity in
// process memory. A single mutex serializes every admission check; the
// per-identity history is only touched while it is held. State is local to
// one process, so multi-instance deployments need the Redis-backed limiter
// instead.
type MemoryLimiter struct {
	window time.Duration
	limit  int

	mu      sync.Mutex
	history map[string][]time.Time
}

func NewMemoryLimiter(window time.Duration, limit int) *MemoryLimiter {
	return &MemoryLimiter{
		window:  window,
		limit:   limit,
		history: make(map[string][]time.Time),
	}
}

// Allow purges timestamps older than the window, rejects when the remainder
// has reached the ceiling, and otherwise records the request and admits it.
func (l *MemoryLimiter) Allow(_ context.Context, identity string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	recent := l.history[identity]
	keep := 0
	for keep < len(recent) && !recent[keep].After(cutoff) {
		keep++
	}
	recent = recent[keep:]

	if len(recent) >= l.limit {
		l.history[identity] = recent
		retry := recent[0].Add(l.window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, Limit: l.limit, RetryAfter: retry}, nil
	}

	recent = append(recent, now)
	l.history[identity] = recent
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - len(recent)}, nil
}
