package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process fixed-window limiter used in standalone
// mode. Counters live per agent and reset once their window has elapsed.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, agentID string, limit int, windowDur time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[agentID]
	if !ok || !now.Before(w.resetAt) {
		l.windows[agentID] = &window{count: 1, resetAt: now.Add(windowDur)}
		return limit >= 1
	}

	w.count++
	return w.count <= limit
}
