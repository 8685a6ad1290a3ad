package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryLimiterEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(ctx, "a1", 10, time.Minute), "request %d should pass", i+1)
	}
	assert.False(t, l.Allow(ctx, "a1", 10, time.Minute))
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	base := time.Now()
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "a1", 3, time.Minute)
	}
	assert.False(t, l.Allow(ctx, "a1", 3, time.Minute))

	l.now = func() time.Time { return base.Add(time.Minute) }
	assert.True(t, l.Allow(ctx, "a1", 3, time.Minute))
}

func TestMemoryLimiterIsolatesAgents(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	assert.True(t, l.Allow(ctx, "a1", 1, time.Minute))
	assert.False(t, l.Allow(ctx, "a1", 1, time.Minute))
	assert.True(t, l.Allow(ctx, "a2", 1, time.Minute))
}

func TestMemoryLimiterZeroLimit(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter()

	assert.False(t, l.Allow(ctx, "a1", 0, time.Minute))
}
