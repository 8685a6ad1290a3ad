package ratelimit

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter counts requests in Redis with INCR + EXPIRE. Two requests
// racing to open the same window may both observe count==1 and both re-arm
// the expiry; that is harmless because the INCR itself stays atomic, so the
// limit can never be exceeded unnoticed.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(addr, password string, db int) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 3 * time.Second,
	})
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, agentID string, limit int, window time.Duration) bool {
	key := "rate_limit:" + agentID

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		// Fail-open.
		log.Printf("WARN: rate limiter backend unavailable, allowing request for %s: %v", agentID, err)
		return true
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			log.Printf("WARN: failed to arm rate limit window for %s: %v", agentID, err)
		}
	}

	if count > int64(limit) {
		log.Printf("WARN: rate limit exceeded for %s: %d/%d", agentID, count, limit)
		return false
	}
	return true
}

// Close releases the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
