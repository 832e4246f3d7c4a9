package persistence

import (
	"context"
	"time"
)

// AssignmentGuard is a Redis-backed fast path that skips duplicate
// deliveries of the same order-created event. The conditional status
// update in the order repository remains the authoritative guard; the
// key is released on failure so a retry can get through.
type AssignmentGuard struct {
	redis *Redis
	ttl   time.Duration
}

// NewAssignmentGuard builds the guard. A nil or unreachable Redis makes
// the guard permissive rather than blocking assignment.
func NewAssignmentGuard(redis *Redis, ttl time.Duration) *AssignmentGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AssignmentGuard{redis: redis, ttl: ttl}
}

// Acquire claims the key for one processing attempt. False means another
// delivery of the same event already holds it.
func (g *AssignmentGuard) Acquire(ctx context.Context, key string) (bool, error) {
	if g == nil || g.redis == nil || g.redis.Client == nil {
		return true, nil
	}
	ok, err := g.redis.Client.SetNX(ctx, "assign:"+key, "1", g.ttl).Result()
	if err != nil {
		// fall back to the database guard
		return true, nil
	}
	return ok, nil
}

// Release frees the key after a failed attempt.
func (g *AssignmentGuard) Release(ctx context.Context, key string) {
	if g == nil || g.redis == nil || g.redis.Client == nil {
		return
	}
	_ = g.redis.Client.Del(ctx, "assign:"+key).Err()
}
