package utils

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseIfOwnerScript deletes the lock key only when it still carries
// this holder's fencing value, so a slow holder cannot release a lock
// that has already expired and been re-acquired by someone else.
const releaseIfOwnerScript = `if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
else
    return 0
end`

// LeaseLock is a distributed mutual-exclusion lock with a bounded hold
// time. A crashed holder blocks nobody: the key expires and the next
// instance proceeds.
type LeaseLock struct {
	redis *redis.Client
}

func NewLeaseLock(redisClient *redis.Client) *LeaseLock {
	return &LeaseLock{redis: redisClient}
}

// Acquire attempts to take the named lock for at most maxHold. On success
// it returns true and a release func; the release is conditional on still
// owning the lock. On contention it returns false with a no-op release.
func (l *LeaseLock) Acquire(ctx context.Context, name string, maxHold time.Duration) (bool, func(), error) {
	fence := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, name, fence, maxHold).Result()
	if err != nil {
		return false, func() {}, err
	}
	if !ok {
		return false, func() {}, nil
	}

	release := func() {
		if err := l.redis.Eval(ctx, releaseIfOwnerScript, []string{name}, fence).Err(); err != nil && err != redis.Nil {
			slog.Warn("lease lock release failed, letting it expire", "lock", name, "error", err)
		}
	}
	return true, release, nil
}
