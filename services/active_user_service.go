package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeUserKeyPrefix = "active_user:"

// ActiveUserService manages the TTL-bounded admission markers. A live
// marker is the only thing that lets a token attempt a purchase; expiry
// is the only cancellation signal.
type ActiveUserService struct {
	Redis *redis.Client
}

func NewActiveUserService(redisClient *redis.Client) *ActiveUserService {
	return &ActiveUserService{Redis: redisClient}
}

func (s *ActiveUserService) Activate(ctx context.Context, token string, ttl time.Duration) error {
	return s.Redis.Set(ctx, activeUserKeyPrefix+token, "1", ttl).Err()
}

// ActivateBatch upserts markers for all tokens in one pipeline. Upsert
// semantics make re-running a partially applied batch safe: an existing
// marker just gets its TTL refreshed.
func (s *ActiveUserService) ActivateBatch(ctx context.Context, tokens []string, ttl time.Duration) error {
	if len(tokens) == 0 {
		return nil
	}
	pipe := s.Redis.Pipeline()
	for _, token := range tokens {
		pipe.Set(ctx, activeUserKeyPrefix+token, "1", ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *ActiveUserService) Deactivate(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, activeUserKeyPrefix+token).Err()
}

func (s *ActiveUserService) IsActive(ctx context.Context, token string) (bool, error) {
	n, err := s.Redis.Exists(ctx, activeUserKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountActive returns a momentarily-consistent count of live markers. It
// only bounds the next admission batch; the hold/pay protocol is the
// actual safety net, so slight staleness is fine.
func (s *ActiveUserService) CountActive(ctx context.Context) (int, error) {
	keys, err := s.Redis.Keys(ctx, activeUserKeyPrefix+"*").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
