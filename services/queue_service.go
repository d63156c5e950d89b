package services

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/irnd04/zticket/models"
)

const (
	waitingQueueKey = "waiting_queue"
	heartbeatKey    = "waiting_queue_heartbeat"

	// Ghost removal runs in bounded batches so one sweep cannot pin
	// Redis with an unbounded range scan.
	sweepBatchSize = 1000
)

// QueueService is the FIFO waiting queue plus its liveness signal: two
// sorted sets keyed by token, one scored by enqueue time (rank), one by
// last-seen time (heartbeat). A token whose heartbeat falls outside the
// liveness window is logically gone even before a sweep physically
// removes it.
type QueueService struct {
	Redis          *redis.Client
	livenessWindow time.Duration

	now func() time.Time
}

func NewQueueService(redisClient *redis.Client, livenessWindow time.Duration) *QueueService {
	return &QueueService{
		Redis:          redisClient,
		livenessWindow: livenessWindow,
		now:            time.Now,
	}
}

// Enqueue inserts the token into both sets with the current time and
// returns its 1-based FIFO rank.
func (s *QueueService) Enqueue(ctx context.Context, token string) (int64, error) {
	score := float64(s.now().UnixMilli())

	if err := s.Redis.ZAdd(ctx, waitingQueueKey, redis.Z{Score: score, Member: token}).Err(); err != nil {
		return 0, err
	}
	if err := s.Redis.ZAdd(ctx, heartbeatKey, redis.Z{Score: score, Member: token}).Err(); err != nil {
		return 0, err
	}

	rank, err := s.Redis.ZRank(ctx, waitingQueueKey, token).Result()
	if err != nil {
		return 0, err
	}
	return rank + 1, nil
}

// Rank returns the token's 1-based rank. A token missing from the FIFO
// set, or present but with a stale heartbeat, reports not-found.
func (s *QueueService) Rank(ctx context.Context, token string) (int64, error) {
	rank, err := s.Redis.ZRank(ctx, waitingQueueKey, token).Result()
	if err == redis.Nil {
		return 0, models.ErrQueueTokenNotFound
	}
	if err != nil {
		return 0, err
	}

	score, err := s.Redis.ZScore(ctx, heartbeatKey, token).Result()
	if err == redis.Nil {
		return 0, models.ErrQueueTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	if int64(score) < s.cutoff() {
		return 0, models.ErrQueueTokenNotFound
	}

	return rank + 1, nil
}

// Refresh is the heartbeat: it bumps only the liveness score, never the
// FIFO rank.
func (s *QueueService) Refresh(ctx context.Context, token string) error {
	score := float64(s.now().UnixMilli())
	return s.Redis.ZAdd(ctx, heartbeatKey, redis.Z{Score: score, Member: token}).Err()
}

// Peek returns up to n tokens in FIFO order without removing them, so a
// crash between peek and activation cannot lose an entrant.
func (s *QueueService) Peek(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.Redis.ZRange(ctx, waitingQueueKey, 0, int64(n)-1).Result()
}

// SweepExpired removes every token whose heartbeat is older than the
// liveness window from both sets and returns the removed tokens.
func (s *QueueService) SweepExpired(ctx context.Context) ([]string, error) {
	cutoff := strconv.FormatInt(s.cutoff(), 10)

	var removed []string
	for {
		batch, err := s.Redis.ZRangeByScore(ctx, heartbeatKey, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    cutoff,
			Offset: 0,
			Count:  sweepBatchSize,
		}).Result()
		if err != nil {
			return removed, err
		}
		if len(batch) == 0 {
			return removed, nil
		}

		if err := s.RemoveAll(ctx, batch); err != nil {
			return removed, err
		}
		removed = append(removed, batch...)

		if len(batch) < sweepBatchSize {
			return removed, nil
		}
	}
}

// RemoveAll removes the tokens from both sets. Used after admission and
// by the liveness sweep.
func (s *QueueService) RemoveAll(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	members := make([]interface{}, len(tokens))
	for i, t := range tokens {
		members[i] = t
	}
	if err := s.Redis.ZRem(ctx, waitingQueueKey, members...).Err(); err != nil {
		return err
	}
	return s.Redis.ZRem(ctx, heartbeatKey, members...).Err()
}

// Depth reports the current waiting queue length.
func (s *QueueService) Depth(ctx context.Context) (int64, error) {
	return s.Redis.ZCard(ctx, waitingQueueKey).Result()
}

func (s *QueueService) cutoff() int64 {
	return s.now().Add(-s.livenessWindow).UnixMilli()
}
