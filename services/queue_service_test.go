package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irnd04/zticket/models"
)

func setupTestQueueService(now time.Time) (*QueueService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	service := NewQueueService(db, 30*time.Second)
	service.now = func() time.Time { return now }
	return service, mock
}

func TestQueueService_Enqueue_ReturnsFifoRank(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	ctx := context.Background()
	score := float64(now.UnixMilli())

	mock.ExpectZAdd(waitingQueueKey, redis.Z{Score: score, Member: "tok-3"}).SetVal(1)
	mock.ExpectZAdd(heartbeatKey, redis.Z{Score: score, Member: "tok-3"}).SetVal(1)
	mock.ExpectZRank(waitingQueueKey, "tok-3").SetVal(2)

	rank, err := service.Enqueue(ctx, "tok-3")

	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Rank_LiveToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	// Heartbeat 10s ago, inside a 30s window.
	mock.ExpectZRank(waitingQueueKey, "tok-1").SetVal(0)
	mock.ExpectZScore(heartbeatKey, "tok-1").SetVal(float64(now.Add(-10 * time.Second).UnixMilli()))

	rank, err := service.Rank(context.Background(), "tok-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Rank_StaleHeartbeatReportsNotFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	// Still in the FIFO set but last seen 45s ago.
	mock.ExpectZRank(waitingQueueKey, "tok-1").SetVal(0)
	mock.ExpectZScore(heartbeatKey, "tok-1").SetVal(float64(now.Add(-45 * time.Second).UnixMilli()))

	_, err := service.Rank(context.Background(), "tok-1")

	assert.ErrorIs(t, err, models.ErrQueueTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Rank_UnknownToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	mock.ExpectZRank(waitingQueueKey, "ghost").RedisNil()

	_, err := service.Rank(context.Background(), "ghost")

	assert.ErrorIs(t, err, models.ErrQueueTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Refresh_TouchesOnlyHeartbeat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	mock.ExpectZAdd(heartbeatKey, redis.Z{Score: float64(now.UnixMilli()), Member: "tok-1"}).SetVal(0)

	err := service.Refresh(context.Background(), "tok-1")

	require.NoError(t, err)
	// No ZAdd against the FIFO set was expected, so an accidental rank
	// bump would fail ExpectationsWereMet.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Peek_DoesNotRemove(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	mock.ExpectZRange(waitingQueueKey, 0, 2).SetVal([]string{"a", "b", "c"})

	tokens, err := service.Peek(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_Peek_ZeroIsNoop(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	tokens, err := service.Peek(context.Background(), 0)

	require.NoError(t, err)
	assert.Empty(t, tokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_SweepExpired_RemovesFromBothSets(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	cutoff := strconv.FormatInt(now.Add(-30*time.Second).UnixMilli(), 10)

	mock.ExpectZRangeByScore(heartbeatKey, &redis.ZRangeBy{
		Min: "-inf", Max: cutoff, Offset: 0, Count: sweepBatchSize,
	}).SetVal([]string{"dead-1", "dead-2"})
	mock.ExpectZRem(waitingQueueKey, "dead-1", "dead-2").SetVal(2)
	mock.ExpectZRem(heartbeatKey, "dead-1", "dead-2").SetVal(2)

	removed, err := service.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"dead-1", "dead-2"}, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_SweepExpired_NothingStale(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	cutoff := strconv.FormatInt(now.Add(-30*time.Second).UnixMilli(), 10)

	mock.ExpectZRangeByScore(heartbeatKey, &redis.ZRangeBy{
		Min: "-inf", Max: cutoff, Offset: 0, Count: sweepBatchSize,
	}).SetVal([]string{})

	removed, err := service.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueueService_RemoveAll_EmptyIsNoop(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, mock := setupTestQueueService(now)
	defer mock.ClearExpect()

	err := service.RemoveAll(context.Background(), nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
