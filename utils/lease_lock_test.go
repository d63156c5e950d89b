package utils

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseLock_AcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	lock := NewLeaseLock(db)

	mock.Regexp().ExpectSetNX("lock:test", `.*`, 30*time.Second).SetVal(true)
	mock.Regexp().ExpectEval(`.*`, []string{"lock:test"}, `.*`).SetVal(int64(1))

	acquired, release, err := lock.Acquire(context.Background(), "lock:test", 30*time.Second)

	require.NoError(t, err)
	require.True(t, acquired)
	release()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaseLock_Contended(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()
	lock := NewLeaseLock(db)

	mock.Regexp().ExpectSetNX("lock:test", `.*`, 30*time.Second).SetVal(false)

	acquired, release, err := lock.Acquire(context.Background(), "lock:test", 30*time.Second)

	require.NoError(t, err)
	assert.False(t, acquired)
	// Release on a lock we never got must be a no-op.
	release()
	assert.NoError(t, mock.ExpectationsWereMet())
}
