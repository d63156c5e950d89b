package monitoring

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMonitor_Collect(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectZCard("waiting_queue").SetVal(42)
	mock.ExpectKeys("active_user:*").SetVal([]string{"active_user:a", "active_user:b", "active_user:c"})

	NewMonitor(db).collect(context.Background())

	assert.Equal(t, float64(42), testutil.ToFloat64(waitingDepth))
	assert.Equal(t, float64(3), testutil.ToFloat64(activeUsers))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackCounters(t *testing.T) {
	before := testutil.ToFloat64(admitted)
	TrackAdmitted(5)
	assert.Equal(t, before+5, testutil.ToFloat64(admitted))

	beforeSwept := testutil.ToFloat64(sweptWaiters)
	TrackQueueSweep(2)
	assert.Equal(t, beforeSwept+2, testutil.ToFloat64(sweptWaiters))
}
