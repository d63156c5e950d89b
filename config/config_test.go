package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 500, cfg.TotalSeats)
	assert.Equal(t, 100, cfg.MaxActiveUsers)
	assert.Equal(t, 50, cfg.AdmissionBatch)
	assert.Equal(t, 10*time.Second, cfg.AdmissionInterval)
	assert.Equal(t, 30*time.Second, cfg.QueueLivenessWindow)
	assert.Equal(t, 5*time.Minute, cfg.SeatHoldTTL)
	assert.Equal(t, 5*time.Minute, cfg.ActiveTTL)
	assert.Equal(t, time.Minute, cfg.RecoveryInterval)
	assert.Equal(t, int64(1), cfg.NodeID)
	assert.True(t, cfg.EnableMetrics)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TOTAL_SEATS", "20")
	t.Setenv("MAX_ACTIVE_USERS", "4")
	t.Setenv("QUEUE_LIVENESS_WINDOW", "45s")
	t.Setenv("ENABLE_METRICS", "false")

	cfg := LoadConfig()

	assert.Equal(t, 20, cfg.TotalSeats)
	assert.Equal(t, 4, cfg.MaxActiveUsers)
	assert.Equal(t, 45*time.Second, cfg.QueueLivenessWindow)
	assert.False(t, cfg.EnableMetrics)
}

func TestLoadConfig_BadValuesFallBack(t *testing.T) {
	t.Setenv("TOTAL_SEATS", "not-a-number")
	t.Setenv("ADMISSION_INTERVAL", "soon")

	cfg := LoadConfig()

	assert.Equal(t, 500, cfg.TotalSeats)
	assert.Equal(t, 10*time.Second, cfg.AdmissionInterval)
}
