package monitoring

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var (
	waitingDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zticket_waiting_queue_depth",
			Help: "Current number of tokens in the waiting queue",
		},
	)

	activeUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zticket_active_users",
			Help: "Current number of live active-user markers",
		},
	)

	purchases = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zticket_purchases_total",
			Help: "Purchase attempts by outcome",
		},
		[]string{"status"},
	)

	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zticket_settlements_total",
			Help: "Settlement runs by outcome",
		},
		[]string{"status"},
	)

	admitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zticket_admitted_total",
			Help: "Tokens admitted from the waiting queue",
		},
	)

	sweptWaiters = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zticket_swept_waiters_total",
			Help: "Stale tokens removed by the liveness sweep",
		},
	)

	recoveredTickets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zticket_recovered_tickets_total",
			Help: "Tickets settled by the recovery sweep",
		},
	)
)

func TrackPurchase(status string)   { purchases.WithLabelValues(status).Inc() }
func TrackSettlement(status string) { settlements.WithLabelValues(status).Inc() }
func TrackAdmitted(n int)           { admitted.Add(float64(n)) }
func TrackQueueSweep(n int)         { sweptWaiters.Add(float64(n)) }
func TrackRecovered(n int)          { recoveredTickets.Add(float64(n)) }

// Monitor periodically samples queue depth and active-user count from
// Redis into gauges.
type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	return &Monitor{redis: redisClient}
}

// Run samples until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.collect(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) collect(ctx context.Context) {
	depth, err := m.redis.ZCard(ctx, "waiting_queue").Result()
	if err != nil {
		slog.Warn("queue depth sample failed", "error", err)
	} else {
		waitingDepth.Set(float64(depth))
	}

	keys, err := m.redis.Keys(ctx, "active_user:*").Result()
	if err != nil {
		slog.Warn("active user sample failed", "error", err)
	} else {
		activeUsers.Set(float64(len(keys)))
	}
}

// StartMetricsServer exposes /metrics on its own port.
func StartMetricsServer(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
}
