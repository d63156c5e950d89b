package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Relational store configuration
	DBDriver string
	DBDSN    string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Seat universe
	TotalSeats int

	// Admission configuration
	MaxActiveUsers    int
	AdmissionBatch    int
	AdmissionInterval time.Duration
	ActiveTTL         time.Duration

	// Waiting queue liveness
	QueueLivenessWindow time.Duration

	// Seat hold
	SeatHoldTTL time.Duration

	// Settlement / recovery
	RecoveryInterval time.Duration
	LockMaxHold      time.Duration

	// Snowflake node identity (unique per instance)
	NodeID int64

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Relational store
		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBDSN:    getEnv("DB_DSN", "zticket:zticket@tcp(localhost:3306)/zticket?parseTime=true"),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Seats
		TotalSeats: getEnvAsInt("TOTAL_SEATS", 500),

		// Admission
		MaxActiveUsers:    getEnvAsInt("MAX_ACTIVE_USERS", 100),
		AdmissionBatch:    getEnvAsInt("ADMISSION_BATCH_SIZE", 50),
		AdmissionInterval: getEnvAsDuration("ADMISSION_INTERVAL", "10s"),
		ActiveTTL:         getEnvAsDuration("ACTIVE_TTL", "5m"),

		// Liveness
		QueueLivenessWindow: getEnvAsDuration("QUEUE_LIVENESS_WINDOW", "30s"),

		// Seat hold
		SeatHoldTTL: getEnvAsDuration("SEAT_HOLD_TTL", "5m"),

		// Settlement
		RecoveryInterval: getEnvAsDuration("RECOVERY_INTERVAL", "1m"),
		LockMaxHold:      getEnvAsDuration("LOCK_MAX_HOLD", "30s"),

		// Identity
		NodeID: int64(getEnvAsInt("NODE_ID", 1)),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
