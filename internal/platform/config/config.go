package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment so
// main stays lean. Policy knobs (review threshold, attempt ceiling) live
// here rather than as constants: their exact values are policy, not
// mechanism.
type Config struct {
	Addr          string
	JWTSigningKey string
	AdminToken    string

	// ReviewThreshold is the risk score at or above which a completed
	// session goes to manual verification instead of auto-approval.
	ReviewThreshold float64
	// MaxAttempts is the per-field attempt ceiling before a session
	// fails.
	MaxAttempts int

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig configures the optional Redis session store. An empty URL
// selects the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// SessionTTL bounds how long an abandoned session survives.
	SessionTTL time.Duration
}

// PostgresConfig configures the optional Postgres verification queue.
// An empty URL selects the in-memory queue.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the optional Kafka audit sink. Empty brokers
// select the in-memory audit store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Config from environment variables with development
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("ONBOARD_ADDR", ":8080"),
		JWTSigningKey:   getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		AdminToken:      os.Getenv("ONBOARD_ADMIN_TOKEN"),
		ReviewThreshold: getenvFloat("ONBOARD_REVIEW_THRESHOLD", 50),
		MaxAttempts:     getenvInt("ONBOARD_MAX_ATTEMPTS", 3),
		Redis: RedisConfig{
			URL:          os.Getenv("ONBOARD_REDIS_URL"),
			PoolSize:     getenvInt("ONBOARD_REDIS_POOL_SIZE", 10),
			MinIdleConns: getenvInt("ONBOARD_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SessionTTL:   getenvDuration("ONBOARD_SESSION_TTL", 72*time.Hour),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("ONBOARD_POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			AuditTopic: getenv("ONBOARD_AUDIT_TOPIC", "onboarding.audit"),
		},
	}
	if brokers := os.Getenv("ONBOARD_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
