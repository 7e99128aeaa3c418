package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	Postgres     PostgresPool
	KafkaBrokers []string
	KafkaEnabled bool
	Redis        RedisConfig

	OutboxTopic       string
	NotificationTopic string

	BulkModerationConcurrency int
	DashboardWindowDays       int
	// UserCacheTTL bounds how long a role change takes to reach the gate.
	UserCacheTTL              time.Duration
	WorkerPollInterval        time.Duration
	EnsureSchema              bool

	// DevUsers seeds the in-memory directory when no database is configured.
	// Format: "id:username:role,id:username:role".
	DevUsers []DevUser
}

type DevUser struct {
	UserID   string
	Username string
	Role     string
}

// PostgresPool tunes the database/sql pool under gorm.
type PostgresPool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration
}

// RedisConfig is empty-URL safe: callers skip Redis entirely when URL is "".
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "kdom-governance"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		Postgres: PostgresPool{
			MaxOpenConns:    envInt("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
			SlowQuery:       envDuration("POSTGRES_SLOW_QUERY", 200*time.Millisecond),
		},
		KafkaBrokers: brokers,
		KafkaEnabled: envBool("KAFKA_ENABLED", false),
		Redis: RedisConfig{
			URL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},

		OutboxTopic:       envString("OUTBOX_TOPIC", "kdom.governance.events"),
		NotificationTopic: envString("NOTIFICATION_TOPIC", "kdom.notifications"),

		BulkModerationConcurrency: envInt("BULK_MODERATION_CONCURRENCY", 8),
		DashboardWindowDays:       envInt("DASHBOARD_WINDOW_DAYS", 30),
		UserCacheTTL:              envDuration("USER_CACHE_TTL", 5*time.Minute),
		WorkerPollInterval:        envDuration("WORKER_POLL_INTERVAL", 2*time.Second),
		EnsureSchema:              envBool("ENSURE_SCHEMA", true),

		DevUsers: parseDevUsers(os.Getenv("DEV_USERS")),
	}, nil
}

func parseDevUsers(raw string) []DevUser {
	var users []DevUser
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 || parts[0] == "" {
			continue
		}
		users = append(users, DevUser{
			UserID:   strings.TrimSpace(parts[0]),
			Username: strings.TrimSpace(parts[1]),
			Role:     strings.TrimSpace(parts[2]),
		})
	}
	return users
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
