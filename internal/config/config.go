package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Gateway kinds.
const (
	GatewayExpo = "expo"
	GatewayFCM  = "fcm"
)

// Delivery ledger backends.
const (
	DedupPostgres = "postgres"
	DedupRedis    = "redis"
	DedupNone     = "none"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL is required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	MigrationsURL string

	// Push gateway
	GatewayKind        string
	GatewayURL         string
	GatewayTimeout     time.Duration
	GatewayAccessToken string
	FCMCredentialsFile string
	GatewayRateLimit   int

	// Delivery hint attached to every push
	PushSound     string
	PushPriority  string
	PushChannelID string

	// Optional YAML file overriding the status → text table
	MessagesFile string

	// Event intake
	Workers         int
	QueueCapacity   int
	ListenerEnabled bool
	ListenChannel   string
	SweepInterval   time.Duration
	SweepGrace      time.Duration
	SweepBatch      int

	// Delivery ledger
	DedupBackend string
	RedisURL     string
	DedupTTL     time.Duration

	// How long an unsent claim blocks redeliveries of the same update.
	DedupClaimTimeout time.Duration
}

// Load reads an optional .env file (ENV_FILE, default ".env") and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnvIfPresent(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL:   dbURL,
		DBMaxConns:    int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:    int32(getInt("DB_MIN_CONNS", 5)),
		MigrationsURL: getEnv("MIGRATIONS_URL", "file://migrations"),

		GatewayKind:        strings.ToLower(getEnv("GATEWAY_KIND", GatewayExpo)),
		GatewayURL:         getEnv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
		GatewayTimeout:     getDuration("PUSH_GATEWAY_TIMEOUT", 10*time.Second),
		GatewayAccessToken: os.Getenv("PUSH_ACCESS_TOKEN"),
		FCMCredentialsFile: os.Getenv("FCM_CREDENTIALS_FILE"),
		GatewayRateLimit:   getInt("GATEWAY_RATE_LIMIT", 100),

		PushSound:     getEnv("PUSH_SOUND", "default"),
		PushPriority:  getEnv("PUSH_PRIORITY", "high"),
		PushChannelID: getEnv("PUSH_CHANNEL_ID", "default"),

		MessagesFile: os.Getenv("MESSAGES_FILE"),

		Workers:         getInt("WORKERS", 8),
		QueueCapacity:   getInt("QUEUE_CAPACITY", 1000),
		ListenerEnabled: getBool("LISTENER_ENABLED", true),
		ListenChannel:   getEnv("LISTEN_CHANNEL", "request_status_changed"),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 30*time.Second),
		SweepGrace:      getDuration("SWEEP_GRACE", 15*time.Second),
		SweepBatch:      getInt("SWEEP_BATCH", 500),

		DedupBackend: strings.ToLower(getEnv("DEDUP_BACKEND", DedupPostgres)),
		RedisURL:     os.Getenv("REDIS_URL"),
		DedupTTL:     getDuration("DEDUP_TTL", 24*time.Hour),

		DedupClaimTimeout: getDuration("DEDUP_CLAIM_TIMEOUT", 2*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.GatewayKind {
	case GatewayExpo:
		if c.GatewayURL == "" {
			return fmt.Errorf("PUSH_GATEWAY_URL is required for gateway %q", c.GatewayKind)
		}
	case GatewayFCM:
		if c.FCMCredentialsFile == "" {
			return fmt.Errorf("FCM_CREDENTIALS_FILE is required for gateway %q", c.GatewayKind)
		}
	default:
		return fmt.Errorf("unknown GATEWAY_KIND %q", c.GatewayKind)
	}

	switch c.DedupBackend {
	case DedupPostgres, DedupNone:
	case DedupRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for dedup backend %q", c.DedupBackend)
		}
	default:
		return fmt.Errorf("unknown DEDUP_BACKEND %q", c.DedupBackend)
	}

	// The direct trigger endpoint waits for the gateway before responding.
	if c.WriteTimeout <= c.GatewayTimeout {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must exceed PUSH_GATEWAY_TIMEOUT (%s)", c.WriteTimeout, c.GatewayTimeout)
	}
	// A claim must outlive the send it guards.
	if c.DedupClaimTimeout <= c.GatewayTimeout {
		return fmt.Errorf("DEDUP_CLAIM_TIMEOUT (%s) must exceed PUSH_GATEWAY_TIMEOUT (%s)", c.DedupClaimTimeout, c.GatewayTimeout)
	}

	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1")
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("QUEUE_CAPACITY must be at least 1")
	}
	if c.GatewayRateLimit < 1 {
		return fmt.Errorf("GATEWAY_RATE_LIMIT must be at least 1")
	}
	return nil
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}
	return err
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
