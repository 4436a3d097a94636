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

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB      DatabaseConfig
	Redis   RedisConfig
	Webhook WebhookConfig
	Worker  WorkerConfig
	Session SessionConfig
	Cache   CacheConfig
	Mail    MailConfig
	CORS    CORSConfig
	Admin   AdminConfig
}

// DatabaseConfig contains PostgreSQL connection and pool parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// WebhookConfig describes the third-party endpoint that receives order and
// quote submissions.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// Enabled reports whether a webhook target is configured.
func (w WebhookConfig) Enabled() bool {
	return w.URL != ""
}

// WorkerConfig contains schedules for background workers.
type WorkerConfig struct {
	WebhookRetryInterval time.Duration
	SessionSweepSchedule string
}

// SessionConfig controls procurement session lifetime.
type SessionConfig struct {
	TTL time.Duration
}

// CacheConfig controls how long the last good comparison is kept.
type CacheConfig struct {
	ComparisonTTL time.Duration
}

// MailConfig contains SES settings. Mail is disabled when FromEmail is empty.
type MailConfig struct {
	Region    string
	FromEmail string
}

// Enabled reports whether outgoing mail is configured.
func (m MailConfig) Enabled() bool {
	return m.FromEmail != ""
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// AdminConfig seeds the first back-office account on an empty database.
type AdminConfig struct {
	BootstrapEmail    string
	BootstrapPassword string
}

// Enabled reports whether a bootstrap admin should be ensured at startup.
func (a AdminConfig) Enabled() bool {
	return a.BootstrapEmail != "" && a.BootstrapPassword != ""
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:         getEnv("DB_HOST", ""),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", ""),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", ""),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 2),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Webhook proxy
	cfg.Webhook = WebhookConfig{
		URL:    getEnv("WEBHOOK_URL", ""),
		Secret: getEnv("WEBHOOK_SECRET", ""),
	}

	cfg.Worker.SessionSweepSchedule = getEnv("SESSION_SWEEP_SCHEDULE", "@every 15m")

	cfg.Mail = MailConfig{
		Region:    getEnv("AWS_REGION", "ap-south-1"),
		FromEmail: getEnv("SES_FROM_EMAIL", ""),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	cfg.Admin = AdminConfig{
		BootstrapEmail:    getEnv("ADMIN_BOOTSTRAP_EMAIL", ""),
		BootstrapPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
	}

	// Durations
	var err error
	if cfg.DB.ConnMaxIdleTime, err = parseDurationEnv("DB_CONN_MAX_IDLE_TIME", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_IDLE_TIME: %w", err)
	}
	if cfg.DB.ConnectTimeout, err = parseDurationEnv("DB_CONNECT_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}
	if cfg.Webhook.Timeout, err = parseDurationEnv("WEBHOOK_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_TIMEOUT: %w", err)
	}
	if cfg.Worker.WebhookRetryInterval, err = parseDurationEnv("WEBHOOK_RETRY_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_RETRY_INTERVAL: %w", err)
	}
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.Cache.ComparisonTTL, err = parseDurationEnv("COMPARISON_CACHE_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid COMPARISON_CACHE_TTL: %w", err)
	}

	if cfg.DB.MaxOpenConns < 1 {
		return nil, errors.New("DB_MAX_OPEN_CONNS must be at least 1")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
