// Package config provides environment-driven configuration for courtsec.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL    Secret
	Port           string
	MetricsPort    string
	ListenHost     string
	CORSOrigins    []string
	LogLevel       string
	DBMaxConns     int32
	MaxBodyBytes   int64
	SystemIdentity string

	// JWTSecret enables bearer JWT authentication when set. API keys keep working.
	JWTSecret Secret
	JWTIssuer string

	// RedisURL enables the shared API key cache. Empty means in-process caching.
	RedisURL Secret
}

// Load reads configuration from environment variables with sensible defaults.
// Values from a .env file in the working directory are loaded first; variables
// already set in the environment take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:    Secret(envOrDefault("DATABASE_URL", "")),
		Port:           envOrDefault("PORT", "3030"),
		MetricsPort:    envOrDefault("METRICS_PORT", "9091"),
		ListenHost:     envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		SystemIdentity: envOrDefault("SYSTEM_IDENTITY", "system"),
		JWTSecret:      Secret(envOrDefault("JWT_SECRET", "")),
		JWTIssuer:      envOrDefault("JWT_ISSUER", "courtsec"),
		RedisURL:       Secret(envOrDefault("REDIS_URL", "")),
	}

	maxConns, err := strconv.ParseInt(envOrDefault("DB_MAX_CONNS", "20"), 10, 32)
	if err != nil || maxConns < 1 || maxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 200")
	}
	cfg.DBMaxConns = int32(maxConns)

	maxBody, err := strconv.ParseInt(envOrDefault("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || maxBody < 1024 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be an integer of at least 1024")
	}
	cfg.MaxBodyBytes = maxBody

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadDatabaseURL reads only DATABASE_URL, for commands that need nothing else.
func LoadDatabaseURL() (Secret, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{DatabaseURL: Secret(envOrDefault("DATABASE_URL", ""))}
	if err := cfg.validateDatabase(); err != nil {
		return "", err
	}

	return cfg.DatabaseURL, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
