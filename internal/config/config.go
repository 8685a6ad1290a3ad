// Package config provides configuration for the orchestrator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Modes the orchestrator can run in. Standalone uses local files and the
// in-memory limiter; cloud uses the remote trust directory and Redis.
const (
	ModeStandalone = "standalone"
	ModeCloud      = "cloud"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int
	Mode     string
	APIKey   string

	// Trust directory
	DirectoryURL     string
	RegistryPath     string
	DirectoryTimeout time.Duration
	CacheTTL         time.Duration

	// Rate limiting
	RateLimit       int
	RateLimitWindow time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Database
	DatabaseURL string

	// Approvals
	ApprovalTimeout time.Duration
	PolicyPath      string

	// Provider calls
	ProviderTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8080),
		Mode:     getEnv("MODE", ModeStandalone),
		APIKey:   getEnv("API_KEY", ""),

		DirectoryURL:     getEnv("DIRECTORY_URL", ""),
		RegistryPath:     getEnv("REGISTRY_PATH", "config/registry.json"),
		DirectoryTimeout: time.Duration(getEnvInt("DIRECTORY_TIMEOUT_MS", 10000)) * time.Millisecond,
		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,

		RateLimit:       getEnvInt("RATE_LIMIT", 10),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),

		DatabaseURL: getEnv("DATABASE_URL", "file:orchestrator.db?cache=shared&mode=rwc"),

		ApprovalTimeout: time.Duration(getEnvInt("APPROVAL_TIMEOUT_SECONDS", 3600)) * time.Second,
		PolicyPath:      getEnv("POLICY_PATH", ""),

		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_MS", 10000)) * time.Millisecond,

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
