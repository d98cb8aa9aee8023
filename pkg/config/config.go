// ABOUTME: Configuration management for the capture API with environment variable support
// ABOUTME: Defines server, storage, remote service, polling and logging settings

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Storage selects and configures the durable storage backend
	Storage StorageConfig

	// Remote points at the extraction and chat service
	Remote RemoteConfig

	// Polling controls status checks of pending jobs
	Polling PollingConfig

	// Log controls logger output
	Log LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string

	// RateLimit is the number of requests allowed per client per RateWindow
	RateLimit int

	// RateWindow is the rate limiting window
	RateWindow time.Duration

	// AllowedOrigins lists CORS origins; "*" allows any
	AllowedOrigins []string
}

// StorageConfig holds storage backend configuration
type StorageConfig struct {
	// Type specifies the backend (memory/sqlite/redis)
	Type string

	// SQLitePath is the database file used by the sqlite backend
	SQLitePath string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int

	// KeyPrefix namespaces every stored key
	KeyPrefix string
}

// RemoteConfig holds remote extraction service configuration
type RemoteConfig struct {
	// BaseURL is the root of the extraction API (submit, status and chat live under it)
	BaseURL string

	// Timeout bounds each remote request
	Timeout time.Duration
}

// PollingConfig holds scheduler configuration
type PollingConfig struct {
	// Interval between status checks of one job
	Interval time.Duration

	// MaxChecksPerSecond bounds status checks across all jobs; 0 disables the limit
	MaxChecksPerSecond float64
}

// LogConfig holds logger configuration
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string

	// Format is json or text
	Format string
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8000",
			RateLimit:      100,
			RateWindow:     time.Minute,
			AllowedOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Type:       "sqlite",
			SQLitePath: "capture.db",
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Remote: RemoteConfig{
			BaseURL: "http://localhost:8081/api",
			Timeout: 30 * time.Second,
		},
		Polling: PollingConfig{
			Interval: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFromEnv loads configuration from environment variables. When
// CONFIG_FILE names a YAML or JSON file its values are applied first, and
// environment variables override them.
func LoadFromEnv() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		fc.ApplyTo(cfg)
	}

	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.RateLimit = getEnvAsIntOrDefault("RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Server.RateWindow = getEnvAsDurationOrDefault("RATE_WINDOW", cfg.Server.RateWindow)
	cfg.Server.AllowedOrigins = getEnvAsListOrDefault("ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)

	cfg.Storage.Type = getEnvOrDefault("STORAGE_TYPE", cfg.Storage.Type)
	cfg.Storage.SQLitePath = getEnvOrDefault("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Storage.Redis.Address)
	cfg.Storage.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Storage.Redis.Password)
	cfg.Storage.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", cfg.Storage.Redis.DB)
	cfg.Storage.Redis.KeyPrefix = getEnvOrDefault("REDIS_KEY_PREFIX", cfg.Storage.Redis.KeyPrefix)

	cfg.Remote.BaseURL = getEnvOrDefault("EXTRACTION_API_URL", cfg.Remote.BaseURL)
	cfg.Remote.Timeout = getEnvAsDurationOrDefault("EXTRACTION_API_TIMEOUT", cfg.Remote.Timeout)

	cfg.Polling.Interval = getEnvAsDurationOrDefault("POLL_INTERVAL", cfg.Polling.Interval)
	cfg.Polling.MaxChecksPerSecond = getEnvAsFloatOrDefault("POLL_MAX_CHECKS_PER_SECOND", cfg.Polling.MaxChecksPerSecond)

	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvOrDefault("LOG_FORMAT", cfg.Log.Format)

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the environment variable as float64 or a default
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("10s") or plain seconds ("10")
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma separated variable
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	if c.Server.RateLimit > 0 && c.Server.RateWindow <= 0 {
		return errors.New("rate window must be positive when rate limiting is enabled")
	}

	switch c.Storage.Type {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite path cannot be empty when using sqlite storage")
		}
	case "redis":
		if c.Storage.Redis.Address == "" {
			return errors.New("redis address cannot be empty when using redis storage")
		}
	default:
		return errors.New("storage type must be 'memory', 'sqlite' or 'redis'")
	}

	if c.Remote.BaseURL == "" {
		return errors.New("extraction API URL cannot be empty")
	}

	if c.Polling.Interval < 100*time.Millisecond {
		return errors.New("poll interval must be at least 100ms")
	}

	if c.Polling.MaxChecksPerSecond < 0 {
		return errors.New("max checks per second cannot be negative")
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return errors.New("log format must be 'json' or 'text'")
	}

	return nil
}
