// ABOUTME: Configuration options for the capture library client
// ABOUTME: Provides functional options pattern for flexible client configuration

package capturelib

import (
	"errors"
	"strings"
	"time"

	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/http/standard"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/memory"
)

// Option is a functional option for configuring the client
type Option func(*Config) error

// Config holds the configuration for the client
type Config struct {
	// Storage keeps jobs, chat sessions and selector settings across restarts
	Storage interfaces.Storage

	// ExtractionService overrides the remote client built from BaseURL
	ExtractionService interfaces.ExtractionService

	// ChatService overrides the remote client built from BaseURL
	ChatService interfaces.ChatService

	// HTTPClient is used by the remote client
	HTTPClient interfaces.HTTPClient

	// BaseURL is the root of the extraction API
	BaseURL string

	Logger interfaces.Logger

	// PollInterval between status checks of one job
	PollInterval time.Duration

	// MaxChecksPerSecond bounds status checks across all jobs; 0 disables the limit
	MaxChecksPerSecond float64

	// ResumePolling restarts polling for pending jobs found in storage
	ResumePolling bool

	// ReadabilityFallback extracts article text when no content selector matches
	ReadabilityFallback bool

	// WaitInterval is how often WaitForJob looks at the job
	WaitInterval time.Duration
}

// WithStorage sets the storage backend
func WithStorage(storage interfaces.Storage) Option {
	return func(c *Config) error {
		if storage == nil {
			return NewError(ErrorTypeConfiguration, "storage cannot be nil")
		}
		c.Storage = storage
		return nil
	}
}

// WithExtractionService sets a custom extraction service
func WithExtractionService(service interfaces.ExtractionService) Option {
	return func(c *Config) error {
		c.ExtractionService = service
		return nil
	}
}

// WithChatService sets a custom chat service
func WithChatService(service interfaces.ChatService) Option {
	return func(c *Config) error {
		c.ChatService = service
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client interfaces.HTTPClient) Option {
	return func(c *Config) error {
		c.HTTPClient = client
		return nil
	}
}

// WithBaseURL sets the extraction API root
func WithBaseURL(baseURL string) Option {
	return func(c *Config) error {
		c.BaseURL = strings.TrimRight(baseURL, "/")
		return nil
	}
}

// WithLogger sets a custom logger
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithPollInterval sets the delay between status checks of one job
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return NewError(ErrorTypeConfiguration, "poll interval must be positive")
		}
		c.PollInterval = interval
		return nil
	}
}

// WithMaxChecksPerSecond bounds the aggregate status-check rate
func WithMaxChecksPerSecond(n float64) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewError(ErrorTypeConfiguration, "max checks per second cannot be negative")
		}
		c.MaxChecksPerSecond = n
		return nil
	}
}

// WithResumePolling enables or disables polling of restored pending jobs
func WithResumePolling(enabled bool) Option {
	return func(c *Config) error {
		c.ResumePolling = enabled
		return nil
	}
}

// WithReadabilityFallback enables or disables the readability fallback
func WithReadabilityFallback(enabled bool) Option {
	return func(c *Config) error {
		c.ReadabilityFallback = enabled
		return nil
	}
}

// WithWaitInterval sets how often WaitForJob checks the job
func WithWaitInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return NewError(ErrorTypeConfiguration, "wait interval must be positive")
		}
		c.WaitInterval = interval
		return nil
	}
}

// defaultConfig returns the default client configuration
func defaultConfig() Config {
	return Config{
		Storage:             memory.NewStorage(),
		HTTPClient:          standard.NewStandardHTTPClient(30 * time.Second),
		BaseURL:             "http://localhost:8081/api",
		Logger:              interfaces.NopLogger{},
		PollInterval:        10 * time.Second,
		ResumePolling:       true,
		ReadabilityFallback: true,
		WaitInterval:        250 * time.Millisecond,
	}
}

func validateConfig(c *Config) error {
	if c.ExtractionService == nil || c.ChatService == nil {
		if c.HTTPClient == nil {
			return NewError(ErrorTypeConfiguration, "HTTP client is required")
		}
		if c.BaseURL == "" {
			return NewError(ErrorTypeConfiguration, "base URL is required").WithCause(errors.New("empty base URL"))
		}
	}
	if c.Logger == nil {
		c.Logger = interfaces.NopLogger{}
	}
	return nil
}
