// Package config provides centralized configuration management for the
// import service. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// ImportConfig holds bulk-import processing settings.
type ImportConfig struct {
	// MaxBodySize is the maximum accepted request body in bytes (default: 10MB)
	MaxBodySize int64 `env:"IMPORT_MAX_BODY_SIZE" default:"10485760"`

	// BatchSize is the number of rows processed concurrently per batch (default: 10)
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"10"`

	// RetryAttempts is the total number of insert attempts per row (default: 3)
	RetryAttempts int `env:"IMPORT_RETRY_ATTEMPTS" default:"3"`

	// RetryBaseDelay is the backoff delay before the second attempt (default: 1s)
	RetryBaseDelay time.Duration `env:"IMPORT_RETRY_BASE_DELAY" default:"1s"`

	// RetryMaxDelay caps the computed backoff delay (default: 10s)
	RetryMaxDelay time.Duration `env:"IMPORT_RETRY_MAX_DELAY" default:"10s"`

	// DayFirst reads ambiguous numeric dates day-first (default: false, US order)
	DayFirst bool `env:"IMPORT_DAY_FIRST" default:"false"`

	// MaxConcurrent is the number of import requests allowed in flight (default: 5)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"5"`

	// AcquireWait is how long a request waits for an import slot before being
	// rejected (default: 10s)
	AcquireWait time.Duration `env:"IMPORT_ACQUIRE_WAIT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.Database.MaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.Database.MinConns < 0 {
		errs = append(errs, "DB_MIN_CONNS must be non-negative")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
			c.Database.MaxConns, c.Database.MinConns))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Import.MaxBodySize <= 0 {
		errs = append(errs, "IMPORT_MAX_BODY_SIZE must be positive")
	}
	if c.Import.BatchSize <= 0 {
		errs = append(errs, "IMPORT_BATCH_SIZE must be positive")
	}
	if c.Import.RetryAttempts <= 0 {
		errs = append(errs, "IMPORT_RETRY_ATTEMPTS must be positive")
	}
	if c.Import.RetryBaseDelay <= 0 {
		errs = append(errs, "IMPORT_RETRY_BASE_DELAY must be positive")
	}
	if c.Import.RetryMaxDelay < c.Import.RetryBaseDelay {
		errs = append(errs, "IMPORT_RETRY_MAX_DELAY must be >= IMPORT_RETRY_BASE_DELAY")
	}
	if c.Import.MaxConcurrent <= 0 {
		errs = append(errs, "IMPORT_MAX_CONCURRENT must be positive")
	}
	if c.Import.AcquireWait <= 0 {
		errs = append(errs, "IMPORT_ACQUIRE_WAIT must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be debug, info, warn, or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be text or json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
