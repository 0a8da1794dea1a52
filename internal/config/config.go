// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Schema   SchemaConfig
	Run      RunConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings for the intake adapter.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a submission body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout applied to a full run (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// SchemaConfig points at the catalog/package/sender documents the Schema
// Loader reads on startup (spec.md §2/§9).
type SchemaConfig struct {
	// Dir is the directory scanned (recursively) for *.yaml / *.yml schema
	// documents (required).
	Dir string `env:"SCHEMA_DIR" required:"true"`

	// ReloadInterval is read and validated (default: 0); no component
	// re-scans Dir on it, so schema edits apply only after a restart.
	ReloadInterval time.Duration `env:"SCHEMA_RELOAD_INTERVAL" default:"0s"`
}

// RunConfig holds Run Controller processing settings.
type RunConfig struct {
	// MaxConcurrent is read and validated (default: 5); no component uses it
	// to limit how many submissions are processed in parallel.
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"5"`

	// Timeout is the maximum duration for one submission's full
	// Load/Validate/Sink pipeline (default: 10m).
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"10m"`

	// MaxFileSize is the maximum accepted submission payload size in bytes
	// (default: 100MB).
	MaxFileSize int64 `env:"RUN_MAX_FILE_SIZE" default:"104857600"`
}

// SecurityConfig holds security-related settings for the intake adapter.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP is read from the environment (default: true); the intake
	// adapter sets no Content-Security-Policy header either way.
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey gates the HTTP intake adapter's api/direct_upload
	// channels behind one of APIKeys (default: true). Per-sender channel
	// keys from the Schema Loader are checked in addition to this set.
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"true"`

	// APIKeys is the comma-separated set of keys accepted at the adapter
	// level, independent of any per-sender channel key.
	APIKeys []string `env:"API_KEYS"`
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
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
