// Package config provides configuration management for the item console and
// the development backend.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
)

// Default configuration values.
const (
	DefaultAPIURL          = "http://localhost:3001"
	DefaultRequestTimeout  = time.Duration(0)
	DefaultLocale          = "en"
	DefaultLogLevel        = "info"
	DefaultServerPort      = 3001
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultStoreDriver     = StoreDriverMemory
)

// Store drivers supported by the development backend.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
	StoreDriverMySQL  = "mysql"
)

// Environment variable names.
const (
	EnvAPIURL          = "APP_API_URL"
	EnvRequestTimeout  = "APP_REQUEST_TIMEOUT"
	EnvLocale          = "APP_LOCALE"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvMetricsAddr     = "APP_METRICS_ADDR"
	EnvServerPort      = "APP_SERVER_PORT"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvStoreDriver     = "APP_STORE_DRIVER"
	EnvStoreDSN        = "APP_STORE_DSN"
)

// Config holds the application configuration.
type Config struct {
	// Client settings.
	APIURL         string
	RequestTimeout time.Duration // 0 = no timeout.
	Locale         string
	// MetricsAddr is the host:port of the console's /metrics listener. Empty disables it.
	MetricsAddr    string

	LogLevel string

	// Development backend settings.
	ServerPort      int
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
	StoreDriver     string
	StoreDSN        string
}

// Validation errors.
var (
	ErrInvalidAPIURL          = errors.New("API URL must be an absolute http or https URL")
	ErrInvalidRequestTimeout  = errors.New("request timeout cannot be negative")
	ErrInvalidLocale          = errors.New("locale must be a valid BCP 47 language tag")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidMetricsAddr     = errors.New("metrics address must be in host:port form")
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidStoreDriver     = errors.New("store driver must be one of: memory, sqlite, mysql")
	ErrMissingStoreDSN        = errors.New("store DSN must be set when store driver is sqlite or mysql")
)

// Load reads configuration from environment variables with defaults.
// Environment variables have priority over default values.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:          DefaultAPIURL,
		RequestTimeout:  DefaultRequestTimeout,
		Locale:          DefaultLocale,
		LogLevel:        DefaultLogLevel,
		ServerPort:      DefaultServerPort,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		StoreDriver:     DefaultStoreDriver,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadClientEnv(); err != nil {
		return err
	}

	if err := c.loadServerEnv(); err != nil {
		return err
	}

	return nil
}

// loadClientEnv loads client-related environment variables.
func (c *Config) loadClientEnv() error {
	if val := os.Getenv(EnvAPIURL); val != "" {
		c.APIURL = val
	}

	if val := os.Getenv(EnvRequestTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = timeout
	}

	if val := os.Getenv(EnvLocale); val != "" {
		c.Locale = val
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvMetricsAddr); val != "" {
		c.MetricsAddr = val
	}

	return nil
}

// loadServerEnv loads development backend environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvStoreDriver); val != "" {
		c.StoreDriver = val
	}

	if val := os.Getenv(EnvStoreDSN); val != "" {
		c.StoreDSN = val
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateClient(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return nil
}

// validateClient validates client-related configuration.
func (c *Config) validateClient() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIURL
	}

	if c.RequestTimeout < 0 {
		return ErrInvalidRequestTimeout
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return ErrInvalidLocale
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return ErrInvalidMetricsAddr
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	return nil
}

// validateServer validates development backend configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverSQLite, StoreDriverMySQL:
		if c.StoreDSN == "" {
			return ErrMissingStoreDSN
		}
	default:
		return ErrInvalidStoreDriver
	}

	return nil
}

// LocaleTag returns the parsed collation locale, falling back to English.
func (c *Config) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
