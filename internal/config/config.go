package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Roles         RolesConfig
	Azure         AzureConfig
	Catalog       CatalogConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration for serve mode
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ServerConfig holds HTTP server configuration for serve mode
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// RolesConfig holds local role document storage configuration
type RolesConfig struct {
	Dir string
}

// AzureConfig holds Azure Resource Manager configuration
type AzureConfig struct {
	SubscriptionID    string
	RequestsPerSecond float64
	Burst             int
}

// CatalogConfig holds the shared role catalog database configuration.
// The catalog is optional; commands that need it fail with a clear
// error when no DSN is configured.
type CatalogConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	ConnMaxLifetime time.Duration
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OTELEnabled    bool
	ServiceName    string
	ServiceVersion string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "127.0.0.1"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "15s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "60s"),
		},
		Roles: RolesConfig{
			Dir: getEnv("ROLES_DIR", "./roles"),
		},
		Azure: AzureConfig{
			SubscriptionID:    getEnv("AZURE_SUBSCRIPTION_ID", ""),
			RequestsPerSecond: parseFloat("AZURE_ARM_RPS", 5),
			Burst:             parseInt("AZURE_ARM_BURST", 10),
		},
		Catalog: CatalogConfig{
			Host:            getEnv("CATALOG_DB_HOST", ""),
			Port:            getEnv("CATALOG_DB_PORT", "5432"),
			User:            getEnv("CATALOG_DB_USER", "rolesmith"),
			Password:        getEnv("CATALOG_DB_PASSWORD", ""),
			Database:        getEnv("CATALOG_DB_NAME", "rolesmith"),
			SSLMode:         getEnv("CATALOG_DB_SSLMODE", "disable"),
			MaxConns:        parseInt("CATALOG_DB_MAX_CONNS", 5),
			ConnMaxLifetime: parseDuration("CATALOG_DB_CONN_MAX_LIFETIME", "5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "warn"),
			LogFormat:      getEnv("LOG_FORMAT", "text"),
			OTELEnabled:    parseBool("OTEL_ENABLED", false),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "rolesmith"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "0.1.0"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: parseFloat("RATELIMIT_RPS", 10),
			Burst:             parseInt("RATELIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Azure.RequestsPerSecond <= 0 {
		return fmt.Errorf("AZURE_ARM_RPS must be positive")
	}
	if c.Azure.Burst <= 0 {
		return fmt.Errorf("AZURE_ARM_BURST must be positive")
	}
	return nil
}

// CatalogConfigured reports whether a catalog database host is set.
func (c *Config) CatalogConfigured() bool {
	return c.Catalog.Host != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func parseFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	d, err := time.ParseDuration(value)
	if err != nil {
		// Fallback to default
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
