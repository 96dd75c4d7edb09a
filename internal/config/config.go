package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the delivery engine. It is loaded once
// at startup and injected into constructors; nothing reads the environment
// at call time.
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Product configuration
	DashboardURL string

	// Azure Storage configuration (delivery-outcome archive)
	StorageAccount   string
	StorageContainer string

	// Email (SMTP) configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string

	// Delivery tuning
	SendTimeout      time.Duration
	RetryBaseDelay   time.Duration
	RetryMaxDelay    time.Duration
	MaxAttempts      int
	SweepInterval    time.Duration
	InstantInterval  time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DashboardURL: getEnv("DASHBOARD_URL", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "delivery-outcomes"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getIntEnv("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),

		SendTimeout:     getDurationEnv("SEND_TIMEOUT", 30*time.Second),
		RetryBaseDelay:  getDurationEnv("RETRY_BASE_DELAY", 30*time.Second),
		RetryMaxDelay:   getDurationEnv("RETRY_MAX_DELAY", 1*time.Hour),
		MaxAttempts:     getIntEnv("MAX_DELIVERY_ATTEMPTS", 5),
		SweepInterval:   getDurationEnv("SWEEP_INTERVAL", time.Minute),
		InstantInterval: getDurationEnv("INSTANT_INTERVAL", 5*time.Minute),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("MAX_DELIVERY_ATTEMPTS must be at least 1")
	}

	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("RETRY_BASE_DELAY must be positive")
	}

	if c.EmailFrom == "" {
		c.EmailFrom = c.SMTPUsername
	}

	return nil
}

// EmailEnabled reports whether SMTP is configured well enough to send.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
