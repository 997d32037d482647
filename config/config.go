// Package config loads the application configuration from the environment,
// after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/etnz/fintrack"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string
	DatabasePath    string
	LogLevel        string
	LogPretty       bool
	RefreshInterval time.Duration
	HTTPTimeout     time.Duration
	FundTimeout     time.Duration
	Port            int
	FXPair          fintrack.Pair
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FINTRACK_DATA_DIR", ".fintrack")
	cfg := &Config{
		DataDir:         dataDir,
		DatabasePath:    getEnv("FINTRACK_DB", filepath.Join(dataDir, "fintrack.db")),
		LogLevel:        getEnv("FINTRACK_LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("FINTRACK_LOG_PRETTY", true),
		RefreshInterval: getEnvAsDuration("FINTRACK_REFRESH_INTERVAL", 15*time.Second),
		HTTPTimeout:     getEnvAsDuration("FINTRACK_HTTP_TIMEOUT", 20*time.Second),
		FundTimeout:     getEnvAsDuration("FINTRACK_FUND_TIMEOUT", 30*time.Second),
		Port:            getEnvAsInt("FINTRACK_PORT", 8080),
		FXPair: fintrack.Pair{
			Base:  fintrack.Currency(getEnv("FINTRACK_FX_BASE", "USD")),
			Quote: fintrack.Currency(getEnv("FINTRACK_FX_QUOTE", "TRY")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("FINTRACK_DB is required"))
	}
	if c.RefreshInterval < time.Second {
		errs = append(errs, fmt.Errorf("FINTRACK_REFRESH_INTERVAL must be at least 1s, got %v", c.RefreshInterval))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FINTRACK_HTTP_TIMEOUT must be positive, got %v", c.HTTPTimeout))
	}
	if c.FundTimeout <= 0 {
		errs = append(errs, fmt.Errorf("FINTRACK_FUND_TIMEOUT must be positive, got %v", c.FundTimeout))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("FINTRACK_PORT out of range: %d", c.Port))
	}
	if pair, err := fintrack.ParsePair(c.FXPair.String()); err != nil {
		errs = append(errs, fmt.Errorf("FINTRACK_FX_BASE/FINTRACK_FX_QUOTE: %w", err))
	} else {
		c.FXPair = pair
	}
	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
