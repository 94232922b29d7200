package config

import (
	"os"
	"strconv"
	"time"

	"custlens/domain/customer"
	"custlens/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Defaults DefaultsConfig
	Sweep    SweepConfig
	Database DatabaseConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig controls where the dataset comes from.
type DataConfig struct {
	NumRows int
	Seed    int64
	// DataFile, when set, replaces synthesis with an xlsx/csv import.
	DataFile string
	// WatchDataFile reloads DataFile whenever it changes on disk.
	WatchDataFile bool
}

// DefaultsConfig holds the initial filter selection and table sizes.
type DefaultsConfig struct {
	AgeMin int
	AgeMax int
	TopN   int
}

// SweepConfig bounds preset sweeps.
type SweepConfig struct {
	Workers     int
	PresetsFile string
	// Schedule is a cron spec for archiving every preset; empty disables it.
	Schedule string
}

// DatabaseConfig holds the optional snapshot archive connection.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether the snapshot archive should be used.
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// Load reads a .env file if present, then the environment, and validates.
func Load() (*Config, error) {
	// Missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Defaults: *loadDefaultsConfig(),
		Sweep:    *loadSweepConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		NumRows:  getEnvIntOrDefault("NUM_ROWS", customer.DefaultRows),
		Seed:     getEnvInt64OrDefault("SEED", 0),
		DataFile:      getEnvOrDefault("DATA_FILE", ""),
		WatchDataFile: getEnvBoolOrDefault("WATCH_DATA_FILE", true),
	}
}

func loadDefaultsConfig() *DefaultsConfig {
	return &DefaultsConfig{
		AgeMin: getEnvIntOrDefault("AGE_MIN", customer.DefaultAgeMin),
		AgeMax: getEnvIntOrDefault("AGE_MAX", customer.DefaultAgeMax),
		TopN:   getEnvIntOrDefault("TOP_N", 10),
	}
}

func loadSweepConfig() *SweepConfig {
	return &SweepConfig{
		Workers:     getEnvIntOrDefault("SWEEP_WORKERS", 4),
		PresetsFile: getEnvOrDefault("PRESETS_FILE", ""),
		Schedule:    getEnvOrDefault("SNAPSHOT_SCHEDULE", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if config.Data.NumRows <= 0 {
		return errors.ConfigInvalid("NUM_ROWS must be positive")
	}
	if config.Defaults.AgeMin > config.Defaults.AgeMax {
		return errors.ConfigInvalid("AGE_MIN must not exceed AGE_MAX")
	}
	if config.Defaults.TopN <= 0 {
		return errors.ConfigInvalid("TOP_N must be positive")
	}
	if config.Sweep.Workers <= 0 {
		return errors.ConfigInvalid("SWEEP_WORKERS must be positive")
	}
	if config.Sweep.Schedule != "" && !config.Database.Enabled() {
		return errors.ConfigInvalid("SNAPSHOT_SCHEDULE requires DATABASE_URL")
	}
	return nil
}

// DefaultCriteria returns the configured initial filter selection.
func (c *Config) DefaultCriteria() customer.FilterCriteria {
	criteria := customer.DefaultCriteria()
	criteria.AgeMin = c.Defaults.AgeMin
	criteria.AgeMax = c.Defaults.AgeMax
	return criteria
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
