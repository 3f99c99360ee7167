package config

import (
	"os"
	"strconv"

	"goadmit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Search   SearchConfig
	Paths    PathConfig
}

// DatabaseConfig holds run-repository connection settings. The URL is
// optional: without it, runs are not persisted.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port string
}

// SearchConfig holds default analysis budgets and tolerances
type SearchConfig struct {
	MaxSetSize    int
	MaxCandidates int
	Workers       int
	Tolerance     float64
	ProbeSamples  int
}

// PathConfig holds file system paths
type PathConfig struct {
	SystemFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("GOADMIT_DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("GOADMIT_SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("GOADMIT_PORT", "8080"),
		},
		Search: SearchConfig{
			MaxSetSize:    getEnvIntOrDefault("GOADMIT_MAX_SET_SIZE", 4),
			MaxCandidates: getEnvIntOrDefault("GOADMIT_MAX_CANDIDATES", 250000),
			Workers:       getEnvIntOrDefault("GOADMIT_WORKERS", 0),
			Tolerance:     getEnvFloatOrDefault("GOADMIT_TOLERANCE", 1e-9),
			ProbeSamples:  getEnvIntOrDefault("GOADMIT_PROBE_SAMPLES", 1000),
		},
		Paths: PathConfig{
			SystemFile: getEnvOrDefault("GOADMIT_SYSTEM_FILE", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Search.MaxSetSize < 1 {
		return errors.ConfigInvalid("GOADMIT_MAX_SET_SIZE must be at least 1")
	}
	if config.Search.MaxCandidates < 1 {
		return errors.ConfigInvalid("GOADMIT_MAX_CANDIDATES must be at least 1")
	}
	if config.Search.Workers < 0 {
		return errors.ConfigInvalid("GOADMIT_WORKERS must be nonnegative")
	}
	if config.Search.Tolerance < 0 {
		return errors.ConfigInvalid("GOADMIT_TOLERANCE must be nonnegative")
	}
	if config.Search.ProbeSamples < 1 {
		return errors.ConfigInvalid("GOADMIT_PROBE_SAMPLES must be at least 1")
	}
	return nil
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
