package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Forecast methods.
const (
	MethodMonteCarlo = "montecarlo"
	MethodLinear     = "linear"
)

// Config holds all application configuration
type Config struct {
	InputFile     string  `env:"INPUT_FILE" envDefault:"persons_of_concern.csv"`
	TargetColumn  string  `env:"TARGET_COLUMN" envDefault:""` // empty = auto-detect
	Method        string  `env:"METHOD" envDefault:"montecarlo"`
	PathCount     int     `env:"PATH_COUNT" envDefault:"2000"`
	Horizon       int     `env:"HORIZON" envDefault:"36"`
	CapacityLimit float64 `env:"CAPACITY_LIMIT" envDefault:"-"`
	HasLimit      bool
	Seed          int64 `env:"RANDOM_SEED" envDefault:"-"`
	HasSeed       bool
	Output        string `env:"OUTPUT" envDefault:"text"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.InputFile = getEnvWithDefault("INPUT_FILE", "persons_of_concern.csv")
	cfg.TargetColumn = os.Getenv("TARGET_COLUMN")
	cfg.Method = getEnvWithDefault("METHOD", MethodMonteCarlo)
	cfg.PathCount = getEnvIntWithDefault("PATH_COUNT", 2000)
	cfg.Horizon = getEnvIntWithDefault("HORIZON", 36)
	cfg.Output = getEnvWithDefault("OUTPUT", "text")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	if value := os.Getenv("CAPACITY_LIMIT"); value != "" {
		limit, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("CAPACITY_LIMIT %q is not a number: %w", value, err)
		}
		if limit < 0 {
			return nil, fmt.Errorf("CAPACITY_LIMIT must be non-negative, got %v", limit)
		}
		cfg.CapacityLimit = limit
		cfg.HasLimit = true
	}

	if value := os.Getenv("RANDOM_SEED"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("RANDOM_SEED %q is not an integer: %w", value, err)
		}
		cfg.Seed = seed
		cfg.HasSeed = true
	}

	if cfg.Method != MethodMonteCarlo && cfg.Method != MethodLinear {
		return nil, fmt.Errorf("METHOD must be %q or %q, got %q", MethodMonteCarlo, MethodLinear, cfg.Method)
	}
	if cfg.Output != "text" && cfg.Output != "json" {
		return nil, fmt.Errorf("OUTPUT must be \"text\" or \"json\", got %q", cfg.Output)
	}

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
	}
	return defaultValue
}
