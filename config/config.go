package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Scrape   ScrapeConfig
	Matching MatchingConfig
	Cache    CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// ScrapeConfig holds ingestion settings
type ScrapeConfig struct {
	// Schedule is a cron spec for periodic runs; empty disables the scheduler.
	Schedule   string        `mapstructure:"schedule"`
	SearchTerm string        `mapstructure:"search_term"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Rate       float64       `mapstructure:"rate"`
	Burst      int           `mapstructure:"burst"`
}

// MatchingConfig holds product reconciliation settings
type MatchingConfig struct {
	MinConfidence      float64 `mapstructure:"min_confidence"`
	PrefixLength       int     `mapstructure:"prefix_length"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// CacheConfig holds read-side cache settings
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/comparapy/")

	// Environment variable settings
	v.SetEnvPrefix("COMPARAPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Scrape defaults
	v.SetDefault("scrape.schedule", "")
	v.SetDefault("scrape.search_term", "leche")
	v.SetDefault("scrape.timeout", "30s")
	v.SetDefault("scrape.rate", 2.0)
	v.SetDefault("scrape.burst", 5)

	// Matching defaults
	v.SetDefault("matching.min_confidence", 40.0)
	v.SetDefault("matching.prefix_length", 12)

	// Cache defaults
	v.SetDefault("cache.ttl", "5m")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required (set COMPARAPY_DATABASE_DSN)")
	}

	if config.Matching.MinConfidence < 0 || config.Matching.MinConfidence > 100 {
		return fmt.Errorf("matching min_confidence must be between 0 and 100, got: %v", config.Matching.MinConfidence)
	}

	if config.Matching.PrefixLength < 1 {
		return fmt.Errorf("matching prefix_length must be positive, got: %d", config.Matching.PrefixLength)
	}

	return nil
}
