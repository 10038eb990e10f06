package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Feeds    FeedsConfig    `mapstructure:"feeds"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// FeedsConfig holds festival calendar feed configuration.
// URLs may be empty; the calendar source then serves the synthetic
// fallback table instead of live data.
type FeedsConfig struct {
	URLs           []string      `mapstructure:"urls"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// AnalysisConfig holds festival impact analysis tuning
type AnalysisConfig struct {
	Category          string  `mapstructure:"category"`
	ImpactThreshold   float64 `mapstructure:"impact_threshold"`
	MinCallsThreshold int     `mapstructure:"min_calls_threshold"`
	WindowDays        int     `mapstructure:"window_days"`
	TopK              int     `mapstructure:"top_k"`
}

// StorageConfig holds festival database persistence configuration
type StorageConfig struct {
	DatabasePath  string `mapstructure:"database_path"`
	StalenessDays int    `mapstructure:"staleness_days"`
}

// TelegramConfig holds Telegram alert broadcast configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("CALLSCOPE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Feed defaults
	v.SetDefault("feeds.timeout", "30s")
	v.SetDefault("feeds.max_retries", 3)
	v.SetDefault("feeds.retry_delay_base", "1s")

	// Analysis defaults match the tuned thresholds of the impact engine
	v.SetDefault("analysis.category", "crime")
	v.SetDefault("analysis.impact_threshold", 1.3)
	v.SetDefault("analysis.min_calls_threshold", 3)
	v.SetDefault("analysis.window_days", 1)
	v.SetDefault("analysis.top_k", 10)

	// Storage defaults
	v.SetDefault("storage.database_path", "./data/festivals.json")
	v.SetDefault("storage.staleness_days", 180)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate feed config
	if c.Feeds.Timeout < 1*time.Second {
		return fmt.Errorf("feeds.timeout must be at least 1 second")
	}
	if c.Feeds.MaxRetries < 1 {
		return fmt.Errorf("feeds.max_retries must be at least 1")
	}

	// Validate analysis config
	if c.Analysis.Category == "" {
		return fmt.Errorf("analysis.category is required")
	}
	if c.Analysis.ImpactThreshold <= 0 {
		return fmt.Errorf("analysis.impact_threshold must be positive")
	}
	if c.Analysis.MinCallsThreshold < 0 {
		return fmt.Errorf("analysis.min_calls_threshold must not be negative")
	}
	if c.Analysis.WindowDays < 0 {
		return fmt.Errorf("analysis.window_days must not be negative")
	}
	if c.Analysis.TopK < 1 {
		return fmt.Errorf("analysis.top_k must be at least 1")
	}

	// Validate storage config
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path is required")
	}
	if c.Storage.StalenessDays < 1 {
		return fmt.Errorf("storage.staleness_days must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Staleness returns the refresh staleness window as a duration.
func (c *Config) Staleness() time.Duration {
	return time.Duration(c.Storage.StalenessDays) * 24 * time.Hour
}
