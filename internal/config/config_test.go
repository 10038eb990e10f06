package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAndValidate(t *testing.T) {
	// Create temp config file
	content := `
feeds:
  urls:
    - "https://calendar.google.com/calendar/ical/en.indian%23holiday@group.v.calendar.google.com/public/basic.ics"
    - "https://www.officeholidays.com/ics/india"
  timeout: 30s
  max_retries: 3
  retry_delay_base: 1s

analysis:
  category: "crime"
  impact_threshold: 1.3
  min_calls_threshold: 3
  window_days: 1
  top_k: 10

storage:
  database_path: "./data/festivals.json"
  staleness_days: 180

telegram:
  bot_token: "test_token"
  chat_id: "test_chat_id"
  enabled: true

logging:
  level: "info"
  format: "json"
`
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test Load
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify values
	if len(cfg.Feeds.URLs) != 2 {
		t.Errorf("Expected 2 feed URLs, got %d", len(cfg.Feeds.URLs))
	}
	if cfg.Analysis.ImpactThreshold != 1.3 {
		t.Errorf("Unexpected impact threshold: %f", cfg.Analysis.ImpactThreshold)
	}
	if cfg.Storage.StalenessDays != 180 {
		t.Errorf("Unexpected staleness: %d", cfg.Storage.StalenessDays)
	}
	if cfg.Staleness() != 180*24*time.Hour {
		t.Errorf("Unexpected staleness duration: %v", cfg.Staleness())
	}

	// Test Validate
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())
	if _, err := tmpfile.Write([]byte("feeds:\n  urls: []\n")); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Analysis.ImpactThreshold != 1.3 {
		t.Errorf("Expected default impact threshold 1.3, got %f", cfg.Analysis.ImpactThreshold)
	}
	if cfg.Analysis.MinCallsThreshold != 3 {
		t.Errorf("Expected default min calls threshold 3, got %d", cfg.Analysis.MinCallsThreshold)
	}
	if cfg.Storage.StalenessDays != 180 {
		t.Errorf("Expected default staleness 180 days, got %d", cfg.Storage.StalenessDays)
	}

	// Empty feed list is valid configuration; the fallback table serves it
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed for feedless config: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Feeds: FeedsConfig{
				Timeout:        30 * time.Second,
				MaxRetries:     3,
				RetryDelayBase: time.Second,
			},
			Analysis: AnalysisConfig{
				Category:          "crime",
				ImpactThreshold:   1.3,
				MinCallsThreshold: 3,
				WindowDays:        1,
				TopK:              10,
			},
			Storage: StorageConfig{
				DatabasePath:  "./data/festivals.json",
				StalenessDays: 180,
			},
			Logging: LoggingConfig{
				Level:  "info",
				Format: "json",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid baseline",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing category",
			mutate:  func(c *Config) { c.Analysis.Category = "" },
			wantErr: true,
		},
		{
			name:    "non-positive impact threshold",
			mutate:  func(c *Config) { c.Analysis.ImpactThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "negative window",
			mutate:  func(c *Config) { c.Analysis.WindowDays = -1 },
			wantErr: true,
		},
		{
			name:    "missing telegram token when enabled",
			mutate:  func(c *Config) { c.Telegram.Enabled = true },
			wantErr: true,
		},
		{
			name:    "zero staleness",
			mutate:  func(c *Config) { c.Storage.StalenessDays = 0 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
