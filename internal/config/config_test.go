package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
clipper:
  sources:
    - url: "https://example.com/article"
      enabled: true
  output:
    dir: "./clips"
    create_backup: true
  fetch:
    max_attempts: 3
    initial_delay_ms: 100
    max_delay_ms: 5000
    backoff_multiplier: 2.0
    timeout_sec: 30
  extraction:
    content_selectors: ["article", "main"]
    sanitize: true
  validation:
    min_words: 1
    max_words: 100000
    require_front_matter: true
  logging:
    level: "info"
    format: "text"
features:
  tidy_tables: true
  sign_clips: false
advanced:
  max_tree_depth: 150
  max_body_size_kb: 1024
`

func TestLoadConfigValid(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Clipper.Sources) != 1 {
		t.Errorf("Sources = %d, want 1", len(cfg.Clipper.Sources))
	}

	if cfg.Clipper.Output.Dir != "./clips" {
		t.Errorf("Output.Dir = %q, want %q", cfg.Clipper.Output.Dir, "./clips")
	}

	if !cfg.Features.TidyTables {
		t.Error("Features.TidyTables = false, want true")
	}

	if cfg.Advanced.MaxTreeDepth != 150 {
		t.Errorf("MaxTreeDepth = %d, want 150", cfg.Advanced.MaxTreeDepth)
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := createTempConfigFile(t, "clipper:\n  logging:\n    level: debug\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Clipper.Fetch.MaxAttempts != 3 {
		t.Errorf("default MaxAttempts = %d, want 3", cfg.Clipper.Fetch.MaxAttempts)
	}

	if cfg.Clipper.Output.Dir != "clips" {
		t.Errorf("default Output.Dir = %q, want %q", cfg.Clipper.Output.Dir, "clips")
	}

	if len(cfg.Clipper.Extraction.ContentSelectors) == 0 {
		t.Error("default content selectors not applied")
	}

	if cfg.Clipper.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q (explicit value overridden)", cfg.Clipper.Logging.Level, "debug")
	}

	if cfg.Clipper.Logging.Format != "text" {
		t.Errorf("default Format = %q, want %q", cfg.Clipper.Logging.Format, "text")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig on missing file succeeded, want error")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := createTempConfigFile(t, "clipper: [not a mapping")

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig on malformed YAML succeeded, want error")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			"source without url or file",
			func(c *Config) { c.Clipper.Sources = []SourceConfig{{Enabled: true}} },
			ErrSourceMissingURLOrFile,
		},
		{
			"all sources disabled",
			func(c *Config) { c.Clipper.Sources = []SourceConfig{{URL: "http://x", Enabled: false}} },
			ErrNoEnabledSources,
		},
		{
			"zero attempts",
			func(c *Config) { c.Clipper.Fetch.MaxAttempts = -1 },
			ErrInvalidMaxAttempts,
		},
		{
			"negative delay",
			func(c *Config) { c.Clipper.Fetch.InitialDelayMs = -5 },
			ErrInvalidInitialDelay,
		},
		{
			"backoff below one",
			func(c *Config) { c.Clipper.Fetch.BackoffMultiplier = 0.5 },
			ErrInvalidBackoffMultiplier,
		},
		{
			"min words above max",
			func(c *Config) {
				c.Clipper.Validation.MinWords = 100
				c.Clipper.Validation.MaxWords = 10
			},
			ErrMinExceedsMax,
		},
		{
			"bad log level",
			func(c *Config) { c.Clipper.Logging.Level = "verbose" },
			ErrInvalidLogLevel,
		},
		{
			"bad log format",
			func(c *Config) { c.Clipper.Logging.Format = "xml" },
			ErrInvalidLogFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryDelayBackoff(t *testing.T) {
	rp := &RetryPolicy{
		MaxAttempts:       5,
		InitialDelayMs:    100,
		MaxDelayMs:        1000,
		BackoffMultiplier: 2.0,
		TimeoutSec:        10,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 0},
		{2, 100 * time.Millisecond},
		{3, 200 * time.Millisecond},
		{4, 400 * time.Millisecond},
		{6, 1000 * time.Millisecond}, // capped
	}

	for _, tt := range tests {
		if got := rp.GetRetryDelay(tt.attempt); got != tt.expected {
			t.Errorf("GetRetryDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestEnabledSources(t *testing.T) {
	cfg := Default()
	cfg.Clipper.Sources = []SourceConfig{
		{URL: "http://a", Enabled: true},
		{URL: "http://b", Enabled: false},
		{File: "page.html", Enabled: true},
	}

	enabled := cfg.EnabledSources()
	if len(enabled) != 2 {
		t.Fatalf("EnabledSources = %d, want 2", len(enabled))
	}

	if !enabled[1].IsLocalFile() {
		t.Error("second enabled source should be a local file")
	}
}
