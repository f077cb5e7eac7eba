// Package config provides configuration management for the clipper tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrSourceMissingURLOrFile   = errors.New("either url or file is required")
	ErrNoEnabledSources         = errors.New("at least one source must be enabled")
	ErrInvalidMaxAttempts       = errors.New("fetch.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("fetch.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("fetch.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("fetch.timeout_sec must be at least 1")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrInvalidMinWords          = errors.New("validation.min_words must be non-negative")
	ErrInvalidMaxWords          = errors.New("validation.max_words must be at least 1")
	ErrMinExceedsMax            = errors.New("validation.min_words cannot exceed validation.max_words")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidMaxDepth          = errors.New("advanced.max_tree_depth must be at least 1")
)

// Config represents the complete clipper configuration.
type Config struct {
	Clipper  ClipperConfig  `yaml:"clipper"`
	Features FeaturesConfig `yaml:"features"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// ClipperConfig contains the clipping pipeline settings.
type ClipperConfig struct {
	Sources    []SourceConfig   `yaml:"sources"`
	Output     OutputConfig     `yaml:"output"`
	Fetch      RetryPolicy      `yaml:"fetch"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Validation ValidationConfig `yaml:"validation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SourceConfig represents one page to clip.
type SourceConfig struct {
	URL     string `yaml:"url"`
	File    string `yaml:"file"`
	Title   string `yaml:"title"`
	Enabled bool   `yaml:"enabled"`
}

// IsLocalFile returns true if this source reads a local HTML file.
func (s *SourceConfig) IsLocalFile() bool {
	return s.File != ""
}

// Location returns the file path if local, or URL if remote.
func (s *SourceConfig) Location() string {
	if s.IsLocalFile() {
		return s.File
	}

	return s.URL
}

// OutputConfig defines where clips are written.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	CreateBackup bool   `yaml:"create_backup"`
}

// RetryPolicy defines fetch retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// ExtractionConfig controls how the content subtree is located.
type ExtractionConfig struct {
	// ContentSelectors are tried in order; the first match wins.
	ContentSelectors []string `yaml:"content_selectors"`
	// StripSelectors are removed from the matched subtree.
	StripSelectors []string `yaml:"strip_selectors"`
	Sanitize       bool     `yaml:"sanitize"`
}

// ValidationConfig bounds the generated clip document.
type ValidationConfig struct {
	MinWords           int  `yaml:"min_words"`
	MaxWords           int  `yaml:"max_words"`
	RequireFrontMatter bool `yaml:"require_front_matter"`
	RequireTitle       bool `yaml:"require_title"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	TidyTables bool `yaml:"tidy_tables"`
	SignClips  bool `yaml:"sign_clips"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	MaxTreeDepth  int `yaml:"max_tree_depth"`
	MaxBodySizeKb int `yaml:"max_body_size_kb"`
}

// Default creates a configuration with sensible defaults and no sources.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Clipper.Output.Dir == "" {
		c.Clipper.Output.Dir = "clips"
	}

	if c.Clipper.Fetch.MaxAttempts == 0 {
		c.Clipper.Fetch.MaxAttempts = 3
	}

	if c.Clipper.Fetch.InitialDelayMs == 0 {
		c.Clipper.Fetch.InitialDelayMs = 500
	}

	if c.Clipper.Fetch.MaxDelayMs == 0 {
		c.Clipper.Fetch.MaxDelayMs = 30000
	}

	if c.Clipper.Fetch.BackoffMultiplier == 0 {
		c.Clipper.Fetch.BackoffMultiplier = 2.0
	}

	if c.Clipper.Fetch.TimeoutSec == 0 {
		c.Clipper.Fetch.TimeoutSec = 30
	}

	if len(c.Clipper.Extraction.ContentSelectors) == 0 {
		c.Clipper.Extraction.ContentSelectors = []string{"article", "main", "#content", ".post-content"}
	}

	if len(c.Clipper.Extraction.StripSelectors) == 0 {
		c.Clipper.Extraction.StripSelectors = []string{
			"script", "style", "noscript", "iframe", "nav", "header", "footer", "aside",
			".ad", ".ads", ".advertisement", ".social-share", ".comments",
		}
	}

	if c.Clipper.Validation.MaxWords == 0 {
		c.Clipper.Validation.MaxWords = 500000
	}

	if c.Clipper.Logging.Level == "" {
		c.Clipper.Logging.Level = "info"
	}

	if c.Clipper.Logging.Format == "" {
		c.Clipper.Logging.Format = "text"
	}

	if c.Advanced.MaxTreeDepth == 0 {
		c.Advanced.MaxTreeDepth = 200
	}

	if c.Advanced.MaxBodySizeKb == 0 {
		c.Advanced.MaxBodySizeKb = 2048
	}
}

// Validate validates the configuration. Sources are optional (a URL may
// be supplied on the command line) but configured sources must be sound.
func (c *Config) Validate() error {
	enabledCount := 0

	for i, src := range c.Clipper.Sources {
		if src.URL == "" && src.File == "" {
			return fmt.Errorf("%w: source[%d]", ErrSourceMissingURLOrFile, i)
		}

		if src.Enabled {
			enabledCount++
		}
	}

	if len(c.Clipper.Sources) > 0 && enabledCount == 0 {
		return ErrNoEnabledSources
	}

	if c.Clipper.Fetch.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Clipper.Fetch.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Clipper.Fetch.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Clipper.Fetch.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Clipper.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Clipper.Validation.MinWords < 0 {
		return ErrInvalidMinWords
	}

	if c.Clipper.Validation.MaxWords < 1 {
		return ErrInvalidMaxWords
	}

	if c.Clipper.Validation.MinWords > c.Clipper.Validation.MaxWords {
		return ErrMinExceedsMax
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Clipper.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Clipper.Logging.Format != "text" && c.Clipper.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Advanced.MaxTreeDepth < 1 {
		return ErrInvalidMaxDepth
	}

	return nil
}

// EnabledSources returns only enabled sources.
func (c *Config) EnabledSources() []SourceConfig {
	var enabled []SourceConfig

	for _, src := range c.Clipper.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return enabled
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Sources: %d, MaxAttempts: %d, Output: %s}",
		len(c.Clipper.Sources),
		c.Clipper.Fetch.MaxAttempts,
		c.Clipper.Output.Dir,
	)
}
