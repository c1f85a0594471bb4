// Package config loads the bridge configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full bridge configuration.
type Config struct {
	Listen      string          `yaml:"listen"`
	LogLevel    string          `yaml:"log_level"`
	CommandsDir string          `yaml:"commands_dir"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Codex       CodexConfig     `yaml:"codex"`
}

// RateLimitConfig is the single overridable rate-limit record. Max
// applies per client IP per window; MaxPost is the lower threshold for
// mutating endpoints. Enabled is the master flag — when false nothing is
// limited, including the health-check bypass.
type RateLimitConfig struct {
	Max        int  `yaml:"max"`
	TimeWindow int  `yaml:"time_window_seconds"`
	MaxPost    int  `yaml:"max_post"`
	Enabled    bool `yaml:"enabled"`
}

// CodexConfig carries the Codex adapter's read-once options.
type CodexConfig struct {
	Model         string `yaml:"model"`
	ContextWindow int64  `yaml:"context_window"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:   "127.0.0.1:8765",
		LogLevel: "info",
		RateLimit: RateLimitConfig{
			Max:        120,
			TimeWindow: 60,
			MaxPost:    30,
			Enabled:    true,
		},
	}
}

// Load reads a YAML config file and fills zero values with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = def.RateLimit.Max
	}
	if c.RateLimit.TimeWindow == 0 {
		c.RateLimit.TimeWindow = def.RateLimit.TimeWindow
	}
	if c.RateLimit.MaxPost == 0 {
		c.RateLimit.MaxPost = def.RateLimit.MaxPost
	}
}
