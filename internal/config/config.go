// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for localmind.
//
// Configuration lives in ~/.localmind/config.toml, with sensible defaults
// and environment variable overrides.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/localmind/localmind-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete localmind client configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Export configuration
	Export ExportConfig `toml:"export"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// URL is the backend base URL including the /api prefix
	URL string `toml:"url"`
	// TimeoutSecs is the timeout for unary requests in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the number of attempts for transient failures
	MaxRetries int `toml:"max_retries"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// ShowTimestamps displays message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
	// MarkdownRendering renders assistant replies as markdown
	MarkdownRendering bool `toml:"markdown_rendering"`
}

// ExportConfig contains transcript export configuration.
type ExportConfig struct {
	// Directory is where exported transcripts are written (empty = cwd)
	Directory string `toml:"directory"`
	// DefaultFormat is the export format when none is given: "markdown",
	// "json" or "html"
	DefaultFormat string `toml:"default_format"`
}

// Timeout returns the unary request timeout as a duration.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "http://127.0.0.1:8000/api",
			TimeoutSecs: 30,
			MaxRetries:  3,
		},
		UI: UIConfig{
			Theme:             "dark",
			CompactMode:       false,
			ShowTimestamps:    false,
			MarkdownRendering: true,
		},
		Export: ExportConfig{
			Directory:     "",
			DefaultFormat: "markdown",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the localmind configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".localmind"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to defaults
// when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFromPath(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file into cfg.
func LoadFromPath(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// Save saves the configuration to the default TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func Save(cfg *Config) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a TOML file at path.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# localmind configuration file\n")
	buf.WriteString("# Generated by localmind - edit with care\n\n")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS, VALIDATION, ENV OVERRIDES
// =============================================================================

// SetDefaults fills in any missing values with defaults.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = defaults.Server.MaxRetries
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.Export.DefaultFormat == "" {
		c.Export.DefaultFormat = defaults.Export.DefaultFormat
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Server.URL),
		}
	}

	if c.Server.TimeoutSecs < 0 {
		return ValidationError{Field: "server.timeout_secs", Message: "must be non-negative"}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		return ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		}
	}

	validFormats := map[string]bool{"markdown": true, "json": true, "html": true}
	if !validFormats[strings.ToLower(c.Export.DefaultFormat)] {
		return ValidationError{
			Field:   "export.default_format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: markdown, json, html", c.Export.DefaultFormat),
		}
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - LOCALMIND_SERVER_URL: overrides server.url
//   - LOCALMIND_THEME: overrides ui.theme
//   - LOCALMIND_EXPORT_DIR: overrides export.directory
func (c *Config) ApplyEnvOverrides() {
	if serverURL := os.Getenv("LOCALMIND_SERVER_URL"); serverURL != "" {
		c.Server.URL = serverURL
	}
	if theme := os.Getenv("LOCALMIND_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if dir := os.Getenv("LOCALMIND_EXPORT_DIR"); dir != "" {
		c.Export.Directory = dir
	}
}
