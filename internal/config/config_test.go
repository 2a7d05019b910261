// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.Server.URL)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "markdown", cfg.Export.DefaultFormat)
	assert.True(t, cfg.UI.MarkdownRendering)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
url = "http://10.0.0.5:9000/api"
timeout_secs = 10

[ui]
theme = "light"
compact_mode = true
`), 0o600))

	cfg := Default()
	require.NoError(t, LoadFromPath(cfg, path))
	cfg.SetDefaults()

	assert.Equal(t, "http://10.0.0.5:9000/api", cfg.Server.URL)
	assert.Equal(t, 10, cfg.Server.TimeoutSecs)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.UI.CompactMode)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, 3, cfg.Server.MaxRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad url", func(c *Config) { c.Server.URL = "not a url" }, "server.url"},
		{"missing scheme", func(c *Config) { c.Server.URL = "localhost:8000" }, "server.url"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
		{"bad format", func(c *Config) { c.Export.DefaultFormat = "pdf" }, "export.default_format"},
		{"negative timeout", func(c *Config) { c.Server.TimeoutSecs = -1 }, "server.timeout_secs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("LOCALMIND_SERVER_URL", "http://192.168.1.2:8000/api")
	t.Setenv("LOCALMIND_THEME", "auto")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "http://192.168.1.2:8000/api", cfg.Server.URL)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Server.URL = "http://example.test/api"
	cfg.UI.ShowTimestamps = true
	require.NoError(t, SaveToPath(cfg, path))

	loaded := Default()
	require.NoError(t, LoadFromPath(loaded, path))

	assert.Equal(t, cfg.Server.URL, loaded.Server.URL)
	assert.True(t, loaded.UI.ShowTimestamps)

	// Config may hold server addresses on private networks; keep it private.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
