// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/model"
)

// loadConfig loads configuration, falling back to defaults on error.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}
	return cfg
}

// newClient builds an API client from configuration.
func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(api.ClientConfig{
		BaseURL:    cfg.Server.URL,
		Timeout:    cfg.Server.Timeout(),
		MaxRetries: cfg.Server.MaxRetries,
	})
}

// resolveMode parses a --mode flag, defaulting to general.
func resolveMode(raw string) (model.QueryMode, error) {
	if strings.TrimSpace(raw) == "" {
		return model.ModeGeneral, nil
	}
	return model.ParseQueryMode(raw)
}

// resolveGroup finds a document group by name or id for retrieval modes.
// Returns nil when the mode needs no group.
func resolveGroup(ctx context.Context, client *api.Client, mode model.QueryMode, name string) ([]string, error) {
	if !mode.RequiresGroups() {
		return nil, nil
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%s mode requires --group", mode)
	}

	groups := client.ListGroups(ctx)
	for _, g := range groups {
		if g.ID == name || strings.EqualFold(g.Name, name) {
			return []string{g.ID}, nil
		}
	}
	return nil, fmt.Errorf("no document group named %q", name)
}

// exitErr prints an error and exits nonzero.
func exitErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
