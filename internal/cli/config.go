// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration inspection and editing from the command line.
package cli

import (
	"fmt"
	"strconv"

	"github.com/localmind/localmind-tui/internal/config"
)

// HandleConfig dispatches the config subcommands: show, set, path.
func HandleConfig(args *Args) {
	switch args.Subcommand {
	case "", "show":
		configShow()
	case "set":
		if len(args.Raw) < 3 {
			exitErr("usage: localmind config set <key> <value>")
		}
		configSet(args.Raw[1], args.Raw[2])
	case "path":
		path, err := config.Path()
		if err != nil {
			exitErr("%v", err)
		}
		fmt.Println(path)
	default:
		exitErr("unknown config subcommand %q (show, set, path)", args.Subcommand)
	}
}

func configShow() {
	cfg := loadConfig()

	fmt.Printf("server.url            %s\n", cfg.Server.URL)
	fmt.Printf("server.timeout_secs   %d\n", cfg.Server.TimeoutSecs)
	fmt.Printf("server.max_retries    %d\n", cfg.Server.MaxRetries)
	fmt.Printf("ui.theme              %s\n", cfg.UI.Theme)
	fmt.Printf("ui.compact_mode       %t\n", cfg.UI.CompactMode)
	fmt.Printf("ui.show_timestamps    %t\n", cfg.UI.ShowTimestamps)
	fmt.Printf("ui.markdown_rendering %t\n", cfg.UI.MarkdownRendering)
	fmt.Printf("export.directory      %s\n", cfg.Export.Directory)
	fmt.Printf("export.default_format %s\n", cfg.Export.DefaultFormat)
}

func configSet(key, value string) {
	cfg := loadConfig()

	switch key {
	case "server.url":
		cfg.Server.URL = value
	case "server.timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			exitErr("%s must be an integer", key)
		}
		cfg.Server.TimeoutSecs = n
	case "server.max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			exitErr("%s must be an integer", key)
		}
		cfg.Server.MaxRetries = n
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.compact_mode", "ui.show_timestamps", "ui.markdown_rendering":
		b, err := strconv.ParseBool(value)
		if err != nil {
			exitErr("%s must be true or false", key)
		}
		switch key {
		case "ui.compact_mode":
			cfg.UI.CompactMode = b
		case "ui.show_timestamps":
			cfg.UI.ShowTimestamps = b
		case "ui.markdown_rendering":
			cfg.UI.MarkdownRendering = b
		}
	case "export.directory":
		cfg.Export.Directory = value
	case "export.default_format":
		cfg.Export.DefaultFormat = value
	default:
		exitErr("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		exitErr("%v", err)
	}

	path, err := config.Path()
	if err != nil {
		exitErr("%v", err)
	}
	if err := config.SaveToPath(cfg, path); err != nil {
		exitErr("%v", err)
	}
	fmt.Printf("%s = %s\n", key, value)
}
