// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Backend status command.
package cli

import (
	"context"
	"fmt"

	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/store"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

// HandleStatus prints backend reachability and a summary of server state.
func HandleStatus(args *Args) {
	cfg := loadConfig()
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout())
	defer cancel()

	fmt.Printf("server      %s\n", client.BaseURL())

	conversations := client.ListConversations(ctx)
	reachable := client.Degraded() == 0

	if SupportsColor() {
		if reachable {
			fmt.Printf("backend     %s\n", styles.RenderSuccess("reachable"))
		} else {
			fmt.Printf("backend     %s\n", styles.RenderError("unreachable"))
		}
	} else {
		if reachable {
			fmt.Println("backend     reachable")
		} else {
			fmt.Println("backend     unreachable")
		}
	}

	if !reachable {
		return
	}

	groups := client.ListGroups(ctx)
	trained := 0
	for _, g := range groups {
		if g.Trained() {
			trained++
		}
	}

	fmt.Printf("chats       %d\n", len(conversations))
	fmt.Printf("groups      %d (%d trained)\n", len(groups), trained)

	if args.Verbose {
		if path, err := config.Path(); err == nil {
			fmt.Printf("config      %s\n", path)
		}
		if path, err := store.DefaultPath(); err == nil {
			fmt.Printf("state       %s\n", path)
		}
	}
}
