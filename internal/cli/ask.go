// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/util"
)

// markdownRenderer lazily creates the glamour renderer for terminal output.
func markdownRenderer(width int) *glamour.TermRenderer {
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// HandleAsk sends one question, prints the reply, and exits.
// The backend only answers inside a conversation, so a throwaway one is
// created and deleted around the exchange.
func HandleAsk(args *Args) {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		exitErr("ask requires a question")
	}

	cfg := loadConfig()
	client := newClient(cfg)

	mode, err := resolveMode(args.Mode)
	if err != nil {
		exitErr("%v", err)
	}

	// Ctrl+C cancels the stream instead of killing the process mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	groupIDs, err := resolveGroup(ctx, client, mode, args.Group)
	if err != nil {
		exitErr("%v", err)
	}

	title := "ask: " + util.TruncateRunes(query, 40)
	conv := client.CreateConversation(ctx, title, mode, groupIDs)
	if conv == nil {
		exitErr("backend unreachable at %s", client.BaseURL())
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client.DeleteConversation(cleanupCtx, conv.ID)
	}()

	renderPretty := !args.Plain && cfg.UI.MarkdownRendering && IsOutputTerminal()

	var accumulated strings.Builder
	onChunk := func(fragment string) {
		if renderPretty {
			accumulated.WriteString(fragment)
		} else {
			fmt.Print(fragment)
		}
	}

	_, err = client.SendMessage(ctx, conv.ID, query, nil, onChunk)
	if err != nil && !api.IsCancelled(err) {
		exitErr("%v", err)
	}

	if renderPretty {
		text := accumulated.String()
		if r := markdownRenderer(TerminalWidth()); r != nil {
			if out, rerr := r.Render(text); rerr == nil {
				fmt.Print(out)
				return
			}
		}
		fmt.Println(text)
		return
	}
	fmt.Println()
}
