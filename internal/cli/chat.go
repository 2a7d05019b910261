// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive line-mode chat without the full TUI.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/config"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	c.loadHistory()
	return c
}

func (c *ChatCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// saveHistory persists command history with owner-only permissions.
func (c *ChatCLI) saveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT LOOP
// =============================================================================

// HandleChat runs a line-based chat session against the backend.
func HandleChat(args *Args) {
	if !IsInteractive() {
		exitErr("chat needs a terminal; use 'localmind ask' for pipes")
	}

	cfg := loadConfig()
	client := newClient(cfg)

	mode, err := resolveMode(args.Mode)
	if err != nil {
		exitErr("%v", err)
	}

	setupCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout())
	groupIDs, err := resolveGroup(setupCtx, client, mode, args.Group)
	if err != nil {
		cancel()
		exitErr("%v", err)
	}

	title := "chat " + time.Now().Format("2006-01-02 15:04")
	conv := client.CreateConversation(setupCtx, title, mode, groupIDs)
	cancel()
	if conv == nil {
		exitErr("backend unreachable at %s", client.BaseURL())
	}

	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		fmt.Printf("localmind chat (%s mode), /quit to exit\n", mode.DisplayName())
	}

	for {
		line, err := input.ReadInput("you> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Println()
				return
			}
			// EOF (Ctrl+D) or terminal error ends the session.
			fmt.Println()
			return
		}

		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "/quit", "/exit", "/q":
			return
		}

		if err := streamReply(client, conv.ID, text); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// streamReply sends one message and prints the reply as it streams.
// Ctrl+C cancels the stream and returns to the prompt.
func streamReply(client *api.Client, conversationID, text string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Print("\n")
	_, err := client.SendMessage(ctx, conversationID, text, nil, func(fragment string) {
		fmt.Print(fragment)
	})
	fmt.Print("\n\n")

	if api.IsCancelled(err) {
		fmt.Println("(cancelled)")
		return nil
	}
	return err
}
