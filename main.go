// localmind - a terminal client for a local retrieval-augmented chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/cli"
	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/store"
	"github.com/localmind/localmind-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming updates
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdVersion:
		cli.HandleVersion()
	case cli.CmdHelp:
		cli.HandleHelp()
	}
}

func runTUI(args *cli.Args) {
	// The TUI owns the terminal; keep the standard logger quiet unless
	// asked for diagnostics.
	if args.Verbose {
		if f, err := logFile(); err == nil {
			log.SetOutput(f)
			defer f.Close()
		}
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}

	client := api.NewClient(api.ClientConfig{
		BaseURL:    cfg.Server.URL,
		Timeout:    cfg.Server.Timeout(),
		MaxRetries: cfg.Server.MaxRetries,
	})

	var state store.Store
	if path, err := store.DefaultPath(); err == nil {
		if s, err := store.Open(path); err == nil {
			state = s
			defer s.Close()
		}
	}
	if state == nil {
		state = store.NewMemoryStore()
	}

	turns := controller.NewTurnController(client)
	convs := controller.NewConversationController(client, turns, state)
	knowledge := controller.NewKnowledgeController(client, state)

	m := chat.New(cfg, client, convs, knowledge, turns)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	programMu.Lock()
	programRef = program
	programMu.Unlock()

	// Stream fragments arrive outside the Bubble Tea loop; forward them
	// into it so the transcript repaints as text streams in.
	turns.SetNotify(func(conversationID string) {
		programMu.Lock()
		p := programRef
		programMu.Unlock()
		if p != nil {
			p.Send(chat.TurnUpdatedMsg{ConversationID: conversationID})
		}
	})

	// Live config reload: edits to the config file show up without a
	// restart.
	if path, err := config.Path(); err == nil {
		watcher, werr := config.NewWatcher(path, func(*config.Config) {
			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p != nil {
				p.Send(chat.ConfigReloadedMsg{})
			}
		})
		if werr == nil {
			if werr := watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func logFile() (*os.File, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return os.OpenFile(dir+"/localmind.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}
