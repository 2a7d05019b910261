// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for localmind.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Plain   bool // Disable markdown rendering and color
	Mode    string
	Group   string

	// Command-specific
	Query      string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `localmind - terminal client for a local retrieval-augmented chat backend

Usage:
  localmind                   Start the TUI (default)
  localmind ask "question"    Ask a single question and exit
  localmind chat              Interactive chat in the terminal
  localmind status, s         Show backend status
  localmind config [show|set|path]  Configuration
  localmind version           Show version
  localmind help              Show this help

Ask/chat flags:
  --mode general|rag|strict_rag   Query mode (default: general)
  --group NAME                    Document group for retrieval modes
  --plain                         No markdown rendering, plain output

Examples:
  localmind ask "summarize the onboarding doc" --mode rag --group handbook
  localmind config set server.url http://127.0.0.1:8000/api
`

// Parse reads os.Args and returns the command plus parsed arguments.
func Parse() (Command, *Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses a raw argument list.
func ParseArgs(raw []string) (Command, *Args) {
	args := &Args{}

	// Pull out flags first so the command word can appear anywhere.
	var positional []string
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		switch {
		case arg == "--quiet" || arg == "-q":
			args.Quiet = true
		case arg == "--verbose" || arg == "-v":
			args.Verbose = true
		case arg == "--plain":
			args.Plain = true
		case arg == "--mode" && i+1 < len(raw):
			args.Mode = raw[i+1]
			i++
		case strings.HasPrefix(arg, "--mode="):
			args.Mode = strings.TrimPrefix(arg, "--mode=")
		case arg == "--group" && i+1 < len(raw):
			args.Group = raw[i+1]
			i++
		case strings.HasPrefix(arg, "--group="):
			args.Group = strings.TrimPrefix(arg, "--group=")
		default:
			positional = append(positional, arg)
		}
	}

	if len(positional) == 0 {
		return CmdTUI, args
	}

	cmd := positional[0]
	rest := positional[1:]
	args.Raw = rest
	if len(rest) > 0 {
		args.Subcommand = rest[0]
	}

	switch cmd {
	case "ask":
		args.Query = strings.Join(rest, " ")
		return CmdAsk, args
	case "chat":
		return CmdChat, args
	case "status", "s":
		return CmdStatus, args
	case "config":
		return CmdConfig, args
	case "version", "--version", "-V":
		return CmdVersion, args
	case "help", "--help", "-h":
		return CmdHelp, args
	default:
		// Unrecognized word: treat the whole line as an ask query.
		args.Query = strings.Join(positional, " ")
		return CmdAsk, args
	}
}

// HandleVersion prints version information.
func HandleVersion() {
	fmt.Printf("localmind %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints usage.
func HandleHelp() {
	fmt.Print(usageText)
}
