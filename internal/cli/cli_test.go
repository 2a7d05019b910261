// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs_DefaultIsTUI(t *testing.T) {
	cmd, _ := ParseArgs(nil)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want Command
	}{
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"status", []string{"status"}, CmdStatus},
		{"status short", []string{"s"}, CmdStatus},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := ParseArgs(tt.raw)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestParseArgs_AskJoinsQuery(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "is", "this"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is this", args.Query)
}

func TestParseArgs_BareQuestionBecomesAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"what", "is", "this"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what is this", args.Query)
}

func TestParseArgs_Flags(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "--mode", "rag", "--group=handbook", "--plain", "hello"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "rag", args.Mode)
	assert.Equal(t, "handbook", args.Group)
	assert.True(t, args.Plain)
	assert.Equal(t, "hello", args.Query)
}

func TestParseArgs_FlagsBeforeCommand(t *testing.T) {
	cmd, args := ParseArgs([]string{"--quiet", "chat", "--mode=general"})
	assert.Equal(t, CmdChat, cmd)
	assert.True(t, args.Quiet)
	assert.Equal(t, "general", args.Mode)
}

func TestParseArgs_ConfigSubcommand(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "ui.theme", "light"})
	assert.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "set", args.Subcommand)
	assert.Equal(t, []string{"set", "ui.theme", "light"}, args.Raw)
}
