// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainTextIsNotACommand(t *testing.T) {
	p := NewParser(NewRegistry())

	for _, input := range []string{"hello", "what is 2+2?", "  leading spaces", "a/b is not a command"} {
		result := p.Parse(input)
		assert.False(t, result.IsCommand, "input %q", input)
		assert.NoError(t, result.Error)
	}
}

func TestParse_KnownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/help")
	require.True(t, result.IsCommand)
	require.NoError(t, result.Error)
	require.NotNil(t, result.Command)
	assert.Equal(t, "/help", result.Command.Name)
	assert.Empty(t, result.Args)
}

func TestParse_Aliases(t *testing.T) {
	p := NewParser(NewRegistry())

	for _, alias := range []string{"/h", "/?", "/q", "/kb", "/sw 1", "/up notes.pdf"} {
		result := p.Parse(alias)
		require.True(t, result.IsCommand, "input %q", alias)
		assert.NoError(t, result.Error, "input %q", alias)
		assert.NotNil(t, result.Command, "input %q", alias)
	}
}

func TestParse_UnknownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/bogus")
	require.True(t, result.IsCommand)
	assert.Nil(t, result.Command)
	assert.ErrorContains(t, result.Error, "unknown command")
}

func TestParse_CaseInsensitiveName(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/HELP")
	require.NoError(t, result.Error)
	assert.Equal(t, "/help", result.CommandName)
}

func TestParse_ArgsAndRawArgs(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/new project notes rag")
	require.NoError(t, result.Error)
	assert.Equal(t, []string{"project", "notes", "rag"}, result.Args)
	assert.Equal(t, "project notes rag", result.RawArgs)
}

func TestParse_MissingRequiredArgument(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/upload")
	require.True(t, result.IsCommand)
	require.Error(t, result.Error)

	var verr *ValidationError
	require.ErrorAs(t, result.Error, &verr)
	assert.Equal(t, "/upload", verr.Command)
	assert.Equal(t, "path", verr.Arg)
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "/new title", []string{"/new", "title"}},
		{"double quotes", `/new "release notes" rag`, []string{"/new", "release notes", "rag"}},
		{"single quotes", "/upload 'my file.pdf'", []string{"/upload", "my file.pdf"}},
		{"escaped space", `/upload my\ file.pdf`, []string{"/upload", "my file.pdf"}},
		{"escaped quote", `/new \"quoted\"`, []string{"/new", `"quoted"`}},
		{"collapses whitespace", "/switch   3", []string{"/switch", "3"}},
		{"tabs", "/switch\t3", []string{"/switch", "3"}},
		{"empty quotes dropped", `/new ""`, []string{"/new"}},
		{"unterminated quote keeps rest", `/new "half open`, []string{"/new", "half open"}},
		{"trailing backslash literal", `/upload path\`, []string{"/upload", `path\`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitCommandLine(tt.input))
		})
	}
}

func TestValidateArgs_Enum(t *testing.T) {
	cmd := &Command{
		Name:  "/export",
		Usage: "/export [format]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"markdown", "json", "html"}},
		},
	}

	assert.NoError(t, ValidateArgs(cmd, nil))
	assert.NoError(t, ValidateArgs(cmd, []string{"json"}))
	assert.NoError(t, ValidateArgs(cmd, []string{"JSON"}))

	err := ValidateArgs(cmd, []string{"pdf"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "must be one of")
}

func TestIsCommand(t *testing.T) {
	assert.True(t, IsCommand("/help"))
	assert.True(t, IsCommand("  /help"))
	assert.False(t, IsCommand("help"))
	assert.False(t, IsCommand(""))
}

func TestExtractCommandName(t *testing.T) {
	assert.Equal(t, "/new", ExtractCommandName("/new title here"))
	assert.Equal(t, "/help", ExtractCommandName("/HELP"))
	assert.Equal(t, "", ExtractCommandName("plain text"))
}

func TestGetPartialCommand(t *testing.T) {
	assert.Equal(t, "/he", GetPartialCommand("/he"))
	assert.Equal(t, "", GetPartialCommand("/help "))
	assert.Equal(t, "", GetPartialCommand("not a command"))
}
