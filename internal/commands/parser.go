// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"
)

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the outcome of parsing an input line.
type ParseResult struct {
	// IsCommand indicates the input starts with "/"
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the name as typed (e.g., "/help")
	CommandName string

	// Args are the parsed arguments
	Args []string

	// RawInput is the original input
	RawInput string

	// RawArgs is everything after the command name
	RawArgs string

	// Error describes a parse failure
	Error error
}

// =============================================================================
// PARSER
// =============================================================================

// Parser parses input lines into commands and arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser backed by the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse analyzes an input line. Lines that don't start with "/" are plain
// chat messages and come back with IsCommand false.
func (p *Parser) Parse(input string) *ParseResult {
	result := &ParseResult{RawInput: input}

	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(trimmed)
	if len(parts) == 0 {
		result.Error = fmt.Errorf("empty command")
		return result
	}

	result.CommandName = strings.ToLower(parts[0])
	result.Args = parts[1:]
	if idx := strings.Index(trimmed, " "); idx >= 0 {
		result.RawArgs = strings.TrimSpace(trimmed[idx+1:])
	}

	cmd := p.registry.Get(result.CommandName)
	if cmd == nil {
		result.Error = fmt.Errorf("unknown command: %s", result.CommandName)
		return result
	}
	result.Command = cmd

	if err := ValidateArgs(cmd, result.Args); err != nil {
		result.Error = err
	}
	return result
}

// splitCommandLine splits a line into tokens, honoring double and single
// quotes so arguments can contain spaces. A backslash escapes the next
// character outside single quotes.
func splitCommandLine(line string) []string {
	var tokens []string
	var current strings.Builder
	var inQuote rune
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && inQuote != '\'':
			escaped = true
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case r == ' ' || r == '\t':
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes an argument that failed validation.
type ValidationError struct {
	Command string
	Arg     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Command, e.Arg, e.Message)
}

// ValidateArgs checks provided arguments against a command's definitions.
// Extra arguments beyond the defined ones are allowed; multi-word titles
// arrive as separate tokens when unquoted.
func ValidateArgs(cmd *Command, args []string) error {
	required := 0
	for _, def := range cmd.Args {
		if def.Required {
			required++
		}
	}
	if len(args) < required {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		return &ValidationError{
			Command: cmd.Name,
			Arg:     cmd.Args[len(args)].Name,
			Message: fmt.Sprintf("missing required argument (usage: %s)", usage),
		}
	}

	for i, def := range cmd.Args {
		if i >= len(args) || def.Type != ArgTypeEnum {
			continue
		}
		ok := false
		for _, v := range def.Values {
			if strings.EqualFold(args[i], v) {
				ok = true
				break
			}
		}
		if !ok {
			return &ValidationError{
				Command: cmd.Name,
				Arg:     def.Name,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(def.Values, ", ")),
			}
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// IsCommand reports whether the input looks like a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ExtractCommandName returns the command name from an input line, or ""
// if the line is not a command.
func ExtractCommandName(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return ""
	}
	if idx := strings.IndexAny(trimmed, " \t"); idx >= 0 {
		return strings.ToLower(trimmed[:idx])
	}
	return strings.ToLower(trimmed)
}

// GetPartialCommand returns the partial command name being typed, for
// completion. Returns "" once a full command and a space are present.
func GetPartialCommand(input string) string {
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	if strings.ContainsAny(input, " \t") {
		return ""
	}
	return strings.ToLower(input)
}
