// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/controller"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/upload <path>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument

	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeConversation          // Conversation id or list index
	ArgTypeGroup                 // Document group name or id
	ArgTypeFile                  // File path
	ArgTypeEnum                  // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Category:    "Navigation",
		Handler:     HandleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit localmind",
		Category:    "Navigation",
		Handler:     HandleQuit,
	})

	r.Register(&Command{
		Name:        "/groups",
		Aliases:     []string{"/kb"},
		Description: "Open the knowledge base view",
		Category:    "Navigation",
		Handler:     HandleGroups,
	})

	// Conversation commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Create a new conversation",
		Usage:       "/new <title> [general|rag|strict_rag]",
		Args: []ArgDef{
			{Name: "title", Required: true, Type: ArgTypeString, Description: "Conversation title, optionally followed by a query mode"},
		},
		Category: "Conversation",
		Handler:  HandleNew,
	})

	r.Register(&Command{
		Name:        "/switch",
		Aliases:     []string{"/sw"},
		Description: "Switch to another conversation",
		Usage:       "/switch [number|id]",
		Args: []ArgDef{
			{Name: "conversation", Required: false, Type: ArgTypeConversation, Description: "List number or conversation id; omit for a picker"},
		},
		Category: "Conversation",
		Handler:  HandleSwitch,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/del"},
		Description: "Delete the active conversation",
		Category:    "Conversation",
		Handler:     HandleDelete,
	})

	r.Register(&Command{
		Name:        "/cancel",
		Description: "Stop the reply currently streaming",
		Category:    "Conversation",
		Handler:     HandleCancel,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Export the active conversation to a file",
		Usage:       "/export [markdown|json|html]",
		Args: []ArgDef{
			{Name: "format", Required: false, Type: ArgTypeEnum, Values: []string{"markdown", "md", "json", "html"}, Description: "Export format"},
		},
		Category: "Conversation",
		Handler:  HandleExport,
	})

	// Knowledge base commands
	r.Register(&Command{
		Name:        "/group",
		Description: "Create a document group",
		Usage:       "/group <name>",
		Args: []ArgDef{
			{Name: "name", Required: true, Type: ArgTypeString, Description: "Group name"},
		},
		Category: "Knowledge Base",
		Handler:  HandleGroup,
	})

	r.Register(&Command{
		Name:        "/docs",
		Description: "List documents in the selected group",
		Category:    "Knowledge Base",
		Handler:     HandleDocs,
	})

	r.Register(&Command{
		Name:        "/upload",
		Aliases:     []string{"/up"},
		Description: "Upload a file into the selected group",
		Usage:       "/upload <path>",
		Args: []ArgDef{
			{Name: "path", Required: true, Type: ArgTypeFile, Description: "Local file path"},
		},
		Category: "Knowledge Base",
		Handler:  HandleUpload,
	})

	r.Register(&Command{
		Name:        "/train",
		Description: "Train embeddings for the selected group",
		Category:    "Knowledge Base",
		Handler:     HandleTrain,
	})

	// Settings commands
	r.Register(&Command{
		Name:        "/refresh",
		Aliases:     []string{"/r"},
		Description: "Refresh conversations and groups from the backend",
		Category:    "Settings",
		Handler:     HandleRefresh,
	})
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// All fields are optional and may be nil; handlers check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Conversations manages the conversation list and selection
	Conversations *controller.ConversationController

	// Knowledge manages document groups and documents
	Knowledge *controller.KnowledgeController

	// Turns runs streaming chat turns
	Turns *controller.TurnController
}

// NewContext creates a command context with the given dependencies.
func NewContext(cfg *config.Config, convs *controller.ConversationController, kb *controller.KnowledgeController, turns *controller.TurnController) *Context {
	return &Context{
		Config:        cfg,
		Conversations: convs,
		Knowledge:     kb,
		Turns:         turns,
	}
}
