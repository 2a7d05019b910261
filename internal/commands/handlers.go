// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/export"
	"github.com/localmind/localmind-tui/internal/model"
)

// opTimeout bounds every unary backend call started from a command.
const opTimeout = 30 * time.Second

func statusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func errorCmd(format string, args ...any) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: fmt.Sprintf(format, args...), IsError: true} }
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp shows the help overlay.
func HandleHelp(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return ShowHelpMsg{} }
}

// HandleQuit exits the application.
func HandleQuit(_ *Context, _ []string) tea.Cmd {
	return tea.Quit
}

// HandleGroups opens the knowledge base view.
func HandleGroups(_ *Context, _ []string) tea.Cmd {
	return func() tea.Msg { return OpenKnowledgeBaseMsg{} }
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

// HandleNew creates a conversation and makes it active.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	if ctx.Conversations == nil {
		return errorCmd("not connected")
	}
	// A trailing token that names a query mode is the mode; everything
	// before it is the title. Unquoted multi-word titles stay usable.
	mode := model.ModeGeneral
	title := strings.Join(args, " ")
	if len(args) > 1 {
		if parsed, err := model.ParseQueryMode(args[len(args)-1]); err == nil {
			mode = parsed
			title = strings.Join(args[:len(args)-1], " ")
		}
	}

	// Retrieval modes need at least one group to retrieve from.
	var groupIDs []string
	if mode.RequiresGroups() {
		if ctx.Knowledge == nil {
			return errorCmd("%s mode needs a document group", mode)
		}
		selected := ctx.Knowledge.Selected()
		if selected == "" {
			return errorCmd("%s mode needs a document group; select one with /groups", mode)
		}
		groupIDs = []string{selected}
	}

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		conv, err := ctx.Conversations.Create(opCtx, title, mode, groupIDs)
		if err != nil {
			return StatusMsg{Text: fmt.Sprintf("create failed: %v", err), IsError: true}
		}
		if conv == nil {
			return StatusMsg{Text: "backend unreachable, conversation not created", IsError: true}
		}
		return ConversationSwitchedMsg{ID: conv.ID}
	}
}

// HandleSwitch activates a conversation by list number or id.
func HandleSwitch(ctx *Context, args []string) tea.Cmd {
	if ctx.Conversations == nil {
		return errorCmd("not connected")
	}
	if len(args) == 0 {
		return errorCmd("usage: /switch <number|id>")
	}
	target := args[0]
	list := ctx.Conversations.List()

	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(list) {
			return errorCmd("no conversation %d (have %d)", n, len(list))
		}
		id := list[n-1].ID
		ctx.Conversations.SetActive(id)
		return func() tea.Msg { return ConversationSwitchedMsg{ID: id} }
	}

	for _, conv := range list {
		if conv.ID == target || strings.HasPrefix(conv.ID, target) {
			ctx.Conversations.SetActive(conv.ID)
			id := conv.ID
			return func() tea.Msg { return ConversationSwitchedMsg{ID: id} }
		}
	}
	return errorCmd("no conversation matching %q", target)
}

// HandleDelete removes the active conversation. Any reply still streaming
// for it is cancelled first.
func HandleDelete(ctx *Context, _ []string) tea.Cmd {
	if ctx.Conversations == nil {
		return errorCmd("not connected")
	}
	id := ctx.Conversations.Active()
	if id == "" {
		return errorCmd("no active conversation")
	}
	title := id
	if conv, ok := ctx.Conversations.Get(id); ok {
		title = conv.Title
	}

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if !ctx.Conversations.Delete(opCtx, id) {
			return StatusMsg{Text: fmt.Sprintf("delete of %q rejected by backend", title), IsError: true}
		}
		return ConversationDeletedMsg{ID: id}
	}
}

// HandleCancel stops the reply streaming in the active conversation.
func HandleCancel(ctx *Context, _ []string) tea.Cmd {
	if ctx.Conversations == nil || ctx.Turns == nil {
		return errorCmd("not connected")
	}
	id := ctx.Conversations.Active()
	if id == "" {
		return errorCmd("no active conversation")
	}
	if !ctx.Turns.Processing(id) {
		return statusCmd("nothing streaming")
	}
	ctx.Turns.CancelTurn(id)
	return statusCmd("reply cancelled")
}

// HandleExport writes the active conversation transcript to a file.
func HandleExport(ctx *Context, args []string) tea.Cmd {
	if ctx.Conversations == nil || ctx.Turns == nil {
		return errorCmd("not connected")
	}
	id := ctx.Conversations.Active()
	if id == "" {
		return errorCmd("no active conversation")
	}
	conv, ok := ctx.Conversations.Get(id)
	if !ok {
		return errorCmd("no active conversation")
	}

	name := ""
	dir := "."
	if ctx.Config != nil {
		name = ctx.Config.Export.DefaultFormat
		if ctx.Config.Export.Directory != "" {
			dir = ctx.Config.Export.Directory
		}
	}
	if len(args) > 0 {
		name = args[0]
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return errorCmd("unknown format %q (markdown, json, html)", name)
	}

	msgs := ctx.Turns.Messages(conv.ID)
	return func() tea.Msg {
		path, err := export.Write(dir, format, conv, msgs)
		if err != nil {
			return StatusMsg{Text: fmt.Sprintf("export failed: %v", err), IsError: true}
		}
		return ExportedMsg{Path: path}
	}
}

// =============================================================================
// KNOWLEDGE BASE HANDLERS
// =============================================================================

// HandleGroup creates a document group and selects it.
func HandleGroup(ctx *Context, args []string) tea.Cmd {
	if ctx.Knowledge == nil {
		return errorCmd("not connected")
	}
	name := strings.TrimSpace(strings.Join(args, " "))

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		group, err := ctx.Knowledge.CreateGroup(opCtx, name)
		if err != nil {
			return StatusMsg{Text: fmt.Sprintf("group create failed: %v", err), IsError: true}
		}
		if group == nil {
			return StatusMsg{Text: "backend unreachable, group not created", IsError: true}
		}
		return StatusMsg{Text: fmt.Sprintf("group %q created", group.Name)}
	}
}

// HandleDocs lists documents in the selected group.
func HandleDocs(ctx *Context, _ []string) tea.Cmd {
	if ctx.Knowledge == nil {
		return errorCmd("not connected")
	}
	id := ctx.Knowledge.Selected()
	if id == "" {
		return errorCmd("no group selected; open /groups first")
	}
	name := id
	if group, ok := ctx.Knowledge.Group(id); ok {
		name = group.Name
	}

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		ctx.Knowledge.RefreshDocuments(opCtx, id)
		docs := ctx.Knowledge.Documents(id)
		if len(docs) == 0 {
			return StatusMsg{Text: fmt.Sprintf("%s: no documents", name)}
		}
		names := make([]string, len(docs))
		for i, doc := range docs {
			names[i] = doc.Name
		}
		return StatusMsg{Text: fmt.Sprintf("%s: %s", name, strings.Join(names, ", "))}
	}
}

// HandleUpload sends a local file into the selected group.
func HandleUpload(ctx *Context, args []string) tea.Cmd {
	if ctx.Knowledge == nil {
		return errorCmd("not connected")
	}
	groupID := ctx.Knowledge.Selected()
	if groupID == "" {
		return errorCmd("no group selected; open /groups first")
	}
	path := args[0]

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		doc := ctx.Knowledge.Upload(opCtx, groupID, path)
		if doc == nil {
			return StatusMsg{Text: fmt.Sprintf("upload of %s failed", path), IsError: true}
		}
		return StatusMsg{Text: fmt.Sprintf("uploaded %s", doc.Name)}
	}
}

// HandleTrain requests embedding training for the selected group.
func HandleTrain(ctx *Context, _ []string) tea.Cmd {
	if ctx.Knowledge == nil {
		return errorCmd("not connected")
	}
	groupID := ctx.Knowledge.Selected()
	if groupID == "" {
		return errorCmd("no group selected; open /groups first")
	}
	name := groupID
	if group, ok := ctx.Knowledge.Group(groupID); ok {
		name = group.Name
	}

	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if !ctx.Knowledge.Train(opCtx, groupID) {
			return StatusMsg{Text: fmt.Sprintf("training request for %q rejected", name), IsError: true}
		}
		return StatusMsg{Text: fmt.Sprintf("training %q", name)}
	}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// HandleRefresh re-fetches conversations and groups from the backend.
func HandleRefresh(ctx *Context, _ []string) tea.Cmd {
	return func() tea.Msg {
		opCtx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if ctx.Conversations != nil {
			ctx.Conversations.Refresh(opCtx)
		}
		if ctx.Knowledge != nil {
			ctx.Knowledge.RefreshGroups(opCtx)
		}
		return RefreshedMsg{}
	}
}
