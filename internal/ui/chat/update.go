// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/commands"
	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/ui/components"
	"github.com/localmind/localmind-tui/internal/ui/kb"
)

// Update routes messages to the right part of the interface.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Command results
	case commands.StatusMsg:
		return m.showStatus(msg.Text, msg.IsError)
	case commands.ShowHelpMsg:
		m.showHelp = true
		return m, nil
	case commands.OpenKnowledgeBaseMsg:
		m.showKB = true
		m.kbView.SyncCursor()
		return m, nil
	case commands.ConversationSwitchedMsg:
		return m.switchConversation(msg.ID)
	case commands.ConversationDeletedMsg:
		m.syncStatusBar()
		m.refreshTranscript()
		return m.showStatus("conversation deleted", false)
	case commands.ExportedMsg:
		return m.showStatus("exported to "+msg.Path, false)
	case commands.RefreshedMsg:
		m.syncStatusBar()
		m.refreshTranscript()
		return m.showStatus("refreshed", false)

	// Knowledge base view results
	case kb.CloseMsg:
		m.showKB = false
		return m, nil
	case kb.ActionMsg:
		var cmd tea.Cmd
		m.kbView, cmd = m.kbView.Update(msg)
		mm, statusCmd := m.showStatus(msg.Text, msg.IsErr)
		return mm, tea.Batch(cmd, statusCmd)

	// Streaming lifecycle
	case TurnUpdatedMsg:
		if msg.ConversationID == m.activeConversationID() {
			m.refreshTranscript()
		}
		m.syncStatusBar()
		return m, nil
	case TurnFinishedMsg:
		return m.finishTurn(msg)

	// Data lifecycle
	case InitialDataMsg:
		m.ready = true
		m.syncStatusBar()
		m.refreshTranscript()
		if msg.RestoredConversation == "" && len(m.convs.List()) == 0 {
			return m.showStatus("no conversations yet; type a message to start one", false)
		}
		return m, nil
	case HistoryLoadedMsg:
		if msg.ConversationID == m.activeConversationID() {
			m.refreshTranscript()
		}
		return m, nil
	case ConfigReloadedMsg:
		m.syncStatusBar()
		return m.showStatus("configuration reloaded", false)

	case clearStatusMsg:
		if msg.setAt.Equal(m.statusSetAt) {
			m.statusBar.ClearMessage()
		}
		return m, nil
	}

	// Spinner ticks and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal layers eat keys first.
	if m.confirm.Active() {
		return m, m.confirm.HandleKey(msg)
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.showKB {
		var cmd tea.Cmd
		m.kbView, cmd = m.kbView.Update(msg)
		return m, cmd
	}
	if m.showPicker {
		return m.handlePickerKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+g":
		m.showKB = true
		m.kbView.SyncCursor()
		return m, nil

	case "ctrl+p":
		return m.openPicker()

	case "esc":
		active := m.activeConversationID()
		if active != "" && m.turns.Processing(active) {
			m.turns.CancelTurn(active)
			return m.showStatus("reply cancelled", false)
		}
		return m, nil

	case "pgup":
		m.viewport.HalfViewUp()
		return m, nil
	case "pgdown":
		m.viewport.HalfViewDown()
		return m, nil

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles enter: run a command or send a chat message.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.input.SetValue("")

	result := m.parser.Parse(line)
	if result.IsCommand {
		if result.Error != nil {
			return m.showStatus(result.Error.Error(), true)
		}
		if result.Command.Name == "/delete" {
			return m.confirmDelete(result)
		}
		if result.Command.Name == "/switch" && len(result.Args) == 0 {
			return m.openPicker()
		}
		return m, result.Command.Handler(m.cmdCtx, result.Args)
	}

	return m.sendMessage(line)
}

// confirmDelete interposes a yes/no prompt before conversation deletion.
func (m Model) confirmDelete(result *commands.ParseResult) (tea.Model, tea.Cmd) {
	id := m.convs.Active()
	if id == "" {
		return m.showStatus("no active conversation", true)
	}
	title := id
	if conv, ok := m.convs.Get(id); ok {
		title = conv.Title
	}
	m.confirm.Ask("Delete conversation \""+title+"\"?", result.Command.Handler(m.cmdCtx, result.Args))
	return m, nil
}

// sendMessage starts a streaming turn, creating a conversation first if
// none is active.
func (m Model) sendMessage(text string) (tea.Model, tea.Cmd) {
	active := m.activeConversationID()
	if active == "" {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Server.Timeout())
		defer cancel()

		conv, err := m.convs.Create(ctx, model.TitleFromText(text), model.ModeGeneral, nil)
		if err != nil {
			return m.showStatus(err.Error(), true)
		}
		if conv == nil {
			return m.showStatus("backend unreachable", true)
		}
		active = conv.ID
	}

	// One exchange at a time; a second send while streaming is dropped
	// with a hint instead of an error.
	if m.turns.Processing(active) {
		return m.showStatus("a reply is already streaming", false)
	}

	m.syncStatusBar()
	return m, tea.Batch(m.sendTurn(active, text), m.spinner.Start())
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	vpHeight := msg.Height - headerHeight - inputHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = newViewport(msg.Width, vpHeight)
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.Width = msg.Width - 6
	m.statusBar.SetWidth(msg.Width)
	m.kbView.SetSize(msg.Width, msg.Height)
	m.renderer = newRenderer(msg.Width)
	m.refreshTranscript()
	return m, nil
}

func (m Model) switchConversation(id string) (tea.Model, tea.Cmd) {
	m.showKB = false
	m.syncStatusBar()
	m.refreshTranscript()
	if m.turns.Loaded(id) {
		return m, nil
	}
	return m, m.loadHistory(id)
}

func (m Model) finishTurn(msg TurnFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.ConversationID == m.activeConversationID() {
		m.refreshTranscript()
	}
	m.spinner.Stop()
	m.syncStatusBar()
	if msg.Err != nil {
		return m.showStatus(msg.Err.Error(), true)
	}
	return m, nil
}

// showStatus puts a transient message in the status bar.
func (m Model) showStatus(text string, isErr bool) (Model, tea.Cmd) {
	m.statusBar.SetMessage(text, isErr)
	m.statusSetAt = time.Now()
	return m, clearStatusAfter(m.statusSetAt)
}

// syncStatusBar refreshes the title, mode badge, health counter, and
// streaming state from the controllers.
func (m *Model) syncStatusBar() {
	m.statusBar.SetDegraded(m.client.Degraded())

	active := m.activeConversationID()
	if active == "" {
		m.statusBar.SetConversation("", model.ModeGeneral)
		m.statusBar.SetStatus(components.StatusReady)
		return
	}

	if conv, ok := m.convs.Get(active); ok {
		m.statusBar.SetConversation(conv.Title, conv.Mode)
	}
	if m.turns.Processing(active) {
		m.statusBar.SetStatus(components.StatusStreaming)
	} else {
		m.statusBar.SetStatus(components.StatusReady)
	}
}
