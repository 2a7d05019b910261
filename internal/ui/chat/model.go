// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/commands"
	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/ui/components"
	"github.com/localmind/localmind-tui/internal/ui/kb"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

// statusDisplayTime is how long transient status messages stay visible.
const statusDisplayTime = 4 * time.Second

// Model is the root Bubble Tea model for the chat TUI.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	client *api.Client

	convs *controller.ConversationController
	kb    *controller.KnowledgeController
	turns *controller.TurnController

	registry *commands.Registry
	parser   *commands.Parser
	cmdCtx   *commands.Context

	viewport  viewport.Model
	input     textinput.Model
	statusBar *components.StatusBar
	spinner   components.Spinner
	confirm   components.Confirm
	kbView    kb.Model

	renderer *glamour.TermRenderer

	showHelp   bool
	showKB     bool
	showPicker bool
	ready      bool

	pickerCursor int
	width        int
	height       int

	// Set when the transient status message was last updated, so a stale
	// clear timer doesn't wipe a newer message.
	statusSetAt time.Time
}

// New creates the chat model with its dependencies wired.
func New(cfg *config.Config, client *api.Client, convs *controller.ConversationController, knowledge *controller.KnowledgeController, turns *controller.TurnController) Model {
	theme := styles.NewTheme(cfg.UI.Theme)
	registry := commands.NewRegistry()

	input := textinput.New()
	input.Placeholder = "Type a message, or / for commands"
	input.Prompt = theme.InputPrompt.Render("> ")
	input.CharLimit = 0
	input.Focus()

	return Model{
		theme:     theme,
		cfg:       cfg,
		client:    client,
		convs:     convs,
		kb:        knowledge,
		turns:     turns,
		registry:  registry,
		parser:    commands.NewParser(registry),
		cmdCtx:    commands.NewContext(cfg, convs, knowledge, turns),
		input:     input,
		statusBar: components.NewStatusBar(theme),
		spinner:   components.NewSpinner(theme, "Waiting for reply"),
		confirm:   components.NewConfirm(theme),
		kbView:    kb.New(theme, knowledge),
	}
}

// Init starts the initial backend fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadInitialData())
}

// loadInitialData fetches conversations and groups, then restores the
// last active selections from the state store.
func (m Model) loadInitialData() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Server.Timeout())
		defer cancel()

		m.convs.Refresh(ctx)
		m.kb.RefreshGroups(ctx)

		restored := m.convs.RestoreActive()
		if restored != "" {
			m.turns.LoadHistory(ctx, restored)
		}
		group := m.kb.RestoreSelected()

		return InitialDataMsg{
			RestoredConversation: restored,
			RestoredGroup:        group,
		}
	}
}

// loadHistory fetches a conversation's messages in the background.
func (m Model) loadHistory(conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Server.Timeout())
		defer cancel()

		m.turns.LoadHistory(ctx, conversationID)
		return HistoryLoadedMsg{ConversationID: conversationID}
	}
}

// sendTurn runs a full streaming exchange. Fragments repaint the view
// through the controller's notify hook; this command resolves when the
// turn ends.
func (m Model) sendTurn(conversationID, text string) tea.Cmd {
	return func() tea.Msg {
		err := m.turns.SendTurn(context.Background(), conversationID, text)
		return TurnFinishedMsg{ConversationID: conversationID, Err: err}
	}
}

// deleteConversation removes a conversation in the background. The
// controller cancels any in-flight turn first.
func (m Model) deleteConversation(conversationID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Server.Timeout())
		defer cancel()

		if !m.convs.Delete(ctx, conversationID) {
			return commands.StatusMsg{Text: "delete rejected by backend", IsError: true}
		}
		return commands.ConversationDeletedMsg{ID: conversationID}
	}
}

// clearStatusAfter schedules removal of the current status message.
func clearStatusAfter(setAt time.Time) tea.Cmd {
	return tea.Tick(statusDisplayTime, func(time.Time) tea.Msg {
		return clearStatusMsg{setAt: setAt}
	})
}

// activeConversationID returns the active conversation id, or "".
func (m *Model) activeConversationID() string {
	return m.convs.Active()
}

// newRenderer builds the glamour renderer for the current width.
func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap > 100 {
		wrap = 100
	}
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}
