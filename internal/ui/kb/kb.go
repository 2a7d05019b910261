// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kb provides the knowledge base view: document groups, their
// documents, uploads, and training.
package kb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/ui/components"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

const opTimeout = 30 * time.Second

// =============================================================================
// MESSAGES
// =============================================================================

// CloseMsg asks the parent view to return to the chat.
type CloseMsg struct{}

// ActionMsg reports the outcome of a knowledge base action.
type ActionMsg struct {
	Text  string
	IsErr bool
}

// refreshedMsg signals that groups or documents were re-fetched.
type refreshedMsg struct{}

// promptKind selects what the inline prompt is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptNewGroup
	promptUpload
)

// focusArea selects which list has keyboard focus.
type focusArea int

const (
	focusGroups focusArea = iota
	focusDocs
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the knowledge base view.
type Model struct {
	theme *styles.Theme
	ctrl  *controller.KnowledgeController

	cursor    int
	docCursor int
	focus     focusArea

	prompt    textinput.Model
	prompting promptKind
	confirm   components.Confirm
	width     int
	height    int
}

// New creates the knowledge base view.
func New(theme *styles.Theme, ctrl *controller.KnowledgeController) Model {
	prompt := textinput.New()
	prompt.CharLimit = 0
	return Model{
		theme:   theme,
		ctrl:    ctrl,
		prompt:  prompt,
		confirm: components.NewConfirm(theme),
	}
}

// SyncCursor moves the group cursor to the controller's selected group,
// so the highlighted row and the selection agree when the view opens.
func (m *Model) SyncCursor() {
	selected := m.ctrl.Selected()
	for i, g := range m.ctrl.Groups() {
		if g.ID == selected {
			m.cursor = i
			return
		}
	}
	m.cursor = 0
}

// SetSize updates the layout dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// selectedGroup returns the group under the cursor, or nil.
func (m *Model) selectedGroup() *model.DocumentGroup {
	groups := m.ctrl.Groups()
	if m.cursor < 0 || m.cursor >= len(groups) {
		return nil
	}
	return &groups[m.cursor]
}

// Update handles key input for the knowledge base view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirm.Active() {
			return m, m.confirm.HandleKey(msg)
		}
		if m.prompting != promptNone {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	case ActionMsg:
		// Deletes shrink the cached lists.
		m.clampCursors()
		return m, nil
	case refreshedMsg:
		m.clampCursors()
		return m, nil
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = promptNone
		m.prompt.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		kind := m.prompting
		m.prompting = promptNone
		m.prompt.Blur()
		m.prompt.SetValue("")
		if value == "" {
			return m, nil
		}
		switch kind {
		case promptNewGroup:
			return m, m.createGroup(value)
		case promptUpload:
			return m, m.upload(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return CloseMsg{} }

	case "up", "k":
		if m.focus == focusGroups && m.cursor > 0 {
			m.cursor--
			m.docCursor = 0
		} else if m.focus == focusDocs && m.docCursor > 0 {
			m.docCursor--
		}
		return m, nil

	case "down", "j":
		if m.focus == focusGroups {
			if m.cursor < len(m.ctrl.Groups())-1 {
				m.cursor++
				m.docCursor = 0
			}
		} else if m.docCursor < len(m.currentDocs())-1 {
			m.docCursor++
		}
		return m, nil

	case "tab":
		if m.focus == focusGroups {
			m.focus = focusDocs
		} else {
			m.focus = focusGroups
		}
		return m, nil

	case "enter":
		group := m.selectedGroup()
		if group == nil {
			return m, nil
		}
		m.ctrl.Select(group.ID)
		return m, m.refreshDocs(group.ID)

	case "n":
		m.prompting = promptNewGroup
		m.prompt.Placeholder = "Group name"
		m.prompt.Focus()
		return m, textinput.Blink

	case "u":
		if m.selectedGroup() == nil {
			return m, report("select a group before uploading", true)
		}
		m.prompting = promptUpload
		m.prompt.Placeholder = "Path to file (.pdf, .txt, .doc)"
		m.prompt.Focus()
		return m, textinput.Blink

	case "t":
		group := m.selectedGroup()
		if group == nil {
			return m, report("select a group to train", true)
		}
		return m, m.train(group.ID, group.Name)

	case "d":
		if m.focus != focusDocs {
			return m, nil
		}
		docs := m.currentDocs()
		if m.docCursor < 0 || m.docCursor >= len(docs) {
			return m, nil
		}
		doc := docs[m.docCursor]
		m.confirm.Ask("Delete document \""+doc.Name+"\"?", m.deleteDoc(doc))
		return m, nil

	case "r":
		return m, m.refreshAll()
	}
	return m, nil
}

func (m *Model) currentDocs() []model.Document {
	group := m.selectedGroup()
	if group == nil {
		return nil
	}
	return m.ctrl.Documents(group.ID)
}

func (m *Model) clampCursors() {
	if n := len(m.ctrl.Groups()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if n := len(m.currentDocs()); m.docCursor >= n {
		m.docCursor = n - 1
	}
	if m.docCursor < 0 {
		m.docCursor = 0
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

func report(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return ActionMsg{Text: text, IsErr: isErr} }
}

func (m Model) createGroup(name string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		group, err := ctrl.CreateGroup(ctx, name)
		if err != nil {
			return ActionMsg{Text: fmt.Sprintf("group create failed: %v", err), IsErr: true}
		}
		if group == nil {
			return ActionMsg{Text: "backend unreachable, group not created", IsErr: true}
		}
		return ActionMsg{Text: fmt.Sprintf("group %q created", group.Name)}
	}
}

func (m Model) upload(path string) tea.Cmd {
	ctrl := m.ctrl
	group := m.selectedGroup()
	if group == nil {
		return report("select a group before uploading", true)
	}
	groupID := group.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		doc := ctrl.Upload(ctx, groupID, path)
		if doc == nil {
			return ActionMsg{Text: fmt.Sprintf("upload of %s failed", path), IsErr: true}
		}
		return ActionMsg{Text: fmt.Sprintf("uploaded %s", doc.Name)}
	}
}

func (m Model) train(groupID, name string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if !ctrl.Train(ctx, groupID) {
			return ActionMsg{Text: fmt.Sprintf("training request for %q rejected", name), IsErr: true}
		}
		return ActionMsg{Text: fmt.Sprintf("training %q", name)}
	}
}

func (m Model) deleteDoc(doc model.Document) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if !ctrl.DeleteDocument(ctx, doc.GroupID, doc.ID) {
			return ActionMsg{Text: fmt.Sprintf("delete of %s rejected", doc.Name), IsErr: true}
		}
		return ActionMsg{Text: fmt.Sprintf("deleted %s", doc.Name)}
	}
}

func (m Model) refreshDocs(groupID string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		ctrl.RefreshDocuments(ctx, groupID)
		return refreshedMsg{}
	}
}

func (m Model) refreshAll() tea.Cmd {
	ctrl := m.ctrl
	group := m.selectedGroup()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		ctrl.RefreshGroups(ctx)
		if group != nil {
			ctrl.RefreshDocuments(ctx, group.ID)
		}
		return refreshedMsg{}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the knowledge base screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.OverlayTitle.Render("Knowledge Base"))
	b.WriteString("\n\n")

	groups := m.ctrl.Groups()
	if len(groups) == 0 {
		b.WriteString(m.theme.ListMeta.Render("No document groups yet. Press n to create one."))
		b.WriteString("\n")
	}

	selectedID := m.ctrl.Selected()
	for i, g := range groups {
		line := g.Name
		switch {
		case m.ctrl.TrainingRequested(g.ID):
			line += " " + m.theme.BadgeStrict.Render("[training]")
		case g.Trained():
			line += " " + m.theme.Healthy.Render("[trained]")
		default:
			line += " " + m.theme.ListMeta.Render("[untrained]")
		}
		if g.ID == selectedID {
			line += m.theme.ListMeta.Render(" *")
		}

		style := m.theme.ListItem
		if i == m.cursor && m.focus == focusGroups {
			style = m.theme.ListItemSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if group := m.selectedGroup(); group != nil {
		b.WriteString("\n")
		b.WriteString(m.theme.ListTitle.Render("Documents in " + group.Name))
		b.WriteString("\n")

		docs := m.ctrl.Documents(group.ID)
		if len(docs) == 0 {
			b.WriteString(m.theme.ListMeta.Render("  none (press u to upload, enter to fetch)"))
			b.WriteString("\n")
		}
		for i, doc := range docs {
			line := fmt.Sprintf("%s (%s)", doc.Name, doc.Format)
			style := m.theme.ListItem
			if i == m.docCursor && m.focus == focusDocs {
				style = m.theme.ListItemSelected
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.confirm.Active():
		b.WriteString(m.confirm.View())
	case m.prompting != promptNone:
		b.WriteString(m.prompt.View())
	default:
		b.WriteString(m.theme.ShortcutDesc.Render(
			"enter select  n new  u upload  t train  d delete doc  tab focus  r refresh  esc back"))
	}
	return b.String()
}
