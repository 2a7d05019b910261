// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/util"
)

// =============================================================================
// CONVERSATION PICKER
// =============================================================================

// The picker is a modal list of conversations, opened with ctrl+p or
// /switch without arguments. Enter activates the highlighted
// conversation, d deletes it after the usual confirmation.

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	if len(m.convs.List()) == 0 {
		return m.showStatus("no conversations yet", false)
	}
	m.showPicker = true
	m.pickerCursor = 0

	// Start on the active conversation so enter is a no-op switch.
	active := m.activeConversationID()
	for i, conv := range m.convs.List() {
		if conv.ID == active {
			m.pickerCursor = i
			break
		}
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.convs.List()

	switch msg.String() {
	case "esc", "q", "ctrl+p":
		m.showPicker = false
		return m, nil

	case "up", "k":
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
		return m, nil

	case "down", "j":
		if m.pickerCursor < len(convs)-1 {
			m.pickerCursor++
		}
		return m, nil

	case "enter":
		if m.pickerCursor < 0 || m.pickerCursor >= len(convs) {
			return m, nil
		}
		id := convs[m.pickerCursor].ID
		m.showPicker = false
		m.convs.SetActive(id)
		return m.switchConversation(id)

	case "d":
		if m.pickerCursor < 0 || m.pickerCursor >= len(convs) {
			return m, nil
		}
		conv := convs[m.pickerCursor]
		m.showPicker = false
		m.confirm.Ask("Delete conversation \""+conv.Title+"\"?", m.deleteConversation(conv.ID))
		return m, nil
	}
	return m, nil
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Conversations"))
	b.WriteString("\n\n")

	active := m.activeConversationID()
	for i, conv := range m.convs.List() {
		line := util.TruncateWidth(conv.Title, 48)
		if conv.Mode != model.ModeGeneral {
			line += " " + m.theme.ModeBadge(conv.Mode)
		}
		if m.turns.Processing(conv.ID) {
			line += " " + m.theme.Spinner.Render("~")
		}
		if conv.ID == active {
			line += m.theme.ListMeta.Render(" *")
		}

		style := m.theme.ListItem
		if i == m.pickerCursor {
			style = m.theme.ListItemSelected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutDesc.Render("enter switch  d delete  esc back"))
	return m.theme.OverlayBox.Render(b.String())
}
