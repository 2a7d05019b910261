// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/localmind/localmind-tui/internal/ui/components"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View assembles the full screen.
func (m Model) View() string {
	if !m.ready || m.width == 0 {
		return "loading..."
	}

	if m.showKB {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.kbView.View(),
			m.statusBar.View(),
		)
	}

	if m.showPicker {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.pickerView())
	}

	if m.showHelp {
		help := components.RenderHelp(m.theme, m.registry, m.width)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, help)
	}

	if m.confirm.Active() {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	sections := []string{
		m.headerView(),
		m.viewport.View(),
		m.inputView(),
		m.statusBar.View(),
	}
	return strings.Join(sections, "\n")
}

func (m Model) headerView() string {
	title := "localmind"
	if conv, ok := m.convs.Get(m.activeConversationID()); ok {
		title = conv.Title
	}
	return m.theme.Header.Width(m.width).Render(title)
}

func (m Model) inputView() string {
	line := m.input.View()
	if m.spinner.IsActive() {
		line = m.spinner.View()
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(line)
}
