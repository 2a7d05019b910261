// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/localmind/localmind-tui/internal/model"
)

// refreshTranscript re-renders the active conversation into the
// viewport and follows the tail while a reply streams.
func (m *Model) refreshTranscript() {
	if m.viewport.Width == 0 {
		return
	}

	active := m.activeConversationID()
	if active == "" {
		m.viewport.SetContent(m.emptyState())
		return
	}

	msgs := m.turns.Messages(active)
	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript(msgs))
	if wasAtBottom || m.turns.Processing(active) {
		m.viewport.GotoBottom()
	}
}

func (m *Model) emptyState() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("localmind"),
		m.theme.HeaderSubtitle.Render("chat with your documents"),
		"",
		m.theme.ShortcutDesc.Render("Type a message to start a conversation."),
		m.theme.ShortcutDesc.Render("/help lists commands, ctrl+g opens the knowledge base."),
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderTranscript(msgs []model.Message) string {
	if len(msgs) == 0 {
		return m.theme.ListMeta.Render("\n  No messages yet.")
	}

	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 && !m.cfg.UI.CompactMode {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderMessage(msg model.Message) string {
	label := m.theme.UserLabel
	body := m.theme.UserText
	if msg.Sender == model.SenderAssistant {
		label = m.theme.AssistantLabel
		body = m.theme.AssistantText
	}

	header := label.Render(msg.Sender.DisplayName())
	if m.cfg.UI.ShowTimestamps && !msg.CreatedAt.IsZero() {
		header += " " + m.theme.Timestamp.Render(msg.CreatedAt.Local().Format("15:04"))
	}

	text := msg.Text
	if text == "" {
		// Streaming placeholder before the first fragment arrives.
		text = m.theme.ListMeta.Render("...")
	} else if msg.Sender == model.SenderAssistant {
		text = m.renderMarkdown(text)
	}

	width := m.viewport.Width - 4
	if width < 10 {
		width = 10
	}
	return header + "\n" + body.Width(width).Render(strings.TrimRight(text, "\n"))
}

// renderMarkdown renders assistant replies through glamour when enabled.
// Raw text passes through untouched on renderer errors, so a reply never
// disappears because of bad markup.
func (m *Model) renderMarkdown(text string) string {
	if !m.cfg.UI.MarkdownRendering || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
