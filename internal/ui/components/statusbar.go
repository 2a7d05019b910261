// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/ui/styles"
	"github.com/localmind/localmind-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
// ACCESSIBILITY: distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar: active conversation, query mode
// badge, backend health, transient messages, and key hints.
type StatusBar struct {
	Title         string          // Active conversation title
	Mode          model.QueryMode // Active conversation's query mode
	Status        Status
	Degraded      int64  // Failed backend operations this session
	Message       string // Transient status message
	MessageIsErr  bool
	Width         int
	ShowShortcuts bool
	theme         *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Mode:          model.ModeGeneral,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetConversation updates the title and mode sections.
func (s *StatusBar) SetConversation(title string, mode model.QueryMode) {
	s.Title = title
	s.Mode = mode
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// SetDegraded updates the failed-operation counter display.
func (s *StatusBar) SetDegraded(count int64) {
	s.Degraded = count
}

// SetMessage shows a transient message in place of the key hints.
func (s *StatusBar) SetMessage(text string, isErr bool) {
	s.Message = text
	s.MessageIsErr = isErr
}

// ClearMessage removes the transient message.
func (s *StatusBar) ClearMessage() {
	s.Message = ""
	s.MessageIsErr = false
}

// View renders the status bar.
func (s *StatusBar) View() string {
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	parts := []string{s.theme.ModeBadge(s.Mode)}

	if s.Title != "" {
		title := s.Title
		if s.Width < 80 {
			title = util.TruncateWidth(title, 20)
		}
		parts = append(parts, s.theme.StatusMessage.Render(title))
	}

	if s.Degraded > 0 {
		parts = append(parts, s.theme.Degraded.Render(
			fmt.Sprintf("%s %d failed", styles.StatusIndicators.Warning, s.Degraded)))
	} else {
		parts = append(parts, s.theme.Healthy.Render(styles.StatusIndicators.Success))
	}

	parts = append(parts, s.statusSection())

	switch {
	case s.Message != "":
		style := s.theme.StatusMessage
		if s.MessageIsErr {
			style = s.theme.StatusError
		}
		parts = append(parts, style.Render(s.Message))
	case s.ShowShortcuts && s.Width >= 100:
		parts = append(parts, s.shortcutsSection())
	}

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, separator))
}

func (s *StatusBar) statusSection() string {
	style := s.theme.StatusMessage
	switch s.Status {
	case StatusError:
		style = s.theme.StatusError
	case StatusStreaming:
		style = s.theme.Spinner
	}
	return style.Render(s.Status.Icon() + " " + s.Status.String())
}

func (s *StatusBar) shortcutsSection() string {
	shortcuts := []struct{ key, desc string }{
		{"/", "command"},
		{"ctrl+g", "groups"},
		{"esc", "cancel"},
		{"ctrl+c", "quit"},
	}
	rendered := make([]string, len(shortcuts))
	for i, sc := range shortcuts {
		rendered[i] = s.theme.ShortcutKey.Render(sc.key) + " " + s.theme.ShortcutDesc.Render(sc.desc)
	}
	return strings.Join(rendered, "  ")
}
