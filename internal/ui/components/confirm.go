// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/localmind/localmind-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRM DIALOG
// =============================================================================

// Confirm is a yes/no prompt for destructive actions.
type Confirm struct {
	theme    *styles.Theme
	question string
	active   bool
	onYes    tea.Cmd
}

// NewConfirm creates an inactive confirm dialog.
func NewConfirm(theme *styles.Theme) Confirm {
	return Confirm{theme: theme}
}

// Ask activates the dialog with a question and the command to run on yes.
func (c *Confirm) Ask(question string, onYes tea.Cmd) {
	c.question = question
	c.onYes = onYes
	c.active = true
}

// Active reports whether the dialog is showing.
func (c *Confirm) Active() bool {
	return c.active
}

// HandleKey consumes a key press while active. It returns the command to
// run on confirmation, or nil. "y" confirms; anything else dismisses.
func (c *Confirm) HandleKey(msg tea.KeyMsg) tea.Cmd {
	if !c.active {
		return nil
	}
	c.active = false
	onYes := c.onYes
	c.onYes = nil

	switch msg.String() {
	case "y", "Y":
		return onYes
	default:
		return nil
	}
}

// View renders the dialog.
func (c *Confirm) View() string {
	if !c.active {
		return ""
	}
	body := c.theme.OverlayTitle.Render("Confirm") + "\n\n" +
		c.question + "\n\n" +
		c.theme.ConfirmYes.Render("y") + c.theme.ConfirmNo.Render(" yes   ") +
		c.theme.ConfirmNo.Render("any other key: no")
	return c.theme.OverlayBox.Render(body)
}
