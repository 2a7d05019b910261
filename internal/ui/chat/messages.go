// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main chat view for the TUI.
//
// This file defines the Bubble Tea message types used by the chat
// interface. Turn progress arrives from outside the program loop: the
// turn controller's notify hook calls tea.Program.Send with
// TurnUpdatedMsg, so fragments repaint the view as they stream in.
package chat

import "time"

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// TurnUpdatedMsg signals that a conversation's transcript changed:
// placeholders appended, a fragment arrived, or ids were reconciled.
type TurnUpdatedMsg struct {
	ConversationID string
}

// TurnFinishedMsg signals that a turn ended, successfully or not.
// Err is nil on success and on user cancellation.
type TurnFinishedMsg struct {
	ConversationID string
	Err            error
}

// =============================================================================
// DATA MESSAGES
// =============================================================================

// InitialDataMsg reports the startup fetch of conversations and groups.
type InitialDataMsg struct {
	RestoredConversation string
	RestoredGroup        string
}

// HistoryLoadedMsg reports that a conversation's history fetch finished.
type HistoryLoadedMsg struct {
	ConversationID string
}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// clearStatusMsg removes a transient status bar message after a delay.
type clearStatusMsg struct {
	setAt time.Time
}

// ConfigReloadedMsg signals that the config file changed on disk.
type ConfigReloadedMsg struct{}
