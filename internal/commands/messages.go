// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// =============================================================================
// COMMAND RESULT MESSAGES
// =============================================================================
// Handlers run asynchronously as tea.Cmds and report back with these
// messages. The UI decides how to surface each one.

// StatusMsg carries a short status line for the status bar.
type StatusMsg struct {
	Text    string
	IsError bool
}

// ShowHelpMsg asks the UI to display the help overlay.
type ShowHelpMsg struct{}

// OpenKnowledgeBaseMsg asks the UI to open the knowledge base view.
type OpenKnowledgeBaseMsg struct{}

// ConversationSwitchedMsg reports that the active conversation changed.
type ConversationSwitchedMsg struct {
	ID string
}

// ConversationDeletedMsg reports that a conversation was removed.
type ConversationDeletedMsg struct {
	ID string
}

// ExportedMsg reports a finished export with the written path.
type ExportedMsg struct {
	Path string
}

// RefreshedMsg reports that conversations and groups were re-fetched.
type RefreshedMsg struct{}
