// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the wire representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// placeholderPrefix marks locally generated identifiers so a message can
// be recognized as optimistic before the server confirms it.
const placeholderPrefix = "local-"

// Message is one chat message. Within a conversation, display order is
// by CreatedAt ascending.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Text           string    `json:"text"`
	Sender         Sender    `json:"sender"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewPlaceholder creates an optimistic message with a locally generated
// identifier. It exists only until reconciled to a server id or rolled
// back on failure.
func NewPlaceholder(conversationID, text string, sender Sender) Message {
	return Message{
		ID:             placeholderPrefix + uuid.NewString(),
		ConversationID: conversationID,
		Text:           text,
		Sender:         sender,
		CreatedAt:      time.Now(),
	}
}

// IsPlaceholder reports whether the message still carries a locally
// generated identifier.
func (m Message) IsPlaceholder() bool {
	return strings.HasPrefix(m.ID, placeholderPrefix)
}

// Preview returns a single-line truncated preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	text := strings.ReplaceAll(m.Text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// SortMessages orders messages by creation timestamp ascending, the
// display order invariant for a conversation.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
