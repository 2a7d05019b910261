// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"strings"
	"time"

	"github.com/localmind/localmind-tui/internal/util"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the client view of a server-owned conversation record.
// GroupIDs is only meaningful for RAG modes; mode "general" never carries
// required group associations.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Mode      QueryMode `json:"conv_type"`
	GroupIDs  []string  `json:"groupIds,omitempty"`
}

// TitleFromText derives a conversation title from the first message.
func TitleFromText(text string) string {
	title := strings.TrimSpace(text)
	if title == "" {
		return "New chat"
	}
	return util.TruncateRunes(title, 40)
}

// SortConversations orders conversations by last-updated timestamp
// descending. The sort is recomputed client-side on every read rather
// than trusted from server order.
func SortConversations(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}
