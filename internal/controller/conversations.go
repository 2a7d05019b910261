// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/store"
)

// =============================================================================
// CONVERSATION CONTROLLER
// =============================================================================

// ErrGroupsRequired indicates the chosen query mode needs at least one
// knowledge base group.
var ErrGroupsRequired = errors.New("this mode requires at least one document group")

// ErrEmptyTitle indicates a conversation create with a blank title.
var ErrEmptyTitle = errors.New("conversation title is empty")

// ConversationAPI is the slice of the API client the conversation
// controller needs. All operations are the resilient tier: they return
// empty results instead of errors when the backend is unreachable.
type ConversationAPI interface {
	ListConversations(ctx context.Context) []model.Conversation
	GetConversation(ctx context.Context, id string) *model.Conversation
	CreateConversation(ctx context.Context, title string, mode model.QueryMode, groupIDs []string) *model.Conversation
	DeleteConversation(ctx context.Context, id string) bool
}

// ConversationController manages the conversation list and the active
// conversation, persisting the selection between runs.
type ConversationController struct {
	client ConversationAPI
	turns  *TurnController
	state  store.Store

	mu     sync.Mutex
	list   []model.Conversation
	active string
}

// NewConversationController creates a conversation controller. turns may be
// nil when no streaming is involved, as in the one-shot CLI commands.
func NewConversationController(client ConversationAPI, turns *TurnController, state store.Store) *ConversationController {
	return &ConversationController{
		client: client,
		turns:  turns,
		state:  state,
	}
}

// Refresh replaces the local list with the backend's, newest first. When
// the backend is unreachable the list goes empty rather than stale, which
// matches what the user would see on a fresh start.
func (cc *ConversationController) Refresh(ctx context.Context) {
	convs := cc.client.ListConversations(ctx)
	model.SortConversations(convs)

	cc.mu.Lock()
	cc.list = convs
	if cc.active != "" && cc.find(cc.active) == nil {
		cc.active = ""
	}
	cc.mu.Unlock()
}

// List returns a snapshot of the conversation list, newest first. The
// order is recomputed on every read so local updates to a conversation's
// timestamp move it without waiting for a refresh.
func (cc *ConversationController) List() []model.Conversation {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	out := make([]model.Conversation, len(cc.list))
	copy(out, cc.list)
	model.SortConversations(out)
	return out
}

// find returns the list entry with the given id. Caller holds cc.mu.
func (cc *ConversationController) find(id string) *model.Conversation {
	for i := range cc.list {
		if cc.list[i].ID == id {
			return &cc.list[i]
		}
	}
	return nil
}

// Get returns the conversation with the given id from the local list.
func (cc *ConversationController) Get(id string) (model.Conversation, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if conv := cc.find(id); conv != nil {
		return *conv, true
	}
	return model.Conversation{}, false
}

// Create creates a conversation on the backend and makes it active. Modes
// that retrieve from the knowledge base require at least one group.
func (cc *ConversationController) Create(ctx context.Context, title string, mode model.QueryMode, groupIDs []string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !mode.Valid() {
		return nil, model.ErrUnknownMode
	}
	if mode.RequiresGroups() && len(groupIDs) == 0 {
		return nil, ErrGroupsRequired
	}

	conv := cc.client.CreateConversation(ctx, title, mode, groupIDs)
	if conv == nil {
		return nil, nil
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now()
	}

	cc.mu.Lock()
	cc.list = append([]model.Conversation{*conv}, cc.list...)
	cc.mu.Unlock()

	cc.SetActive(conv.ID)
	return conv, nil
}

// Delete removes a conversation. Any in-flight turn is cancelled and its
// local state dropped before the backend delete, so a streaming reply never
// lands in a conversation that no longer exists. Returns false when the
// backend rejected the delete; the local row stays in that case.
func (cc *ConversationController) Delete(ctx context.Context, id string) bool {
	if cc.turns != nil {
		cc.turns.Forget(id)
	}

	wasActive := cc.Active() == id

	if !cc.client.DeleteConversation(ctx, id) {
		return false
	}

	// Re-fetch instead of splicing the row out locally, so server-side
	// cascade effects of the delete show up immediately.
	cc.Refresh(ctx)

	if wasActive && cc.state != nil {
		cc.state.Clear(store.KeyLastConversation)
	}
	return true
}

// Active returns the active conversation id, empty when none.
func (cc *ConversationController) Active() string {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.active
}

// SetActive marks a conversation as active and persists the selection.
func (cc *ConversationController) SetActive(id string) {
	cc.mu.Lock()
	cc.active = id
	cc.mu.Unlock()

	if cc.state != nil {
		cc.state.Set(store.KeyLastConversation, id)
	}
}

// RestoreActive re-activates the conversation from the previous run when it
// still exists in the refreshed list. Returns the restored id, or empty.
func (cc *ConversationController) RestoreActive() string {
	if cc.state == nil {
		return ""
	}
	id, err := cc.state.Get(store.KeyLastConversation)
	if err != nil {
		return ""
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.find(id) == nil {
		return ""
	}
	cc.active = id
	return id
}
