// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTurnInProgress indicates the conversation already has a turn
	// streaming; a second send is rejected rather than queued.
	ErrTurnInProgress = errors.New("a message is already being processed")

	// ErrEmptyMessage indicates the user text was empty or whitespace.
	ErrEmptyMessage = errors.New("message is empty")
)

// =============================================================================
// TURN CONTROLLER
// =============================================================================

// Chatter is the slice of the API client the turn controller needs.
type Chatter interface {
	SendMessage(ctx context.Context, conversationID, text string, onHeaders api.HeadersCallback, onChunk api.StreamCallback) (*api.StreamResult, error)
	FetchMessages(ctx context.Context, conversationID string) []model.Message
}

// NotifyFunc is called after every transcript mutation with the affected
// conversation id. Called with the controller lock released.
type NotifyFunc func(conversationID string)

// TurnController owns the transcripts of all open conversations and runs
// streaming chat turns against them. Turns are keyed by conversation id, so
// a reply keeps streaming into its own transcript while the user views a
// different conversation.
type TurnController struct {
	client Chatter
	notify NotifyFunc

	mu    sync.Mutex
	convs map[string]*convState
}

// convState is the per-conversation transcript plus in-flight turn state.
type convState struct {
	messages []model.Message
	loaded   bool

	// current is the in-flight turn, nil when idle. Set together with the
	// placeholder append under the controller lock, so the in-progress
	// check and the optimistic append are one atomic step.
	current *turn
}

// turn tracks one streaming exchange. Its message ids start as placeholder
// ids and are rewritten in place once the server headers arrive. A turn
// that has been cancelled keeps its handle so the unwinding stream can
// still reconcile, but it no longer counts as in progress.
type turn struct {
	userID      string
	assistantID string
	cancel      context.CancelFunc
	cancelled   bool
}

// NewTurnController creates a turn controller over the given client.
func NewTurnController(client Chatter) *TurnController {
	return &TurnController{
		client: client,
		convs:  make(map[string]*convState),
	}
}

// SetNotify registers a callback invoked after each transcript change.
func (tc *TurnController) SetNotify(fn NotifyFunc) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.notify = fn
}

func (tc *TurnController) state(conversationID string) *convState {
	st, ok := tc.convs[conversationID]
	if !ok {
		st = &convState{}
		tc.convs[conversationID] = st
	}
	return st
}

func (tc *TurnController) notifyChanged(conversationID string) {
	tc.mu.Lock()
	fn := tc.notify
	tc.mu.Unlock()
	if fn != nil {
		fn(conversationID)
	}
}

// Messages returns a snapshot of the conversation transcript.
func (tc *TurnController) Messages(conversationID string) []model.Message {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	st := tc.state(conversationID)
	out := make([]model.Message, len(st.messages))
	copy(out, st.messages)
	return out
}

// Processing reports whether the conversation has a turn in flight. A
// cancelled turn stops counting immediately, before its stream unwinds.
func (tc *TurnController) Processing(conversationID string) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	st := tc.state(conversationID)
	return st.current != nil && !st.current.cancelled
}

// Loaded reports whether the transcript has been fetched at least once.
func (tc *TurnController) Loaded(conversationID string) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.state(conversationID).loaded
}

// LoadHistory fetches the conversation history from the backend and replaces
// the local transcript. Skipped while a turn is in flight so streaming
// output is never clobbered by a stale fetch.
func (tc *TurnController) LoadHistory(ctx context.Context, conversationID string) {
	tc.mu.Lock()
	if tc.state(conversationID).current != nil {
		tc.mu.Unlock()
		return
	}
	tc.mu.Unlock()

	msgs := tc.client.FetchMessages(ctx, conversationID)

	tc.mu.Lock()
	st := tc.state(conversationID)
	if st.current != nil {
		// A turn started while the fetch was in flight; drop the result.
		tc.mu.Unlock()
		return
	}
	st.messages = msgs
	st.loaded = true
	tc.mu.Unlock()

	tc.notifyChanged(conversationID)
}

// SendTurn runs one full chat turn: it appends optimistic placeholder
// messages for the user text and the pending assistant reply, streams the
// reply into the assistant entry, and reconciles placeholder ids with the
// server-assigned ones. Blocks until the turn completes, fails, or is
// cancelled.
//
// Exactly one turn may be in flight per conversation; a concurrent send
// returns ErrTurnInProgress. The in-progress check and the placeholder
// append happen atomically before any network activity, so callers can
// render both placeholders immediately.
//
// On cancellation the partial reply is retained. On any other error both
// placeholders are rolled back. The in-progress flag is cleared and the
// cancel handle discarded on every path.
func (tc *TurnController) SendTurn(ctx context.Context, conversationID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	turnCtx, t, err := tc.beginTurn(ctx, conversationID, text)
	if err != nil {
		return err
	}

	tc.notifyChanged(conversationID)

	_, sendErr := tc.client.SendMessage(turnCtx, conversationID, text,
		func(r api.StreamResult) {
			// Server ids are known as soon as headers arrive; rewrite the
			// placeholders in place so every later fragment lands on a
			// message that already carries its final id.
			tc.adoptServerIDs(conversationID, t, r)
		},
		func(fragment string) {
			tc.appendFragment(conversationID, t, fragment)
			tc.notifyChanged(conversationID)
		})

	tc.endTurn(conversationID, t, sendErr)
	tc.notifyChanged(conversationID)

	if sendErr != nil && !api.IsCancelled(sendErr) {
		return sendErr
	}
	return nil
}

// beginTurn atomically checks the in-progress state, appends the two
// placeholder messages, and registers the new turn.
func (tc *TurnController) beginTurn(ctx context.Context, conversationID, text string) (context.Context, *turn, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	st := tc.state(conversationID)
	if st.current != nil && !st.current.cancelled {
		return nil, nil, ErrTurnInProgress
	}

	user := model.NewPlaceholder(conversationID, text, model.SenderUser)
	assistant := model.NewPlaceholder(conversationID, "", model.SenderAssistant)
	st.messages = append(st.messages, user, assistant)

	turnCtx, cancel := context.WithCancel(ctx)
	t := &turn{
		userID:      user.ID,
		assistantID: assistant.ID,
		cancel:      cancel,
	}
	st.current = t

	return turnCtx, t, nil
}

// adoptServerIDs rewrites the turn's placeholder ids to the server-assigned
// ones, preserving text and position. A missing header leaves that
// placeholder id unchanged.
func (tc *TurnController) adoptServerIDs(conversationID string, t *turn, result api.StreamResult) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	st := tc.state(conversationID)
	for i := range st.messages {
		switch st.messages[i].ID {
		case t.userID:
			if result.UserMessageID != "" {
				st.messages[i].ID = result.UserMessageID
				t.userID = result.UserMessageID
			}
		case t.assistantID:
			if result.AssistantMessageID != "" {
				st.messages[i].ID = result.AssistantMessageID
				t.assistantID = result.AssistantMessageID
			}
		}
	}
}

// appendFragment appends a reply fragment to the turn's assistant entry.
func (tc *TurnController) appendFragment(conversationID string, t *turn, fragment string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	st := tc.state(conversationID)
	for i := range st.messages {
		if st.messages[i].ID == t.assistantID {
			st.messages[i].Text += fragment
			return
		}
	}
}

// endTurn finishes the turn: releases its context, deregisters it if it is
// still the current turn, and either keeps the exchanged messages (success
// and cancellation) or rolls back both placeholders (any other error).
func (tc *TurnController) endTurn(conversationID string, t *turn, sendErr error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	t.cancel()

	st := tc.state(conversationID)
	if st.current == t {
		st.current = nil
	}

	if sendErr == nil || api.IsCancelled(sendErr) {
		// Ids may still be placeholders if headers never arrived before
		// cancellation; the entries stay as-is either way.
		return
	}

	kept := st.messages[:0]
	for _, msg := range st.messages {
		if msg.ID == t.userID || msg.ID == t.assistantID {
			continue
		}
		kept = append(kept, msg)
	}
	st.messages = kept
}

// CancelTurn aborts the in-flight turn, if any. The in-progress state
// clears immediately without waiting for the stream goroutine to unwind, so
// the user can keep working; SendTurn finishes the reconciliation when the
// aborted stream returns.
func (tc *TurnController) CancelTurn(conversationID string) {
	tc.mu.Lock()
	st := tc.state(conversationID)
	var cancel context.CancelFunc
	if st.current != nil && !st.current.cancelled {
		st.current.cancelled = true
		cancel = st.current.cancel
	}
	tc.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	tc.notifyChanged(conversationID)
}

// Forget drops all local state for a conversation, cancelling any in-flight
// turn first. Used when the conversation is deleted.
func (tc *TurnController) Forget(conversationID string) {
	tc.CancelTurn(conversationID)

	tc.mu.Lock()
	delete(tc.convs, conversationID)
	tc.mu.Unlock()

	tc.notifyChanged(conversationID)
}
