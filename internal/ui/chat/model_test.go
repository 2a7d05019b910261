// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/localmind-tui/internal/api"
	"github.com/localmind/localmind-tui/internal/config"
	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/model"
)

// fakeBackend implements controller.ConversationAPI and
// controller.Chatter for driving the model without a server.
type fakeBackend struct {
	convs   []model.Conversation
	created []string

	// When set, SendMessage signals started and then blocks on release,
	// for tests that need an exchange held open.
	started chan struct{}
	release chan struct{}
}

func (f *fakeBackend) ListConversations(ctx context.Context) []model.Conversation {
	return f.convs
}

func (f *fakeBackend) GetConversation(ctx context.Context, id string) *model.Conversation {
	for i := range f.convs {
		if f.convs[i].ID == id {
			return &f.convs[i]
		}
	}
	return nil
}

func (f *fakeBackend) CreateConversation(ctx context.Context, title string, mode model.QueryMode, groupIDs []string) *model.Conversation {
	conv := &model.Conversation{ID: "c" + title, Title: title, Mode: mode, UpdatedAt: time.Now()}
	f.convs = append(f.convs, *conv)
	f.created = append(f.created, title)
	return conv
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id string) bool { return true }

func (f *fakeBackend) SendMessage(ctx context.Context, conversationID, text string, onHeaders api.HeadersCallback, onChunk api.StreamCallback) (*api.StreamResult, error) {
	r := api.StreamResult{UserMessageID: "u1", AssistantMessageID: "a1"}
	if onHeaders != nil {
		onHeaders(r)
	}
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if onChunk != nil {
		onChunk("ok")
	}
	return &r, nil
}

func (f *fakeBackend) FetchMessages(ctx context.Context, conversationID string) []model.Message {
	return nil
}

func newTestModel(backend *fakeBackend) Model {
	cfg := config.Default()
	cfg.UI.MarkdownRendering = false
	turns := controller.NewTurnController(backend)
	convs := controller.NewConversationController(backend, turns, nil)
	knowledge := controller.NewKnowledgeController(nil, nil)
	client := api.NewClient(api.DefaultConfig())
	return New(cfg, client, convs, knowledge, turns)
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	mm, ok := next.(Model)
	require.True(t, ok)
	mm.ready = true
	return mm
}

func TestSubmit_UnknownCommandShowsError(t *testing.T) {
	m := sized(t, newTestModel(&fakeBackend{}))
	m.input.SetValue("/definitelynotacommand")

	next, cmd := m.submit()
	mm := next.(Model)

	require.NotNil(t, cmd)
	assert.True(t, mm.statusBar.MessageIsErr)
	assert.Contains(t, mm.statusBar.Message, "unknown command")
}

func TestSubmit_EmptyInputDoesNothing(t *testing.T) {
	m := sized(t, newTestModel(&fakeBackend{}))
	m.input.SetValue("   ")

	_, cmd := m.submit()
	assert.Nil(t, cmd)
}

func TestSendMessage_CreatesConversationWhenNoneActive(t *testing.T) {
	backend := &fakeBackend{}
	m := sized(t, newTestModel(backend))
	m.input.SetValue("hello there")

	_, cmd := m.submit()
	require.NotNil(t, cmd)

	require.Len(t, backend.created, 1)
	assert.Equal(t, "hello there", backend.created[0])
}

func TestClearStatus_StaleTimerIgnored(t *testing.T) {
	m := sized(t, newTestModel(&fakeBackend{}))

	next, _ := m.showStatus("first", false)
	firstSetAt := next.statusSetAt

	next, _ = next.showStatus("second", false)

	updated, _ := next.Update(clearStatusMsg{setAt: firstSetAt})
	mm := updated.(Model)
	assert.Equal(t, "second", mm.statusBar.Message)

	updated, _ = mm.Update(clearStatusMsg{setAt: mm.statusSetAt})
	mm = updated.(Model)
	assert.Empty(t, mm.statusBar.Message)
}

func TestTurnUpdated_OtherConversationKeepsViewport(t *testing.T) {
	backend := &fakeBackend{}
	m := sized(t, newTestModel(backend))

	// No active conversation; an update for some background stream must
	// not panic or clear anything.
	updated, cmd := m.Update(TurnUpdatedMsg{ConversationID: "elsewhere"})
	assert.Nil(t, cmd)
	_, ok := updated.(Model)
	assert.True(t, ok)
}

func TestHelpOverlayTogglesOff(t *testing.T) {
	m := sized(t, newTestModel(&fakeBackend{}))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	m = updated.(Model)
	m.showHelp = true

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.False(t, m.showHelp)
}

func TestPicker_SwitchesConversation(t *testing.T) {
	backend := &fakeBackend{convs: []model.Conversation{
		{ID: "c1", Title: "first"},
		{ID: "c2", Title: "second"},
	}}
	m := sized(t, newTestModel(backend))
	m.convs.Refresh(context.Background())
	m.convs.SetActive("c1")

	updated, _ := m.openPicker()
	mm := updated.(Model)
	require.True(t, mm.showPicker)
	assert.Equal(t, 0, mm.pickerCursor)

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	mm = updated.(Model)
	assert.Equal(t, 1, mm.pickerCursor)

	updated, _ = mm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	mm = updated.(Model)
	assert.False(t, mm.showPicker)
	assert.Equal(t, "c2", mm.convs.Active())
}

func TestPicker_EmptyListShowsStatus(t *testing.T) {
	m := sized(t, newTestModel(&fakeBackend{}))

	updated, cmd := m.openPicker()
	mm := updated.(Model)
	assert.False(t, mm.showPicker)
	require.NotNil(t, cmd)
	assert.Contains(t, mm.statusBar.Message, "no conversations")
}

func TestSendMessage_WhileStreamingShowsHintNotError(t *testing.T) {
	backend := &fakeBackend{
		convs:   []model.Conversation{{ID: "c1", Title: "busy"}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	m := sized(t, newTestModel(backend))
	m.convs.Refresh(context.Background())
	m.convs.SetActive("c1")

	done := make(chan error, 1)
	go func() {
		done <- m.turns.SendTurn(context.Background(), "c1", "first")
	}()
	<-backend.started

	next, cmd := m.sendMessage("second")
	mm := next.(Model)
	require.NotNil(t, cmd)
	assert.False(t, mm.statusBar.MessageIsErr)
	assert.Contains(t, mm.statusBar.Message, "already streaming")

	close(backend.release)
	require.NoError(t, <-done)
}
