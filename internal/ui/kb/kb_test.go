// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kb

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

// fakeKnowledgeAPI is an in-memory backend for knowledge base view tests.
type fakeKnowledgeAPI struct {
	mu      sync.Mutex
	groups  []model.DocumentGroup
	docs    map[string][]model.Document
	deleted []string
}

func (f *fakeKnowledgeAPI) ListGroups(ctx context.Context) []model.DocumentGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.DocumentGroup, len(f.groups))
	copy(out, f.groups)
	return out
}

func (f *fakeKnowledgeAPI) CreateGroup(ctx context.Context, name string) *model.DocumentGroup {
	return &model.DocumentGroup{ID: "new", Name: name}
}

func (f *fakeKnowledgeAPI) TrainGroup(ctx context.Context, groupID string) bool { return true }

func (f *fakeKnowledgeAPI) ListDocuments(ctx context.Context, groupID string) []model.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Document, len(f.docs[groupID]))
	copy(out, f.docs[groupID])
	return out
}

func (f *fakeKnowledgeAPI) UploadDocument(ctx context.Context, groupID, path string) *model.Document {
	return nil
}

func (f *fakeKnowledgeAPI) DeleteDocument(ctx context.Context, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for groupID, docs := range f.docs {
		for i := range docs {
			if docs[i].ID == id {
				f.docs[groupID] = append(docs[:i], docs[i+1:]...)
				return true
			}
		}
	}
	return true
}

func newTestView(backend *fakeKnowledgeAPI) (Model, *controller.KnowledgeController) {
	ctrl := controller.NewKnowledgeController(backend, nil)
	ctrl.RefreshGroups(context.Background())
	return New(styles.NewTheme("dark"), ctrl), ctrl
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDocumentDelete_AsksForConfirmation(t *testing.T) {
	backend := &fakeKnowledgeAPI{
		groups: []model.DocumentGroup{{ID: "g1", Name: "manuals"}},
		docs:   map[string][]model.Document{"g1": {{ID: "d1", GroupID: "g1", Name: "a.pdf"}}},
	}
	m, ctrl := newTestView(backend)
	ctrl.Select("g1")
	ctrl.RefreshDocuments(context.Background(), "g1")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusDocs, m.focus)

	m, cmd := m.Update(key("d"))
	assert.Nil(t, cmd)
	require.True(t, m.confirm.Active())
	assert.Empty(t, backend.deleted)

	// Declining leaves the document alone.
	m, cmd = m.Update(key("n"))
	assert.Nil(t, cmd)
	assert.False(t, m.confirm.Active())
	assert.Empty(t, backend.deleted)

	// Confirming runs the delete.
	m, _ = m.Update(key("d"))
	require.True(t, m.confirm.Active())
	m, cmd = m.Update(key("y"))
	require.NotNil(t, cmd)

	msg := cmd()
	action, ok := msg.(ActionMsg)
	require.True(t, ok)
	assert.False(t, action.IsErr)
	assert.Equal(t, []string{"d1"}, backend.deleted)
}

func TestSyncCursor_FollowsSelectedGroup(t *testing.T) {
	backend := &fakeKnowledgeAPI{
		groups: []model.DocumentGroup{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}},
	}
	m, ctrl := newTestView(backend)
	ctrl.Select("g3")

	m.SyncCursor()
	assert.Equal(t, 2, m.cursor)

	ctrl.Select("gone")
	m.SyncCursor()
	assert.Equal(t, 0, m.cursor)
}
