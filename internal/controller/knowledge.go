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
// KNOWLEDGE BASE CONTROLLER
// =============================================================================

// ErrEmptyGroupName indicates a group create with a blank name.
var ErrEmptyGroupName = errors.New("group name is empty")

// KnowledgeAPI is the slice of the API client the knowledge base controller
// needs. All operations are the resilient tier.
type KnowledgeAPI interface {
	ListGroups(ctx context.Context) []model.DocumentGroup
	CreateGroup(ctx context.Context, name string) *model.DocumentGroup
	TrainGroup(ctx context.Context, groupID string) bool
	ListDocuments(ctx context.Context, groupID string) []model.Document
	UploadDocument(ctx context.Context, groupID, path string) *model.Document
	DeleteDocument(ctx context.Context, id string) bool
}

// KnowledgeController manages document groups and their documents,
// persisting the selected group between runs.
type KnowledgeController struct {
	client KnowledgeAPI
	state  store.Store

	mu       sync.Mutex
	groups   []model.DocumentGroup
	docs     map[string][]model.Document
	selected string

	// training maps group ids with an accepted training request to the
	// group's last_trained stamp at request time. The backend reports
	// completion only through that stamp moving on a later refresh.
	training map[string]time.Time
}

// NewKnowledgeController creates a knowledge base controller.
func NewKnowledgeController(client KnowledgeAPI, state store.Store) *KnowledgeController {
	return &KnowledgeController{
		client:   client,
		state:    state,
		docs:     make(map[string][]model.Document),
		training: make(map[string]time.Time),
	}
}

// RefreshGroups replaces the local group list with the backend's.
func (kc *KnowledgeController) RefreshGroups(ctx context.Context) {
	groups := kc.client.ListGroups(ctx)

	kc.mu.Lock()
	kc.groups = groups
	if kc.selected != "" && kc.findGroup(kc.selected) == nil {
		kc.selected = ""
	}
	// A moved last_trained stamp means training finished.
	for _, g := range groups {
		if stamp, ok := kc.training[g.ID]; ok && g.LastTrained.After(stamp) {
			delete(kc.training, g.ID)
		}
	}
	kc.mu.Unlock()
}

// Groups returns a snapshot of the group list.
func (kc *KnowledgeController) Groups() []model.DocumentGroup {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	out := make([]model.DocumentGroup, len(kc.groups))
	copy(out, kc.groups)
	return out
}

// findGroup returns the group with the given id. Caller holds kc.mu.
func (kc *KnowledgeController) findGroup(id string) *model.DocumentGroup {
	for i := range kc.groups {
		if kc.groups[i].ID == id {
			return &kc.groups[i]
		}
	}
	return nil
}

// Group returns the group with the given id from the local list.
func (kc *KnowledgeController) Group(id string) (model.DocumentGroup, bool) {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	if g := kc.findGroup(id); g != nil {
		return *g, true
	}
	return model.DocumentGroup{}, false
}

// CreateGroup creates a group and selects it.
func (kc *KnowledgeController) CreateGroup(ctx context.Context, name string) (*model.DocumentGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyGroupName
	}

	group := kc.client.CreateGroup(ctx, name)
	if group == nil {
		return nil, nil
	}

	kc.mu.Lock()
	kc.groups = append(kc.groups, *group)
	kc.mu.Unlock()

	kc.Select(group.ID)
	return group, nil
}

// RefreshDocuments replaces the cached document list of a group.
func (kc *KnowledgeController) RefreshDocuments(ctx context.Context, groupID string) {
	docs := kc.client.ListDocuments(ctx, groupID)

	kc.mu.Lock()
	kc.docs[groupID] = docs
	kc.mu.Unlock()
}

// Documents returns a snapshot of a group's cached documents.
func (kc *KnowledgeController) Documents(groupID string) []model.Document {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	docs := kc.docs[groupID]
	out := make([]model.Document, len(docs))
	copy(out, docs)
	return out
}

// Upload sends a local file into a group and refreshes the group's
// documents on success.
func (kc *KnowledgeController) Upload(ctx context.Context, groupID, path string) *model.Document {
	doc := kc.client.UploadDocument(ctx, groupID, path)
	if doc == nil {
		return nil
	}

	// Reload from the server rather than appending the returned row, so
	// server-side processing of the upload is reflected immediately.
	kc.RefreshDocuments(ctx, groupID)
	return doc
}

// DeleteDocument removes a document. Returns false when the backend
// rejected the delete; the cached entry stays in that case.
func (kc *KnowledgeController) DeleteDocument(ctx context.Context, groupID, docID string) bool {
	if !kc.client.DeleteDocument(ctx, docID) {
		return false
	}

	kc.RefreshDocuments(ctx, groupID)
	return true
}

// Train asks the backend to start embedding training for a group. Training
// is asynchronous; the group's last_trained stamp moves once it finishes.
func (kc *KnowledgeController) Train(ctx context.Context, groupID string) bool {
	if !kc.client.TrainGroup(ctx, groupID) {
		return false
	}

	kc.mu.Lock()
	var stamp time.Time
	if g := kc.findGroup(groupID); g != nil {
		stamp = g.LastTrained
	}
	kc.training[groupID] = stamp
	kc.mu.Unlock()

	// Groups are re-fetched right away so a synchronously completed
	// training shows its new stamp without a manual refresh.
	kc.RefreshGroups(ctx)
	return true
}

// TrainingRequested reports whether a training request for the group was
// accepted this session and has not been observed as finished yet.
func (kc *KnowledgeController) TrainingRequested(groupID string) bool {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	_, ok := kc.training[groupID]
	return ok
}

// Selected returns the selected group id, empty when none.
func (kc *KnowledgeController) Selected() string {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	return kc.selected
}

// Select marks a group as selected and persists the selection.
func (kc *KnowledgeController) Select(groupID string) {
	kc.mu.Lock()
	kc.selected = groupID
	kc.mu.Unlock()

	if kc.state != nil {
		kc.state.Set(store.KeyLastGroup, groupID)
	}
}

// RestoreSelected re-selects the group from the previous run when it still
// exists, falling back to the first group otherwise. Returns the selected
// id, or empty when there are no groups.
func (kc *KnowledgeController) RestoreSelected() string {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	if kc.state != nil {
		if id, err := kc.state.Get(store.KeyLastGroup); err == nil && kc.findGroup(id) != nil {
			kc.selected = id
			return id
		}
	}
	if len(kc.groups) > 0 {
		kc.selected = kc.groups[0].ID
		return kc.selected
	}
	return ""
}
