// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
)

// ErrUnknownMode indicates a mode tag outside the known set.
var ErrUnknownMode = errors.New("unknown query mode")

// =============================================================================
// QUERY MODE
// =============================================================================

// QueryMode governs whether a conversation's assistant responses are
// grounded in selected knowledge-base groups, and how strictly.
type QueryMode string

const (
	// ModeGeneral answers from the base model with no document grounding.
	ModeGeneral QueryMode = "general"

	// ModeRAG augments answers with retrieved document context.
	ModeRAG QueryMode = "rag"

	// ModeStrictRAG answers only from retrieved document context.
	ModeStrictRAG QueryMode = "strict_rag"
)

// modeSpec describes the validation rule and display metadata for a mode.
type modeSpec struct {
	RequiresGroups bool
	DisplayName    string
	Badge          string
}

// modeSpecs is the closed table of known modes. Validation rules live
// here rather than in scattered string comparisons.
var modeSpecs = map[QueryMode]modeSpec{
	ModeGeneral:   {RequiresGroups: false, DisplayName: "General", Badge: "GENERAL"},
	ModeRAG:       {RequiresGroups: true, DisplayName: "RAG", Badge: "RAG"},
	ModeStrictRAG: {RequiresGroups: true, DisplayName: "Strict RAG", Badge: "STRICT"},
}

// AllModes returns the known modes in display order.
func AllModes() []QueryMode {
	return []QueryMode{ModeGeneral, ModeRAG, ModeStrictRAG}
}

// ParseQueryMode parses a mode string, returning an error for unknown tags.
func ParseQueryMode(s string) (QueryMode, error) {
	m := QueryMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// String returns the wire representation of the mode.
func (m QueryMode) String() string {
	return string(m)
}

// Valid reports whether the mode is one of the known tags.
func (m QueryMode) Valid() bool {
	_, ok := modeSpecs[m]
	return ok
}

// RequiresGroups reports whether a conversation in this mode must carry
// at least one knowledge-base group at creation time.
func (m QueryMode) RequiresGroups() bool {
	return modeSpecs[m].RequiresGroups
}

// DisplayName returns a human-readable name for the mode.
func (m QueryMode) DisplayName() string {
	if spec, ok := modeSpecs[m]; ok {
		return spec.DisplayName
	}
	return string(m)
}

// Badge returns the short uppercase marker shown in list views.
func (m QueryMode) Badge() string {
	if spec, ok := modeSpecs[m]; ok {
		return spec.Badge
	}
	return string(m)
}
