// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"path/filepath"
	"strings"
	"time"
)

// =============================================================================
// DOCUMENT GROUP
// =============================================================================

// DocumentGroup is a named collection of documents with an associated
// trained embedding artifact. EmbedPath is opaque to the client.
type DocumentGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	LastTrained time.Time `json:"last_trained"`
	EmbedPath   string    `json:"embed_path"`
}

// Trained reports whether the group's retrieval artifact has ever been built.
func (g DocumentGroup) Trained() bool {
	return !g.LastTrained.IsZero()
}

// =============================================================================
// DOCUMENT
// =============================================================================

// DocFormat is the format tag the backend assigns to an uploaded document.
type DocFormat string

const (
	FormatPDF DocFormat = "pdf"
	FormatTXT DocFormat = "txt"
	FormatDOC DocFormat = "doc"
)

// FormatFromName derives the format tag from a file name extension.
// Unknown extensions map to FormatTXT, matching the backend's default.
func FormatFromName(name string) DocFormat {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF
	case ".doc", ".docx":
		return FormatDOC
	default:
		return FormatTXT
	}
}

// Document is the client view of an uploaded file. Documents are created
// by upload and destroyed by explicit deletion; there is no edit-in-place.
type Document struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
	Path       string    `json:"path"`
	Format     DocFormat `json:"format"`
}
