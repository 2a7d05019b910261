// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/localmind-tui/internal/model"
)

func sampleTranscript() (model.Conversation, []model.Message) {
	conv := model.Conversation{ID: "c1", Title: "Release Notes", Mode: model.ModeRAG}
	msgs := []model.Message{
		{ID: "m1", Sender: model.SenderUser, Text: "Summarize the changes"},
		{ID: "m2", Sender: model.SenderAssistant, Text: "Here you go:\n```go\nfunc main() {}\n```\nDone."},
	}
	return conv, msgs
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"markdown", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"JSON", FormatJSON, false},
		{" html ", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	conv, msgs := sampleTranscript()
	data, err := Render(FormatMarkdown, conv, msgs)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "# Release Notes")
	assert.Contains(t, out, "## You")
	assert.Contains(t, out, "## Assistant")
	assert.Contains(t, out, "```go")
	assert.True(t, strings.Index(out, "Summarize") < strings.Index(out, "Here you go"),
		"messages must keep transcript order")
}

func TestRenderJSON(t *testing.T) {
	conv, msgs := sampleTranscript()
	data, err := Render(FormatJSON, conv, msgs)
	require.NoError(t, err)

	var decoded struct {
		Conversation model.Conversation `json:"conversation"`
		Messages     []model.Message    `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "c1", decoded.Conversation.ID)
	require.Len(t, decoded.Messages, 2)
	assert.Equal(t, "m2", decoded.Messages[1].ID)
}

func TestRenderHTML(t *testing.T) {
	conv, msgs := sampleTranscript()
	data, err := Render(FormatHTML, conv, msgs)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "<title>Release Notes</title>")
	assert.Contains(t, out, "chroma")
	// The fenced code must not appear raw.
	assert.NotContains(t, out, "```go")
}

func TestRenderHTML_EscapesContent(t *testing.T) {
	conv := model.Conversation{Title: "<script>", Mode: model.ModeGeneral}
	msgs := []model.Message{{Sender: model.SenderUser, Text: "<img src=x>"}}

	data, err := Render(FormatHTML, conv, msgs)
	require.NoError(t, err)

	out := string(data)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
}

func TestRenderHTML_UnclosedFence(t *testing.T) {
	conv := model.Conversation{Title: "t", Mode: model.ModeGeneral}
	msgs := []model.Message{{Sender: model.SenderAssistant, Text: "```python\nprint(1)"}}

	data, err := Render(FormatHTML, conv, msgs)
	require.NoError(t, err)
	assert.Contains(t, string(data), "print")
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	conv := model.Conversation{Title: "Q3 Planning: Notes!"}
	assert.Equal(t, "q3-planning-notes-20250601-103000.md", FileName(conv, FormatMarkdown, now))

	assert.Equal(t, "conversation-20250601-103000.json",
		FileName(model.Conversation{}, FormatJSON, now))
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	conv, msgs := sampleTranscript()

	path, err := Write(dir, FormatMarkdown, conv, msgs)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Release Notes")
	assert.True(t, strings.HasSuffix(path, ".md"))
}
