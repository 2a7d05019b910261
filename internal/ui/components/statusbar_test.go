// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/localmind/localmind-tui/internal/model"
	"github.com/localmind/localmind-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func TestStatusBar_ShowsDegradedCount(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(120)
	bar.SetDegraded(3)

	view := bar.View()
	assert.Contains(t, view, "3 failed")
}

func TestStatusBar_HealthyShowsNoFailures(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(120)

	view := bar.View()
	assert.NotContains(t, view, "failed")
}

func TestStatusBar_ModeBadge(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(120)
	bar.SetConversation("docs chat", model.ModeStrictRAG)

	view := bar.View()
	assert.Contains(t, view, model.ModeStrictRAG.Badge())
	assert.Contains(t, view, "docs chat")
}

func TestStatusBar_TransientMessageReplacesShortcuts(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(120)

	bar.SetMessage("exported to /tmp/x.md", false)
	assert.Contains(t, bar.View(), "exported to /tmp/x.md")

	bar.ClearMessage()
	assert.NotContains(t, bar.View(), "exported")
}

func TestStatus_Strings(t *testing.T) {
	assert.Equal(t, "Ready", StatusReady.String())
	assert.Equal(t, "Streaming...", StatusStreaming.String())
	assert.Equal(t, styles.StatusIndicators.Error, StatusError.Icon())
}

func TestFormatElapsed(t *testing.T) {
	sp := NewSpinner(testTheme(), "Waiting")
	assert.False(t, sp.IsActive())
	assert.Equal(t, "0s", formatElapsed(0))
	assert.Equal(t, "1m 5s", formatElapsed(65e9))
}
