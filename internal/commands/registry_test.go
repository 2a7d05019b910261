// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmind/localmind-tui/internal/controller"
	"github.com/localmind/localmind-tui/internal/model"
)

func TestRegistry_BuiltinsRegistered(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{
		"/help", "/quit", "/groups",
		"/new", "/switch", "/delete", "/cancel", "/export",
		"/group", "/docs", "/upload", "/train",
		"/refresh",
	} {
		assert.NotNil(t, r.Get(name), "command %s", name)
	}
}

func TestRegistry_AliasResolvesToSameCommand(t *testing.T) {
	r := NewRegistry()

	assert.Same(t, r.Get("/help"), r.Get("/h"))
	assert.Same(t, r.Get("/help"), r.Get("/?"))
	assert.Same(t, r.Get("/quit"), r.Get("/exit"))
	assert.Same(t, r.Get("/groups"), r.Get("/kb"))
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("/nope"))
}

func TestRegistry_ByCategorySkipsHidden(t *testing.T) {
	r := NewRegistry()
	r.Register(&Command{Name: "/secret", Hidden: true, Category: "Navigation"})

	byCat := r.ByCategory()
	require.NotEmpty(t, byCat["Navigation"])
	for _, cmd := range byCat["Navigation"] {
		assert.NotEqual(t, "/secret", cmd.Name)
	}
}

func TestRegistry_EveryVisibleCommandHasHandlerAndDescription(t *testing.T) {
	for _, cmd := range NewRegistry().All() {
		require.NotNil(t, cmd.Handler, "command %s", cmd.Name)
		if !cmd.Hidden {
			assert.NotEmpty(t, cmd.Description, "command %s", cmd.Name)
		}
	}
}

// =============================================================================
// HANDLER TESTS
// =============================================================================
// Handlers that only touch in-memory state can run their returned tea.Cmd
// directly and assert on the message it produces.

func runCmd(t *testing.T, ctx *Context, input string) any {
	t.Helper()
	p := NewParser(NewRegistry())
	result := p.Parse(input)
	require.True(t, result.IsCommand)
	require.NoError(t, result.Error)
	require.NotNil(t, result.Command)
	cmd := result.Command.Handler(ctx, result.Args)
	require.NotNil(t, cmd)
	return cmd()
}

func TestHandleHelp(t *testing.T) {
	msg := runCmd(t, NewContext(nil, nil, nil, nil), "/help")
	assert.IsType(t, ShowHelpMsg{}, msg)
}

func TestHandleGroups(t *testing.T) {
	msg := runCmd(t, NewContext(nil, nil, nil, nil), "/groups")
	assert.IsType(t, OpenKnowledgeBaseMsg{}, msg)
}

func TestHandleNew_RetrievalModeWithoutGroup(t *testing.T) {
	convs := controller.NewConversationController(nil, nil, nil)
	ctx := NewContext(nil, convs, nil, nil)

	msg := runCmd(t, ctx, "/new notes rag")
	status, ok := msg.(StatusMsg)
	require.True(t, ok)
	assert.True(t, status.IsError)
	assert.Contains(t, status.Text, "document group")
}

func TestHandleNew_TrailingModeToken(t *testing.T) {
	// The last token selects the mode only when it names one; otherwise
	// the whole line is the title.
	p := NewParser(NewRegistry())

	result := p.Parse("/new release notes")
	require.NoError(t, result.Error)
	assert.Equal(t, []string{"release", "notes"}, result.Args)

	_, err := model.ParseQueryMode("notes")
	assert.Error(t, err)
}

func TestHandleCancel_NoActiveConversation(t *testing.T) {
	convs := controller.NewConversationController(nil, nil, nil)
	ctx := NewContext(nil, convs, nil, controller.NewTurnController(nil))

	msg := runCmd(t, ctx, "/cancel")
	status, ok := msg.(StatusMsg)
	require.True(t, ok)
	assert.True(t, status.IsError)
}
