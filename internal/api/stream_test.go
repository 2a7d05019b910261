// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flushWrite writes a fragment and flushes so the client sees it as a
// separate read where the transport allows.
func flushWrite(w http.ResponseWriter, s string) {
	w.Write([]byte(s))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func TestSendMessage_StreamsFragmentsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/c1/message", r.URL.Path)

		w.Header().Set("x-user-message-id", "u1")
		w.Header().Set("x-assistant-message-id", "a1")
		w.WriteHeader(http.StatusOK)
		flushWrite(w, "Hello")
		flushWrite(w, ", ")
		flushWrite(w, "world")
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	var headerResult StreamResult
	var headersBeforeChunks bool
	var chunks []string
	result, err := client.SendMessage(context.Background(), "c1", "hi",
		func(r StreamResult) {
			headerResult = r
			headersBeforeChunks = len(chunks) == 0
		},
		func(fragment string) {
			chunks = append(chunks, fragment)
		})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "u1", result.UserMessageID)
	assert.Equal(t, "a1", result.AssistantMessageID)
	assert.Equal(t, *result, headerResult)
	assert.True(t, headersBeforeChunks, "header callback must fire before any fragment")
	assert.Equal(t, "Hello, world", strings.Join(chunks, ""))
}

func TestSendMessage_LegacyUserIDHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-message-id", "u-legacy")
		w.Header().Set("x-assistant-message-id", "a1")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SendMessage(context.Background(), "c1", "hi", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "u-legacy", result.UserMessageID)
}

func TestSendMessage_CancelMidStream(t *testing.T) {
	firstChunkSent := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-user-message-id", "u1")
		w.Header().Set("x-assistant-message-id", "a1")
		w.WriteHeader(http.StatusOK)
		flushWrite(w, "partial ")
		close(firstChunkSent)
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())

	var received strings.Builder
	go func() {
		<-firstChunkSent
		// Give the client a moment to deliver the first fragment.
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	result, err := client.SendMessage(ctx, "c1", "hi", nil, func(fragment string) {
		received.WriteString(fragment)
	})

	require.Error(t, err)
	assert.True(t, IsCancelled(err))
	// Ids arrived before cancellation, so the result is still usable for
	// reconciling the partial text.
	require.NotNil(t, result)
	assert.Equal(t, "a1", result.AssistantMessageID)
	assert.Equal(t, "partial ", received.String())
}

func TestSendMessage_ErrorStatusPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.SendMessage(context.Background(), "c1", "hi", nil, nil)

	assert.Nil(t, result)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Status)
	// Streaming failures are the propagating tier, not degraded fallbacks.
	assert.EqualValues(t, 0, client.Degraded())
}

func TestSendMessage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendMessage(context.Background(), "gone", "hi", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendMessage_UnreachablePropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	_, err := client.SendMessage(context.Background(), "c1", "hi", nil, nil)
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestStreamReader_Accumulates(t *testing.T) {
	reader := NewStreamReader(strings.NewReader("one two three"))

	var got strings.Builder
	err := reader.Process(context.Background(), func(fragment string) {
		got.WriteString(fragment)
	})

	require.NoError(t, err)
	assert.Equal(t, "one two three", got.String())
	assert.Equal(t, "one two three", reader.Accumulated())
	assert.EqualValues(t, len("one two three"), reader.BytesRead())
}

func TestStreamReader_SizeLimit(t *testing.T) {
	reader := NewStreamReader(strings.NewReader(strings.Repeat("x", 100)))
	reader.limit = 10

	err := reader.Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestStreamReader_EmptyBody(t *testing.T) {
	reader := NewStreamReader(strings.NewReader(""))

	var calls int
	err := reader.Process(context.Background(), func(string) { calls++ })

	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, reader.Accumulated())
}
