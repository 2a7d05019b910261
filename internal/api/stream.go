// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// =============================================================================
// STREAMING MESSAGE SEND
// =============================================================================

// StreamResult carries the server-assigned ids of the two messages created
// by a streaming send: the persisted copy of the user's text and the
// assistant reply being generated.
type StreamResult struct {
	UserMessageID      string
	AssistantMessageID string
}

// StreamCallback receives one raw response fragment. Fragments are arbitrary
// byte runs, not tokens or lines; concatenating them in arrival order yields
// the assistant reply.
type StreamCallback func(fragment string)

// HeadersCallback receives the server message ids as soon as the response
// headers arrive, before any body fragment. Callers use it to retarget their
// optimistic placeholders while the body is still streaming.
type HeadersCallback func(result StreamResult)

// sendMessageRequest is the payload for a streaming message send.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage posts a user message to a conversation and streams the
// assistant reply. onHeaders fires once when the response headers arrive;
// onChunk fires for each body fragment in order. Either callback may be nil.
//
// This is the single propagating operation of the client: unlike the unary
// operations it returns errors, including context.Canceled when the caller
// cancels mid-stream. The returned StreamResult holds whichever ids arrived
// before the error, so cancelled exchanges can still reconcile the text
// received so far.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string, onHeaders HeadersCallback, onChunk StreamCallback) (*StreamResult, error) {
	body, err := json.Marshal(sendMessageRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/chat/"+url.PathEscape(conversationID)+"/message"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logRequest(req)
	startTime := time.Now()
	resp, err := c.stream.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable", Cause: err}
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(startTime))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, &StatusError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	result := resultFromHeaders(resp.Header)
	if onHeaders != nil {
		onHeaders(result)
	}

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, onChunk); err != nil {
		return &result, err
	}
	return &result, nil
}

// resultFromHeaders extracts the message ids, accepting the legacy
// single-id header spelling for the user message.
func resultFromHeaders(h http.Header) StreamResult {
	userID := h.Get(headerUserMessageID)
	if userID == "" {
		userID = h.Get(headerLegacyUserMessageID)
	}
	return StreamResult{
		UserMessageID:      userID,
		AssistantMessageID: h.Get(headerAssistantMessageID),
	}
}

// =============================================================================
// STREAM READER
// =============================================================================

// streamReadSize is the read buffer size for response fragments.
const streamReadSize = 4096

// StreamReader reads raw text fragments from a streaming response body.
// The body carries no framing: fragments are whatever byte runs the server
// flushed, so reads are passed through as they arrive.
type StreamReader struct {
	reader io.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	bytesRead   int64
	limit       int64
}

// NewStreamReader creates a stream reader with the default size cap.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: r,
		limit:  MaxResponseSize,
	}
}

// Process reads the stream and calls the callback for each fragment.
// Blocks until the stream is complete or the context is cancelled.
// The callback may be nil when only the accumulated text is wanted.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	buf := make([]byte, streamReadSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			n, err := s.reader.Read(buf)
			if n > 0 {
				s.bytesRead += int64(n)
				if s.bytesRead > s.limit {
					return ErrTooLarge
				}
				fragment := string(buf[:n])
				s.accumulator.WriteString(fragment)
				if callback != nil {
					callback(fragment)
				}
			}
			if err != nil {
				if err == io.EOF {
					return nil
				}
				// The transport surfaces cancellation as a read error;
				// report it as the context error so callers can branch
				// on user-initiated cancellation.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return &ClientError{Type: ErrTypeInvalidResponse, Message: "stream read failed", Cause: err}
			}
		}
	}
}

// Accumulated returns all text received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// BytesRead returns the number of body bytes consumed.
func (s *StreamReader) BytesRead() int64 {
	return s.bytesRead
}
