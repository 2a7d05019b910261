// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/localmind/localmind-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the base URL of a locally running backend.
	DefaultBaseURL = "http://127.0.0.1:8000/api"

	// DefaultTimeout is the default timeout for unary API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for transient errors.
	DefaultMaxRetries = 3

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	// unaryRateLimit caps the request rate against the backend so bursts of
	// refreshes cannot starve an in-flight streaming exchange.
	unaryRateLimit = rate.Limit(20)
	unaryRateBurst = 40
)

// Header names carrying the server-assigned message ids on a streaming
// message send. The backend moved from a single x-message-id header to a
// pair; both spellings of the user id are accepted.
const (
	headerUserMessageID       = "x-user-message-id"
	headerLegacyUserMessageID = "x-message-id"
	headerAssistantMessageID  = "x-assistant-message-id"
)

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL including the /api prefix.
	BaseURL string

	// Timeout for unary requests. Streaming requests are context-controlled.
	Timeout time.Duration

	// MaxRetries is the number of attempts for transient unary failures.
	MaxRetries int

	// MaxResponseSize caps response body reads.
	MaxResponseSize int64
}

// DefaultConfig returns a ClientConfig with sensible defaults.
func DefaultConfig() ClientConfig {
	return ClientConfig{
		BaseURL:         DefaultBaseURL,
		Timeout:         DefaultTimeout,
		MaxRetries:      DefaultMaxRetries,
		MaxResponseSize: MaxResponseSize,
	}
}

// Client talks to the conversation and knowledge base endpoints of the
// backend. All unary operations are resilient: on failure they log, bump the
// degraded counter, and return an empty result so the caller can render a
// blank view instead of crashing. The streaming send in stream.go is the one
// operation that propagates errors.
type Client struct {
	config  ClientConfig
	http    *http.Client
	stream  *http.Client
	limiter *rate.Limiter

	// degraded counts unary operations that fell back to an empty result.
	degraded atomic.Int64
}

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared transport for all backend requests. The backend is a local or
// LAN service speaking plain HTTP, so no TLS settings are pinned here.
func newTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// NewClient creates a backend client. Zero-value config fields are filled
// from DefaultConfig.
func NewClient(config ClientConfig) *Client {
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.MaxResponseSize == 0 {
		config.MaxResponseSize = def.MaxResponseSize
	}
	return &Client{
		config: config,
		http: &http.Client{
			Transport: newTransport(),
			Timeout:   config.Timeout,
		},
		stream: &http.Client{
			Transport: newTransport(),
			// No timeout for streaming, controlled via context.
		},
		limiter: rate.NewLimiter(unaryRateLimit, unaryRateBurst),
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Degraded returns how many unary operations have fallen back to an empty
// result since the client was created. The status bar surfaces a nonzero
// count so silent fallbacks stay visible to the user.
func (c *Client) Degraded() int64 {
	return c.degraded.Load()
}

// =============================================================================
// Request plumbing
// =============================================================================

func (c *Client) endpoint(path string) string {
	return c.config.BaseURL + path
}

// logRequest logs an API request without the body.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration, no body.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// doWithRetry performs a unary request with exponential backoff on transient
// failures. Retries on connection errors and 5xx, with delays of 1s, 2s, 4s.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		reqCopy := req.Clone(ctx)
		if body != nil {
			reqCopy.Body = io.NopCloser(bytes.NewReader(body))
		}

		c.logRequest(reqCopy)

		startTime := time.Now()
		resp, err := c.http.Do(reqCopy)
		duration := time.Since(startTime)

		if err == nil && resp.StatusCode < 500 {
			c.logResponse(resp, duration)
			return resp, nil
		}

		lastErr = err
		if resp != nil {
			c.logResponse(resp, duration)
			lastErr = &StatusError{Status: resp.StatusCode}
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readResponse reads a response body with a size cap and decodes a 2xx body
// into out when out is non-nil.
func (c *Client) readResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, c.config.MaxResponseSize+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}
	if int64(len(data)) > c.config.MaxResponseSize {
		return ErrTooLarge
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// call issues a unary JSON request. A nil in sends no body for GET and
// DELETE and an empty JSON object for POST, which the chat history endpoint
// requires. out may be nil for operations without a response payload.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	switch {
	case in != nil:
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	case method == http.MethodPost:
		body = []byte("{}")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doWithRetry(ctx, req, body)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable", Cause: err}
	}
	return c.readResponse(resp, out)
}

// resilient wraps a unary call for the silent-fallback tier. Errors are
// logged and counted, never returned; the caller keeps its zero value.
func (c *Client) resilient(op string, err error) {
	if err == nil {
		return
	}
	c.degraded.Add(1)
	log.Printf("API degraded: %s: %v", op, err)
}

// =============================================================================
// Conversations
// =============================================================================

// ListConversations fetches all conversations. Resilient: returns an empty
// slice when the backend cannot be reached.
func (c *Client) ListConversations(ctx context.Context) []model.Conversation {
	var convs []model.Conversation
	err := c.call(ctx, http.MethodGet, "/conversation/", nil, &convs)
	c.resilient("list conversations", err)
	if err != nil {
		return nil
	}
	return convs
}

// GetConversation fetches a single conversation by id. Resilient: returns
// nil when the conversation cannot be fetched.
func (c *Client) GetConversation(ctx context.Context, id string) *model.Conversation {
	var conv model.Conversation
	err := c.call(ctx, http.MethodGet, "/conversation/"+url.PathEscape(id), nil, &conv)
	c.resilient("get conversation", err)
	if err != nil {
		return nil
	}
	return &conv
}

// createConversationRequest is the payload for creating a conversation.
type createConversationRequest struct {
	Title    string          `json:"title"`
	Mode     model.QueryMode `json:"conv_type"`
	GroupIDs []string        `json:"group_ids"`
}

// CreateConversation creates a conversation with the given title, query mode
// and knowledge base groups. Resilient: returns nil on failure.
func (c *Client) CreateConversation(ctx context.Context, title string, mode model.QueryMode, groupIDs []string) *model.Conversation {
	if groupIDs == nil {
		groupIDs = []string{}
	}
	req := createConversationRequest{Title: title, Mode: mode, GroupIDs: groupIDs}
	var conv model.Conversation
	err := c.call(ctx, http.MethodPost, "/conversation/new", req, &conv)
	c.resilient("create conversation", err)
	if err != nil {
		return nil
	}
	return &conv
}

// DeleteConversation deletes a conversation. Resilient: returns false on
// failure so the caller can keep the row in its local list.
func (c *Client) DeleteConversation(ctx context.Context, id string) bool {
	err := c.call(ctx, http.MethodDelete, "/conversation/"+url.PathEscape(id), nil, nil)
	c.resilient("delete conversation", err)
	return err == nil
}

// FetchMessages fetches the full message history of a conversation, sorted
// oldest first. The backend does not guarantee order, so sorting happens
// here. Resilient: returns an empty slice on failure.
func (c *Client) FetchMessages(ctx context.Context, conversationID string) []model.Message {
	var msgs []model.Message
	err := c.call(ctx, http.MethodPost, "/chat/"+url.PathEscape(conversationID)+"/all", nil, &msgs)
	c.resilient("fetch messages", err)
	if err != nil {
		return nil
	}
	model.SortMessages(msgs)
	return msgs
}

// =============================================================================
// Knowledge base groups
// =============================================================================

// ListGroups fetches all document groups. Resilient.
func (c *Client) ListGroups(ctx context.Context) []model.DocumentGroup {
	var groups []model.DocumentGroup
	err := c.call(ctx, http.MethodGet, "/document_group/groups", nil, &groups)
	c.resilient("list groups", err)
	if err != nil {
		return nil
	}
	return groups
}

// CreateGroup creates a document group with the given name. Resilient:
// returns nil on failure.
func (c *Client) CreateGroup(ctx context.Context, name string) *model.DocumentGroup {
	var group model.DocumentGroup
	err := c.call(ctx, http.MethodPost, "/document_group/new/"+url.PathEscape(name), nil, &group)
	c.resilient("create group", err)
	if err != nil {
		return nil
	}
	return &group
}

// TrainGroup starts embedding training for a group. The backend processes
// training asynchronously; success here means the job was accepted.
// Resilient: returns false on failure.
func (c *Client) TrainGroup(ctx context.Context, groupID string) bool {
	err := c.call(ctx, http.MethodPost, "/document_group/"+url.PathEscape(groupID)+"/train", nil, nil)
	c.resilient("train group", err)
	return err == nil
}

// ListDocuments fetches the documents of a group. Resilient.
func (c *Client) ListDocuments(ctx context.Context, groupID string) []model.Document {
	var docs []model.Document
	err := c.call(ctx, http.MethodGet, "/document_group/"+url.PathEscape(groupID)+"/documents", nil, &docs)
	c.resilient("list documents", err)
	if err != nil {
		return nil
	}
	return docs
}

// =============================================================================
// Documents
// =============================================================================

// UploadDocument uploads a local file into a group as a multipart form with
// a single "file" field. Resilient: returns nil on failure.
func (c *Client) UploadDocument(ctx context.Context, groupID, path string) *model.Document {
	doc, err := c.uploadDocument(ctx, groupID, path)
	c.resilient("upload document", err)
	return doc
}

func (c *Client) uploadDocument(ctx context.Context, groupID, path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}

	body := buf.Bytes()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint("/document/"+url.PathEscape(groupID)+"/upload"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.doWithRetry(ctx, req, body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable", Cause: err}
	}

	var doc model.Document
	if err := c.readResponse(resp, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument deletes a document by id. Resilient: returns false on
// failure.
func (c *Client) DeleteDocument(ctx context.Context, id string) bool {
	err := c.call(ctx, http.MethodDelete, "/document/"+url.PathEscape(id), nil, nil)
	c.resilient("delete document", err)
	return err == nil
}
