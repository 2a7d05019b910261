// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches two ClientErrors by type so sentinel comparisons work with
// wrapped causes attached.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeNotFound
	ErrTypeStatus
	ErrTypeInvalidResponse
	ErrTypeTooLarge
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend is unreachable"}
	ErrNotFound    = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrTooLarge    = &ClientError{Type: ErrTypeTooLarge, Message: "response exceeded size limit"}
)

// StatusError represents a non-success HTTP status from the backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// IsCancelled reports whether the error is a user-initiated cancellation
// of an in-flight exchange. Callers of the streaming send branch on this
// to retain partial output instead of rolling back.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
