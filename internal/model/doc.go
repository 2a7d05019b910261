// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side views of the server-owned
// entities: conversations, messages, document groups, and documents.
//
// All entities are owned by the backend; the client holds ephemeral,
// possibly-stale copies. The only client-originated entities are
// transient optimistic Message placeholders, which are either reconciled
// to a server-issued identifier or discarded on failure.
package model
