// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller holds the client-side state machines between the
// backend API and the user interfaces.
//
// TurnController owns per-conversation transcripts and the lifecycle of a
// streaming chat turn: optimistic placeholders, fragment application, id
// reconciliation, cancellation and rollback. ConversationController and
// KnowledgeController manage the conversation list and the knowledge base
// views over the resilient unary API.
package controller
