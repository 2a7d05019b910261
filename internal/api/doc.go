// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the LocalMind backend.
//
// Every operation maps to one backend endpoint. Unary operations are
// resilient: any transport or status failure is swallowed and replaced
// with a neutral value (empty collection, zero value, no-op) so the
// interface stays usable against a partially available backend. The
// streaming message send is the single propagating operation — its
// caller must distinguish cancellation from error to decide whether to
// roll back optimistic state, so nothing is swallowed there.
package api
