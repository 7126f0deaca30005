// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package api exposes the HTTP surface: content lookup and search,
// the discovery feed, ratings, preference verdicts, and the
// recommendation endpoints, all wrapped in a standard JSON envelope.
//
// Authentication is handled by an upstream layer; handlers identify
// the caller through an explicit user field in the query or body.
package api
