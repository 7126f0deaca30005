// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package models defines the shared data structures exchanged between the
// upstream gateway, the content cache, the recommenders, and the HTTP API.
//
// The types here are deliberately free of behavior beyond small helpers:
// business logic lives in the packages that operate on them (catalog,
// discovery, recommend). All types carry JSON tags matching the wire format
// served by the API and stored in the document store, so a ContentItem read
// from the cache round-trips byte-for-byte through an API response.
package models
