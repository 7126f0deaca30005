// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package upstream talks to the streaming-availability metadata provider.
//
// The Gateway wraps every call with a client-side rate limiter, a circuit
// breaker, bounded retries with exponential backoff, and a per-attempt
// timeout. Responses are decoded into provider DTOs and transformed into
// models.ContentItem before leaving this package, so no provider wire
// shape escapes into the rest of the system. Items without an IMDb
// identifier are dropped during transformation.
package upstream
