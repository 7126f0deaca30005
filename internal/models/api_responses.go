// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package models

import (
	"time"
)

// APIResponse is the standard envelope returned by every HTTP endpoint.
//
// Status field values:
//   - "success": Request completed, see Data
//   - "error": Request failed, see Error
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"results": [...]},
//	  "metadata": {"timestamp": "2026-08-28T12:00:00Z", "query_time_ms": 12}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and cache observability fields.
// QueryTimeMS is the server-side handling time; Cached is set when the
// response was served from the content store without an upstream call.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the structured error payload inside an error envelope.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - NOT_FOUND: resource does not exist
//   - UPSTREAM_ERROR: metadata provider unavailable
//   - STORE_ERROR: document store failure
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the payload of the /api/v1/health endpoint. Components
// maps subsystem names ("store", "upstream") to "ok" or a failure note.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	UptimeSecs int64             `json:"uptime_seconds"`
	Components map[string]string `json:"components,omitempty"`
}

// RateRequest is the body of POST /api/v1/ratings.
type RateRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	ContentID string `json:"content_id" validate:"required"`
	Score     int    `json:"score" validate:"required,min=1,max=5"`
}

// PreferenceRequest is the body of POST /api/v1/discover/preference.
type PreferenceRequest struct {
	UserID    string           `json:"user_id" validate:"required"`
	ContentID string           `json:"content_id" validate:"required"`
	Action    PreferenceAction `json:"action" validate:"required,oneof=like dislike skip"`
}

// ServicesRequest is the body of PUT /api/v1/users/{userID}/services.
type ServicesRequest struct {
	ServiceIDs []string `json:"service_ids" validate:"required,min=1,dive,required"`
}
