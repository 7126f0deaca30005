// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"net/http"
	"time"

	"github.com/streampick/streampick/internal/models"
)

// Health reports overall service health with per-component detail.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	components := make(map[string]string)
	status := "ok"

	if _, err := h.content.Count(r.Context()); err != nil {
		components["store"] = err.Error()
		status = "degraded"
	} else {
		components["store"] = "ok"
	}

	components["recommend"] = "ok"
	if h.recommender != nil && !h.recommender.Trained() {
		components["recommend"] = "cold"
	}

	components["cache"] = "never refreshed"
	if ts, err := h.content.LastRefresh(r.Context()); err != nil {
		components["cache"] = err.Error()
		status = "degraded"
	} else if !ts.IsZero() {
		components["cache"] = "refreshed " + ts.UTC().Format(time.RFC3339)
	}

	rw.Success(models.HealthStatus{
		Status:     status,
		Version:    h.version,
		UptimeSecs: int64(time.Since(h.startTime).Seconds()),
		Components: components,
	})
}

// HealthLive is the liveness probe: the process is up and serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: the store must answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if _, err := h.content.Count(r.Context()); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeUnavailable, "Store not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
