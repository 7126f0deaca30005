// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/models"
)

// StreamingServices lists the service catalog from configuration,
// ordered by ID for a stable client-facing list.
func (h *Handler) StreamingServices(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	services := make([]models.StreamingService, 0, len(h.cfg.Upstream.Services))
	for id, slug := range h.cfg.Upstream.Services {
		name := config.ServiceNames[slug]
		if name == "" {
			name = slug
		}
		services = append(services, models.StreamingService{
			ID:   id,
			Slug: slug,
			Name: name,
		})
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })

	rw.Success(map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}

// SetUserServices replaces a user's subscription list and kicks off a
// catalog refresh for the new services. The refresh failure mode is
// soft: the subscriptions are saved either way and discovery falls
// back to whatever is cached.
func (h *Handler) SetUserServices(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("Missing user ID")
		return
	}

	var req models.ServicesRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}
	for _, id := range req.ServiceIDs {
		if _, known := h.cfg.Upstream.Services[id]; !known {
			rw.BadRequest("Unknown service ID: " + id)
			return
		}
	}

	profile, err := h.users.SetServices(r.Context(), userID, req.ServiceIDs)
	if err != nil {
		rw.StoreError(err)
		return
	}

	if err := h.catalog.RefreshForServices(r.Context(), req.ServiceIDs); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).
			Strs("service_ids", req.ServiceIDs).
			Msg("Catalog refresh after subscription change failed")
	}

	rw.Success(map[string]interface{}{
		"user_id":     profile.UserID,
		"service_ids": profile.ServiceIDs,
	})
}
