// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"errors"
	"net/http"

	"github.com/streampick/streampick/internal/discovery"
	"github.com/streampick/streampick/internal/models"
)

// DiscoverNext deals the next card for the user's discovery feed.
// Already-swiped titles are avoided on a best-effort basis; with a
// deeply exhausted catalog a repeat beats an empty feed.
func (h *Handler) DiscoverNext(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := userFromQuery(r)
	if userID == "" {
		rw.BadRequest("Missing user parameter")
		return
	}

	profile, err := h.users.GetOrCreate(r.Context(), userID)
	if err != nil {
		rw.StoreError(err)
		return
	}

	item, tier, err := h.discovery.Next(r.Context(), profile)
	if err != nil {
		if errors.Is(err, discovery.ErrNoContent) {
			rw.NotFound("No content available to discover")
			return
		}
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"content": item,
		"source":  tier,
	})
}

// Discover deals a page of cards for the initial feed load, with the
// first few hydrated to full detail.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := userFromQuery(r)
	if userID == "" {
		rw.BadRequest("Missing user parameter")
		return
	}

	profile, err := h.users.GetOrCreate(r.Context(), userID)
	if err != nil {
		rw.StoreError(err)
		return
	}

	items, err := h.discovery.Batch(r.Context(), profile)
	if err != nil {
		if errors.Is(err, discovery.ErrNoContent) {
			rw.NotFound("No content available to discover")
			return
		}
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"results": items,
		"count":   len(items),
	})
}

// DiscoverPreference records a like/dislike/skip verdict from the
// discovery feed. Like and dislike are mutually exclusive; any verdict
// marks the title as seen.
func (h *Handler) DiscoverPreference(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.PreferenceRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	profile, err := h.users.SetPreference(r.Context(), req.UserID, req.ContentID, req.Action)
	if err != nil {
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"user_id":    profile.UserID,
		"content_id": req.ContentID,
		"action":     req.Action,
		"liked":      len(profile.Liked),
		"disliked":   len(profile.Disliked),
	})
}
