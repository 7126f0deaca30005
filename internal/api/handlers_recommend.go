// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/recommend"
	"github.com/streampick/streampick/internal/store"
)

// Recommendations serves personalized picks from the requested engine.
// "collab" is accepted as shorthand for the collaborative engine; the
// content engine is the default.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := userFromQuery(r)
	if userID == "" {
		rw.BadRequest("Missing user parameter")
		return
	}

	engine := r.URL.Query().Get("engine")
	switch engine {
	case "", recommend.EngineContent:
		engine = recommend.EngineContent
	case "collab", recommend.EngineCollaborative:
		engine = recommend.EngineCollaborative
	default:
		rw.BadRequest("Unknown engine: " + engine)
		return
	}

	limit := limitFromQuery(r, h.cfg.Recommend.MaxResults)
	recs, err := h.recommender.Recommend(r.Context(), userID, engine, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrUnknownEngine) {
			rw.BadRequest(err.Error())
			return
		}
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"engine":          engine,
		"recommendations": recs,
		"count":           len(recs),
	})
}

// Rate records a 1-5 star rating. Each rating write kicks the model
// staleness check in the background; the response never waits on
// training, and stale models keep serving until the rebuild lands.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req models.RateRequest
	if !h.decodeAndValidate(rw, r, &req) {
		return
	}

	profile, err := h.users.AddRating(r.Context(), req.UserID, req.ContentID, req.Score)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("user_id", req.UserID).
		Str("content_id", req.ContentID).
		Int("score", req.Score).
		Msg("Rating recorded")

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.recommender.MaybeRebuild(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Model rebuild after rating failed")
		}
	}()

	rw.Created(map[string]interface{}{
		"user_id":       profile.UserID,
		"content_id":    req.ContentID,
		"score":         req.Score,
		"total_ratings": len(profile.Ratings),
	})
}

// Rating returns the caller's rating for one title, if any.
func (h *Handler) Rating(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := userFromQuery(r)
	if userID == "" {
		rw.BadRequest("Missing user parameter")
		return
	}
	contentID := chi.URLParam(r, "contentID")

	profile, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			rw.NotFound("No rating found")
			return
		}
		rw.StoreError(err)
		return
	}

	rating, ok := profile.RatingFor(contentID)
	if !ok {
		rw.NotFound("No rating found")
		return
	}
	rw.Success(rating)
}
