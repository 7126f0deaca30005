// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/streampick/streampick/internal/catalog"
	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/recommend"
	"github.com/streampick/streampick/internal/store"
)

// Handler holds the dependencies shared by all endpoint handlers.
type Handler struct {
	cfg         *config.Config
	catalog     *catalog.Service
	discovery   DiscoverySelector
	recommender *recommend.Service
	users       *store.UserStore
	content     *store.ContentStore
	validate    *validator.Validate
	version     string
	startTime   time.Time
}

// DiscoverySelector deals cards for a user's discovery feed.
type DiscoverySelector interface {
	Next(ctx context.Context, profile *models.UserProfile) (models.ContentItem, string, error)
	Batch(ctx context.Context, profile *models.UserProfile) ([]models.ContentItem, error)
}

// NewHandler wires the endpoint handlers to their services.
func NewHandler(cfg *config.Config, cat *catalog.Service, disc DiscoverySelector, rec *recommend.Service, users *store.UserStore, content *store.ContentStore, version string) *Handler {
	return &Handler{
		cfg:         cfg,
		catalog:     cat,
		discovery:   disc,
		recommender: rec,
		users:       users,
		content:     content,
		validate:    validator.New(),
		version:     version,
		startTime:   time.Now(),
	}
}

// userFromQuery extracts the caller identity supplied by the fronting
// auth layer. Handlers requiring it reject requests without one.
func userFromQuery(r *http.Request) string {
	return r.URL.Query().Get("user")
}

// decodeAndValidate decodes a JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func (h *Handler) decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]interface{}, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			rw.ValidationError("Request validation failed", details)
			return false
		}
		rw.BadRequest("Request validation failed")
		return false
	}
	return true
}

// limitFromQuery parses an optional positive limit parameter, falling
// back to def when absent or malformed.
func limitFromQuery(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
