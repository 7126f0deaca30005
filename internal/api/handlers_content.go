// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/streampick/streampick/internal/catalog"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/store"
	"github.com/streampick/streampick/internal/upstream"
)

// Content serves full details for one title, fetching from the
// provider when the cached copy is only a search skeleton. When the
// caller identifies themselves, watch options are narrowed to the
// services they subscribe to.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		rw.BadRequest("Missing content ID")
		return
	}

	item, err := h.catalog.GetDetails(r.Context(), contentID)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrContentNotFound):
			rw.NotFound("Content not found: " + contentID)
		case errors.Is(err, upstream.ErrUnavailable):
			rw.UpstreamError(err)
		default:
			rw.StoreError(err)
		}
		return
	}
	if item.DetailsCached {
		rw.MarkCached()
	}

	if userID := userFromQuery(r); userID != "" {
		profile, err := h.users.Get(r.Context(), userID)
		if err == nil && len(profile.ServiceIDs) > 0 {
			item = filterSources(item, profile.ServiceIDs)
		} else if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			rw.StoreError(err)
			return
		}
	}

	rw.Success(item)
}

// filterSources narrows an item's watch options to the given services.
// Items the user cannot watch anywhere keep their full source list so
// the client can still show where a title is available.
func filterSources(item models.ContentItem, serviceIDs []string) models.ContentItem {
	allowed := make(map[string]struct{}, len(serviceIDs))
	for _, id := range serviceIDs {
		allowed[id] = struct{}{}
	}

	var sources []models.WatchOption
	var services []string
	for _, src := range item.Sources {
		if _, ok := allowed[src.ServiceID]; ok {
			sources = append(sources, src)
		}
	}
	for _, id := range item.ServiceIDs {
		if _, ok := allowed[id]; ok {
			services = append(services, id)
		}
	}
	if len(sources) == 0 && len(services) == 0 {
		return item
	}

	item.Sources = sources
	item.ServiceIDs = services
	return item
}

// ContentList serves the browse grid: cached titles available on the
// caller's services, refreshed and backfilled with popular titles when
// the cache runs thin. An optional type parameter narrows to movies or
// series.
func (h *Handler) ContentList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID := userFromQuery(r)
	if userID == "" {
		rw.BadRequest("Missing user parameter")
		return
	}

	var contentType models.ContentType
	if raw := r.URL.Query().Get("type"); raw != "" {
		contentType = models.ContentType(raw)
		if !contentType.Valid() {
			rw.BadRequest("Invalid type: " + raw)
			return
		}
	}

	profile, err := h.users.GetOrCreate(r.Context(), userID)
	if err != nil {
		rw.StoreError(err)
		return
	}

	limit := limitFromQuery(r, h.cfg.Catalog.PageSize)
	items, err := h.catalog.ContentForServices(r.Context(), profile.ServiceIDs, contentType, limit)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			rw.UpstreamError(err)
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

// Search finds titles by name, preferring cached copies of each match.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		rw.BadRequest("Missing query parameter")
		return
	}

	limit := limitFromQuery(r, h.cfg.Recommend.MaxResults)
	results, err := h.catalog.Search(r.Context(), query, limit)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			rw.UpstreamError(err)
			return
		}
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

// Trending serves a shuffled sample of currently popular titles,
// scoped to the caller's services when they have any configured.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var serviceIDs []string
	if userID := userFromQuery(r); userID != "" {
		profile, err := h.users.Get(r.Context(), userID)
		if err == nil {
			serviceIDs = profile.ServiceIDs
		} else if !errors.Is(err, store.ErrUserNotFound) {
			rw.StoreError(err)
			return
		}
	}

	limit := limitFromQuery(r, h.cfg.Recommend.MaxResults)
	results, err := h.catalog.Trending(r.Context(), serviceIDs, limit)
	if err != nil {
		if errors.Is(err, upstream.ErrUnavailable) {
			rw.UpstreamError(err)
			return
		}
		rw.StoreError(err)
		return
	}

	rw.Success(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
