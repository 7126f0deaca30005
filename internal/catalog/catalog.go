// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package catalog owns the content cache lifecycle: refreshing it from
// the upstream provider on the configured interval, hydrating item
// details on demand, and answering availability queries with graceful
// degradation when the provider is down.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/metrics"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/store"
	"github.com/streampick/streampick/internal/upstream"
)

// minCachedResults is the floor below which ContentForServices triggers
// a refresh and backfills with popular titles.
const minCachedResults = 10

// ErrContentNotFound is returned when neither the cache nor the provider
// knows the requested ID.
var ErrContentNotFound = errors.New("catalog: content not found")

// Service coordinates the content cache against the upstream provider.
type Service struct {
	cfg     config.CatalogConfig
	gateway *upstream.Gateway
	content *store.ContentStore

	mu  sync.Mutex
	rng *rand.Rand

	// refreshMu serializes refresh cycles so concurrent requests don't
	// fan out duplicate upstream calls.
	refreshMu sync.Mutex
}

// NewService creates a catalog service.
func NewService(cfg config.CatalogConfig, gateway *upstream.Gateway, content *store.ContentStore, seed int64) *Service {
	return &Service{
		cfg:     cfg,
		gateway: gateway,
		content: content,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // selection jitter, not cryptography
	}
}

// RefreshForServices fetches popular movies and series for the given
// service set and merges them into the cache. The cycle is skipped
// entirely while a previous refresh is still fresh. With more than one
// service, a single random one is refreshed per cycle to bound upstream
// load; the union converges over successive cycles.
//
// A provider outage degrades to a no-op: the marker is still written so
// every request in the outage window doesn't retry the provider.
func (s *Service) RefreshForServices(ctx context.Context, serviceIDs []string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	fresh, err := s.content.IsFresh(ctx, s.cfg.RefreshInterval)
	if err != nil {
		return fmt.Errorf("check cache freshness: %w", err)
	}
	if fresh {
		metrics.RefreshRuns.WithLabelValues("skipped_fresh").Inc()
		logging.Ctx(ctx).Debug().Str("component", "catalog").Msg("cache fresh, skipping refresh")
		return nil
	}

	targets := serviceIDs
	if len(targets) > 1 {
		targets = []string{targets[s.intn(len(targets))]}
		logging.Ctx(ctx).Info().
			Str("component", "catalog").
			Str("service_id", targets[0]).
			Msg("multiple services subscribed, refreshing one per cycle")
	}
	if len(targets) == 0 {
		return nil
	}
	serviceID := targets[0]
	if _, ok := s.gateway.ServiceSlug(serviceID); !ok {
		return fmt.Errorf("catalog: no provider mapping for service %q", serviceID)
	}

	movies, err := s.gateway.SearchByService(ctx, serviceID, models.ContentTypeMovie, "", false)
	if err != nil {
		return s.finishDegraded(ctx, serviceID, err)
	}
	moviesStored, err := s.content.UpsertBatch(ctx, capItems(movies, s.cfg.MaxPerType))
	if err != nil {
		return fmt.Errorf("store movies: %w", err)
	}

	// Series are only fetched once movies landed, so a struggling
	// provider still yields a usable movie cache.
	seriesStored := 0
	if len(movies) > 0 {
		series, err := s.gateway.SearchByService(ctx, serviceID, models.ContentTypeSeries, "", false)
		if err != nil {
			return s.finishDegraded(ctx, serviceID, err)
		}
		seriesStored, err = s.content.UpsertBatch(ctx, capItems(series, s.cfg.MaxPerType))
		if err != nil {
			return fmt.Errorf("store series: %w", err)
		}
	}

	if err := s.content.MarkRefreshed(ctx); err != nil {
		return fmt.Errorf("mark refreshed: %w", err)
	}
	metrics.RefreshRuns.WithLabelValues("completed").Inc()
	logging.Ctx(ctx).Info().
		Str("component", "catalog").
		Str("service_id", serviceID).
		Int("movies", moviesStored).
		Int("series", seriesStored).
		Msg("cache refresh completed")
	return nil
}

// finishDegraded writes the refresh marker despite an upstream failure
// so the outage doesn't turn into a retry storm, then reports the
// degraded outcome.
func (s *Service) finishDegraded(ctx context.Context, serviceID string, cause error) error {
	metrics.RefreshRuns.WithLabelValues("failed").Inc()
	logging.Ctx(ctx).Warn().
		Str("component", "catalog").
		Str("service_id", serviceID).
		Err(cause).
		Msg("refresh degraded, serving cached content")
	if err := s.content.MarkRefreshed(ctx); err != nil {
		return fmt.Errorf("mark refreshed after degraded cycle: %w", err)
	}
	return nil
}

// GetDetails returns the fully hydrated record for one title. Cached
// details are served as-is; skeleton entries are upgraded in place with
// one provider call; unknown IDs are probed as movie first, then series.
func (s *Service) GetDetails(ctx context.Context, id string) (models.ContentItem, error) {
	cached, err := s.content.Get(ctx, id)
	switch {
	case err == nil && cached.DetailsCached:
		return cached, nil
	case err == nil:
		contentType := cached.ContentType
		if !contentType.Valid() {
			contentType = models.ContentTypeMovie
		}
		detailed, derr := s.gateway.GetDetails(ctx, id, contentType)
		if derr != nil {
			if errors.Is(derr, upstream.ErrNotFound) && contentType == models.ContentTypeMovie {
				detailed, derr = s.gateway.GetDetails(ctx, id, models.ContentTypeSeries)
			}
			if derr != nil {
				// provider down: the skeleton is still better than nothing
				logging.Ctx(ctx).Warn().Str("component", "catalog").Str("content_id", id).Err(derr).Msg("detail fetch failed, serving skeleton")
				return cached, nil
			}
		}
		if uerr := s.content.Upsert(ctx, detailed); uerr != nil {
			return models.ContentItem{}, uerr
		}
		return s.content.Get(ctx, id)
	case !errors.Is(err, store.ErrContentNotFound):
		return models.ContentItem{}, err
	}

	// Not cached at all: probe both detail endpoints.
	for _, ct := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries} {
		detailed, derr := s.gateway.GetDetails(ctx, id, ct)
		if derr == nil {
			detailed.ContentType = ct
			if uerr := s.content.Upsert(ctx, detailed); uerr != nil {
				return models.ContentItem{}, uerr
			}
			return s.content.Get(ctx, id)
		}
		if !errors.Is(derr, upstream.ErrNotFound) {
			return models.ContentItem{}, derr
		}
	}
	return models.ContentItem{}, ErrContentNotFound
}

// ContentForServices returns cached titles available on the given
// services. A thin cache triggers a refresh and retries; a still-thin
// result is padded with popular titles.
func (s *Service) ContentForServices(ctx context.Context, serviceIDs []string, contentType models.ContentType, limit int) ([]models.ContentItem, error) {
	query := store.ContentQuery{ServiceIDs: serviceIDs, ContentType: contentType, Limit: limit}

	items, err := s.content.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) >= minCachedResults || len(serviceIDs) == 0 {
		return items, nil
	}

	if err := s.RefreshForServices(ctx, serviceIDs); err != nil {
		logging.Ctx(ctx).Warn().Str("component", "catalog").Err(err).Msg("refresh during query failed")
	}
	items, err = s.content.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) >= minCachedResults {
		return items, nil
	}

	popular, perr := s.PopularContent(ctx, contentType, limit-len(items))
	if perr != nil {
		// degraded but not fatal: return whatever the cache had
		logging.Ctx(ctx).Warn().Str("component", "catalog").Err(perr).Msg("popularity backfill failed")
		return items, nil
	}
	return appendUniqueItems(items, popular), nil
}

// PopularContent fetches popular titles from the provider without a
// service filter. Used as backfill; results are not cached because they
// carry no availability signal.
func (s *Service) PopularContent(ctx context.Context, contentType models.ContentType, limit int) ([]models.ContentItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	types := []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries}
	if contentType.Valid() {
		types = []models.ContentType{contentType}
	}

	var out []models.ContentItem
	perType := limit / len(types)
	if perType == 0 {
		perType = 1
	}
	for _, ct := range types {
		items, err := s.gateway.SearchPopular(ctx, ct)
		if err != nil {
			return nil, err
		}
		out = append(out, capItems(items, perType)...)
	}
	return capItems(out, limit), nil
}

// Search looks up titles by free text across all services and resolves
// availability from the cache where possible.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.ContentItem, error) {
	items, err := s.gateway.SearchTitle(ctx, query)
	if err != nil {
		return nil, err
	}

	// Prefer the cached copy: it may carry details and service IDs the
	// search payload lacks.
	for i, item := range items {
		if cached, cerr := s.content.Get(ctx, item.ID); cerr == nil {
			items[i] = cached
		}
	}
	return capItems(items, limit), nil
}

// Trending returns a shuffled mix of currently popular movies and series
// from one of the user's services.
func (s *Service) Trending(ctx context.Context, serviceIDs []string, limit int) ([]models.ContentItem, error) {
	valid := make([]string, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		if _, ok := s.gateway.ServiceSlug(id); ok {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return s.PopularContent(ctx, "", limit)
	}
	serviceID := valid[s.intn(len(valid))]

	var combined []models.ContentItem
	movies, err := s.gateway.SearchByService(ctx, serviceID, models.ContentTypeMovie, "", true)
	if err == nil {
		combined = append(combined, movies...)
	}
	series, err := s.gateway.SearchByService(ctx, serviceID, models.ContentTypeSeries, "", true)
	if err == nil {
		combined = append(combined, series...)
	}
	if len(combined) == 0 {
		// provider down: fall back to whatever the cache holds for
		// these services
		cached, cerr := s.content.Query(ctx, store.ContentQuery{ServiceIDs: valid, Limit: limit * 2})
		if cerr != nil || len(cached) == 0 {
			return nil, upstream.ErrUnavailable
		}
		s.shuffle(cached)
		return capItems(cached, limit), nil
	}

	s.shuffle(combined)
	combined = capItems(combined, limit)
	if _, err := s.content.UpsertBatch(ctx, combined); err != nil {
		return nil, err
	}
	return combined, nil
}

func (s *Service) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Service) shuffle(items []models.ContentItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func capItems(items []models.ContentItem, limit int) []models.ContentItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func appendUniqueItems(items, extra []models.ContentItem) []models.ContentItem {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		seen[item.ID] = struct{}{}
	}
	for _, item := range extra {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	return items
}
