// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package discovery selects the next card for the swipe flow.
//
// Selection walks a fixed fallback chain so the endpoint stays fast and
// never comes back empty: the user's cached service content first, then
// a low-latency upstream fetch, then any cached content, and finally a
// built-in list of universally known titles. Each tier is reported to
// metrics so cache health is visible in the tier distribution.
package discovery

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/metrics"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/store"
	"github.com/streampick/streampick/internal/upstream"
)

// Tier labels for metrics and response metadata.
const (
	TierCacheServices = "cache_services"
	TierUpstream      = "upstream"
	TierCacheAny      = "cache_any"
	TierFallback      = "fallback"
)

// ErrNoContent is returned only when every tier, including the built-in
// fallback list, produced nothing.
var ErrNoContent = errors.New("discovery: no content available")

// maxUnseenAttempts bounds the retries used to avoid serving a card the
// user already swiped on.
const maxUnseenAttempts = 5

// Selector picks discovery cards from the cache and the provider.
type Selector struct {
	cfg     config.DiscoveryConfig
	gateway *upstream.Gateway
	content *store.ContentStore

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a discovery selector.
func NewSelector(cfg config.DiscoveryConfig, gateway *upstream.Gateway, content *store.ContentStore, seed int64) *Selector {
	return &Selector{
		cfg:     cfg,
		gateway: gateway,
		content: content,
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // card selection jitter, not cryptography
	}
}

// Next returns the next card for a user, preferring titles the user has
// not yet swiped on. After a bounded number of attempts a seen card may
// be served rather than failing the request.
func (s *Selector) Next(ctx context.Context, profile *models.UserProfile) (models.ContentItem, string, error) {
	seen := make(map[string]struct{}, len(profile.Liked)+len(profile.Disliked))
	for _, id := range profile.Liked {
		seen[id] = struct{}{}
	}
	for _, id := range profile.Disliked {
		seen[id] = struct{}{}
	}

	// Content types dealt during this call bias the built-in fallback
	// toward whichever type the user has not been shown yet.
	typesSeen := make(map[models.ContentType]int, 2)

	var item models.ContentItem
	var tier string
	var err error
	for attempt := 0; attempt < maxUnseenAttempts; attempt++ {
		item, tier, err = s.pick(ctx, profile.ServiceIDs, typesSeen)
		if err != nil {
			return models.ContentItem{}, "", err
		}
		typesSeen[item.ContentType]++
		if _, swiped := seen[item.ID]; !swiped {
			break
		}
	}

	metrics.DiscoveryServed.WithLabelValues(tier).Inc()
	return item, tier, nil
}

// Batch deals a page of distinct cards for the initial feed load. Up
// to the configured detail-fetch budget of skeleton entries are
// hydrated so the first cards render with full metadata; the rest ship
// as-is and hydrate on tap.
func (s *Selector) Batch(ctx context.Context, profile *models.UserProfile) ([]models.ContentItem, error) {
	size := s.cfg.BatchSize
	if size <= 0 {
		size = 10
	}

	dealt := make(map[string]struct{}, size)
	items := make([]models.ContentItem, 0, size)
	for attempt := 0; attempt < size*maxUnseenAttempts && len(items) < size; attempt++ {
		item, _, err := s.Next(ctx, profile)
		if err != nil {
			if errors.Is(err, ErrNoContent) && len(items) > 0 {
				break
			}
			return nil, err
		}
		if _, dup := dealt[item.ID]; dup {
			continue
		}
		dealt[item.ID] = struct{}{}
		items = append(items, item)
	}

	detailBudget := s.cfg.DetailFetchLimit
	for i := range items {
		if detailBudget <= 0 {
			break
		}
		if items[i].DetailsCached || !items[i].ContentType.Valid() {
			continue
		}
		detailBudget--
		detailed, err := s.gateway.GetDetails(ctx, items[i].ID, items[i].ContentType)
		if err != nil {
			logging.Ctx(ctx).Debug().
				Str("component", "discovery").
				Str("content_id", items[i].ID).
				Err(err).
				Msg("batch detail hydration failed")
			continue
		}
		detailed.MergeServices(items[i].ServiceIDs)
		if err := s.content.Upsert(ctx, detailed); err == nil {
			items[i] = detailed
		}
	}

	return items, nil
}

// pick walks the tier chain once.
func (s *Selector) pick(ctx context.Context, serviceIDs []string, typesSeen map[models.ContentType]int) (models.ContentItem, string, error) {
	// Tier 1: cached content on the user's services. Each content type
	// gets an independent coin flip, so a single pass may try movies,
	// series, both, or neither; the second type is the fallback when
	// the first selected type has nothing cached.
	if len(serviceIDs) > 0 {
		for _, contentType := range []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries} {
			if !s.coin() {
				continue
			}
			items, err := s.content.Query(ctx, store.ContentQuery{
				ServiceIDs:  serviceIDs,
				ContentType: contentType,
				Limit:       50,
			})
			if err == nil && len(items) > 0 {
				return s.choose(items), TierCacheServices, nil
			}
		}

		// Tier 2: any cached content on the user's services, but only
		// when the pool is deep enough to not repeat immediately.
		items, err := s.content.Query(ctx, store.ContentQuery{ServiceIDs: serviceIDs, Limit: 100})
		if err == nil && len(items) > 5 {
			return s.choose(items), TierCacheServices, nil
		}

		// Tier 3: one low-latency upstream fetch from a random service.
		if item, ok := s.fetchUpstream(ctx, serviceIDs); ok {
			return item, TierUpstream, nil
		}
	}

	// Tier 4: anything in the cache, trying one content type first for
	// variety, then any.
	contentType := models.ContentTypeMovie
	if s.coin() {
		contentType = models.ContentTypeSeries
	}
	items, err := s.content.Query(ctx, store.ContentQuery{ContentType: contentType, Limit: 30})
	if err == nil && len(items) > 0 {
		return s.choose(items), TierCacheAny, nil
	}
	items, err = s.content.Query(ctx, store.ContentQuery{Limit: 30})
	if err == nil && len(items) > 0 {
		return s.choose(items), TierCacheAny, nil
	}

	// Tier 5: built-in well-known titles, balanced by content type so
	// a run of one type steers the pick toward the other.
	fallbacks := s.fallbackItems(serviceIDs)
	if len(fallbacks) == 0 {
		return models.ContentItem{}, "", ErrNoContent
	}
	return s.chooseFallback(fallbacks, typesSeen), TierFallback, nil
}

// chooseFallback picks a built-in card, preferring the content type the
// user has been shown less of during this call. On a tie the type is a
// coin flip; a type with no candidates yields to the other.
func (s *Selector) chooseFallback(items []models.ContentItem, typesSeen map[models.ContentType]int) models.ContentItem {
	var movies, series []models.ContentItem
	for _, item := range items {
		if item.ContentType == models.ContentTypeSeries {
			series = append(series, item)
		} else {
			movies = append(movies, item)
		}
	}

	pool := movies
	switch {
	case typesSeen[models.ContentTypeMovie] > typesSeen[models.ContentTypeSeries]:
		pool = series
	case typesSeen[models.ContentTypeMovie] < typesSeen[models.ContentTypeSeries]:
		pool = movies
	case s.coin():
		pool = series
	}
	if len(pool) == 0 {
		pool = items
	}
	return s.choose(pool)
}

// fetchUpstream tries one random user service, both content types in
// random order, with the reduced retry budget. Fetched items are cached
// before one is served.
func (s *Selector) fetchUpstream(ctx context.Context, serviceIDs []string) (models.ContentItem, bool) {
	valid := make([]string, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		if _, ok := s.gateway.ServiceSlug(id); ok {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return models.ContentItem{}, false
	}
	serviceID := valid[s.intn(len(valid))]

	types := []models.ContentType{models.ContentTypeMovie, models.ContentTypeSeries}
	if s.coin() {
		types[0], types[1] = types[1], types[0]
	}

	for _, ct := range types {
		items, err := s.gateway.SearchByService(ctx, serviceID, ct, "", true)
		if err != nil {
			logging.Ctx(ctx).Debug().
				Str("component", "discovery").
				Str("service_id", serviceID).
				Str("content_type", string(ct)).
				Err(err).
				Msg("upstream discovery fetch failed")
			continue
		}
		if len(items) == 0 {
			continue
		}
		item := s.choose(items)
		if err := s.content.Upsert(ctx, item); err != nil {
			logging.Ctx(ctx).Warn().Str("component", "discovery").Err(err).Msg("failed to cache discovery item")
		}
		return item, true
	}
	return models.ContentItem{}, false
}

// fallbackItems returns the built-in titles, restricted to the
// configured ID list when one is set, with the user's services attached
// so the card renders a watch hint.
func (s *Selector) fallbackItems(serviceIDs []string) []models.ContentItem {
	allowed := make(map[string]struct{}, len(s.cfg.FallbackIDs))
	for _, id := range s.cfg.FallbackIDs {
		allowed[id] = struct{}{}
	}

	var out []models.ContentItem
	for _, item := range builtinFallbacks() {
		if len(allowed) > 0 {
			if _, ok := allowed[item.ID]; !ok {
				continue
			}
		}
		item.ServiceIDs = serviceIDs
		out = append(out, item)
	}
	return out
}

func (s *Selector) choose(items []models.ContentItem) models.ContentItem {
	return items[s.intn(len(items))]
}

func (s *Selector) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Selector) coin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(2) == 0
}
