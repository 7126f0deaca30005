// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/streampick/streampick/internal/metrics"
	"github.com/streampick/streampick/internal/models"
)

// Keys for content cache storage. The refresh marker is a singleton.
const (
	contentKeyPrefix = "content:"
	refreshMarkerKey = "marker:refresh"
)

// ErrContentNotFound is returned when an ID has no cache entry.
var ErrContentNotFound = errors.New("store: content not found")

// ContentStore is the cache of content items keyed by IMDb ID.
type ContentStore struct {
	db *badger.DB
}

// NewContentStore creates a content store on an existing DB.
func NewContentStore(db *badger.DB) *ContentStore {
	return &ContentStore{db: db}
}

// ContentQuery filters Query results. Zero values mean "no constraint";
// a Limit of 0 returns everything that matches.
type ContentQuery struct {
	ServiceIDs  []string
	ContentType models.ContentType
	Limit       int
}

// Upsert merges an item into the cache. Service IDs accumulate across
// refreshes, and a skeleton item never downgrades an entry that already
// carries full details.
func (s *ContentStore) Upsert(ctx context.Context, item models.ContentItem) error {
	if item.ID == "" {
		return fmt.Errorf("store: content item without ID")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(contentKeyPrefix + item.ID)

		existing, err := txn.Get(key)
		if err == nil {
			var current models.ContentItem
			if verr := existing.Value(func(val []byte) error {
				return json.Unmarshal(val, &current)
			}); verr == nil {
				item = mergeContent(current, item)
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get content %s: %w", item.ID, err)
		}

		if item.CachedAt.IsZero() {
			item.CachedAt = time.Now().UTC()
		}

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal content %s: %w", item.ID, err)
		}
		return txn.Set(key, data)
	})
}

// UpsertBatch merges a page of items, one transaction per item so a bad
// entry doesn't abort the whole page.
func (s *ContentStore) UpsertBatch(ctx context.Context, items []models.ContentItem) (int, error) {
	stored := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		if err := s.Upsert(ctx, item); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// mergeContent overlays incoming on existing. Non-zero incoming fields
// win; detail fields only move forward.
func mergeContent(existing, incoming models.ContentItem) models.ContentItem {
	merged := existing
	merged.MergeServices(incoming.ServiceIDs)

	if incoming.Title != "" {
		merged.Title = incoming.Title
	}
	if incoming.ContentType.Valid() {
		merged.ContentType = incoming.ContentType
	}
	if incoming.ReleaseYear != 0 {
		merged.ReleaseYear = incoming.ReleaseYear
	}
	if incoming.RuntimeMinutes != 0 {
		merged.RuntimeMinutes = incoming.RuntimeMinutes
	}
	if incoming.UserRating != 0 {
		merged.UserRating = incoming.UserRating
	}
	if incoming.PosterURL != "" {
		merged.PosterURL = incoming.PosterURL
	}
	if incoming.BackdropURL != "" {
		merged.BackdropURL = incoming.BackdropURL
	}
	if incoming.PlotOverview != "" {
		merged.PlotOverview = incoming.PlotOverview
	}
	if incoming.RatingCert != "" {
		merged.RatingCert = incoming.RatingCert
	}
	if incoming.TrailerURL != "" {
		merged.TrailerURL = incoming.TrailerURL
	}

	if incoming.DetailsCached {
		merged.DetailsCached = true
		merged.GenreNames = incoming.GenreNames
		merged.Cast = incoming.Cast
		merged.Directors = incoming.Directors
		merged.Sources = incoming.Sources
		merged.DetailsRefreshedAt = incoming.DetailsRefreshedAt
	}

	merged.CachedAt = time.Now().UTC()
	return merged
}

// Get returns one cached item by ID.
func (s *ContentStore) Get(ctx context.Context, id string) (models.ContentItem, error) {
	var item models.ContentItem

	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(contentKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrContentNotFound
		}
		if err != nil {
			return fmt.Errorf("get content %s: %w", id, err)
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
	})
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			metrics.CacheMisses.WithLabelValues("content_get").Inc()
		}
		return models.ContentItem{}, err
	}

	metrics.CacheHits.WithLabelValues("content_get").Inc()
	return item, nil
}

// Query scans the cache and returns items matching the filter, newest
// first by cache time.
func (s *ContentStore) Query(ctx context.Context, q ContentQuery) ([]models.ContentItem, error) {
	var items []models.ContentItem

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var item models.ContentItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				continue // skip undecodable entries rather than failing the scan
			}

			if q.ContentType != "" && item.ContentType != q.ContentType {
				continue
			}
			if !item.HasAnyService(q.ServiceIDs) {
				continue
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CachedAt.After(items[j].CachedAt)
	})
	if q.Limit > 0 && len(items) > q.Limit {
		items = items[:q.Limit]
	}
	return items, nil
}

// Count returns the number of cached content items.
func (s *ContentStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.CachedItems.Set(float64(count))
	return count, nil
}

// Delete removes one cached item.
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(contentKeyPrefix + id))
	})
}

// MarkRefreshed records that a refresh cycle completed. The marker is
// a single record under a fixed key, overwritten on every cycle, so at
// most one marker ever exists.
func (s *ContentStore) MarkRefreshed(ctx context.Context) error {
	marker := models.RefreshMarker{RefreshedAt: time.Now().UTC()}
	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal refresh marker: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(refreshMarkerKey), data)
	})
}

// LastRefresh returns when the last refresh cycle completed, or the
// zero time when no cycle has run yet.
func (s *ContentStore) LastRefresh(ctx context.Context) (time.Time, error) {
	var marker models.RefreshMarker
	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(refreshMarkerKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get refresh marker: %w", err)
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &marker)
		})
	})
	if err != nil {
		return time.Time{}, err
	}
	return marker.RefreshedAt, nil
}

// IsFresh reports whether a refresh completed within maxAge. One recent
// refresh suppresses further upstream churn for every user.
func (s *ContentStore) IsFresh(ctx context.Context, maxAge time.Duration) (bool, error) {
	ts, err := s.LastRefresh(ctx)
	if err != nil {
		return false, err
	}
	return !ts.IsZero() && time.Since(ts) < maxAge, nil
}

// DistinctServiceIDs returns every service ID attached to at least one
// cached item, sorted.
func (s *ContentStore) DistinctServiceIDs(ctx context.Context) ([]string, error) {
	set := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var item models.ContentItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				continue
			}
			for _, id := range item.ServiceIDs {
				set[id] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteWhere removes every cached item the filter matches and returns
// how many were deleted. Matching and deletion run in separate
// transactions, one delete per item, so a large sweep never exceeds
// transaction limits.
func (s *ContentStore) DeleteWhere(ctx context.Context, match func(models.ContentItem) bool) (int, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(contentKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var item models.ContentItem
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			}); err != nil {
				continue
			}
			if match(item) {
				ids = append(ids, item.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.Delete(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
