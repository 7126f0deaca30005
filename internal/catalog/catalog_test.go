// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/store"
	"github.com/streampick/streampick/internal/upstream"
)

func testContentStore(t *testing.T) *store.ContentStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return store.NewContentStore(db)
}

func testGateway(baseURL string) *upstream.Gateway {
	return upstream.NewGateway(config.UpstreamConfig{
		BaseURL:          baseURL,
		APIKey:           "test-key",
		APIHost:          "test-host",
		Country:          "us",
		Language:         "en",
		RequestTimeout:   2 * time.Second,
		MaxRetries:       1,
		RateLimitPerSec:  1000,
		RateLimitBurst:   1000,
		BreakerThreshold: 100,
		BreakerCooldown:  time.Second,
		Services:         config.DefaultServiceMapping(),
	})
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		RefreshInterval: 24 * time.Hour,
		PageSize:        25,
		MaxPerType:      20,
	}
}

// fakeProvider serves /search/basic responses generated per content type.
func fakeProvider(t *testing.T, searchCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/basic":
			searchCalls.Add(1)
			ct := r.URL.Query().Get("type")
			var results []string
			for i := 0; i < 3; i++ {
				results = append(results, fmt.Sprintf(`{
					"imdbId": "tt%s%d",
					"title": "Title %s %d",
					"year": 2020,
					"streamingInfo": {"us": {"netflix": [{"type": "sub"}]}}
				}`, ct, i, ct, i))
			}
			fmt.Fprintf(w, `{"results": [%s]}`, strings.Join(results, ","))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestRefreshForServices(t *testing.T) {
	var calls atomic.Int32
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	content := testContentStore(t)
	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	ctx := context.Background()

	if err := svc.RefreshForServices(ctx, []string{"203"}); err != nil {
		t.Fatalf("RefreshForServices: %v", err)
	}
	// one movie call plus one series call
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 search calls, got %d", got)
	}

	count, err := content.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 6 {
		t.Errorf("expected 6 cached items, got %d", count)
	}

	// A second refresh inside the freshness window is a no-op.
	if err := svc.RefreshForServices(ctx, []string{"203"}); err != nil {
		t.Fatalf("second RefreshForServices: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fresh cache must skip upstream, got %d calls", got)
	}
}

func TestRefreshPicksOneServiceOfMany(t *testing.T) {
	var services []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		services = append(services, r.URL.Query().Get("service"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer srv.Close()

	svc := NewService(testCatalogConfig(), testGateway(srv.URL), testContentStore(t), 1)
	if err := svc.RefreshForServices(context.Background(), []string{"203", "26", "372"}); err != nil {
		t.Fatalf("RefreshForServices: %v", err)
	}

	// empty movie page means the series fetch is skipped entirely
	if len(services) != 1 {
		t.Fatalf("expected exactly 1 upstream call, got %d (%v)", len(services), services)
	}
}

func TestRefreshDegradedMarksCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	content := testContentStore(t)
	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	ctx := context.Background()

	if err := svc.RefreshForServices(ctx, []string{"203"}); err != nil {
		t.Fatalf("degraded refresh should not error: %v", err)
	}

	// The marker must be written so the outage doesn't cause a retry storm.
	fresh, err := content.IsFresh(ctx, time.Hour)
	if err != nil {
		t.Fatalf("IsFresh: %v", err)
	}
	if !fresh {
		t.Error("expected refresh marker after degraded cycle")
	}
}

func TestGetDetailsHydratesSkeleton(t *testing.T) {
	var detailCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get/movie/id/tt0111161" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		detailCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"imdbId": "tt0111161",
			"title": "The Shawshank Redemption",
			"year": 1994,
			"genres": [{"name": "Drama"}],
			"cast": [{"name": "Tim Robbins"}]
		}`)
	}))
	defer srv.Close()

	content := testContentStore(t)
	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	ctx := context.Background()

	skeleton := models.ContentItem{
		ID:          "tt0111161",
		Title:       "The Shawshank Redemption",
		ContentType: models.ContentTypeMovie,
		ServiceIDs:  []string{"203"},
	}
	if err := content.Upsert(ctx, skeleton); err != nil {
		t.Fatalf("seed: %v", err)
	}

	item, err := svc.GetDetails(ctx, "tt0111161")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if !item.DetailsCached {
		t.Error("expected hydrated details")
	}
	if len(item.Cast) != 1 {
		t.Errorf("expected cast, got %v", item.Cast)
	}
	// service IDs from the skeleton survive the hydration merge
	if len(item.ServiceIDs) != 1 || item.ServiceIDs[0] != "203" {
		t.Errorf("expected merged service IDs, got %v", item.ServiceIDs)
	}

	// Second call is served from cache.
	if _, err := svc.GetDetails(ctx, "tt0111161"); err != nil {
		t.Fatalf("second GetDetails: %v", err)
	}
	if detailCalls.Load() != 1 {
		t.Errorf("expected 1 detail fetch, got %d", detailCalls.Load())
	}
}

func TestGetDetailsProbesMovieThenSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get/series/id/tt0944947":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"imdbId": "tt0944947", "title": "Game of Thrones", "year": 2011}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := NewService(testCatalogConfig(), testGateway(srv.URL), testContentStore(t), 1)
	item, err := svc.GetDetails(context.Background(), "tt0944947")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if item.ContentType != models.ContentTypeSeries {
		t.Errorf("expected series, got %s", item.ContentType)
	}
}

func TestGetDetailsUnknownID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewService(testCatalogConfig(), testGateway(srv.URL), testContentStore(t), 1)
	if _, err := svc.GetDetails(context.Background(), "tt0000000"); err != ErrContentNotFound {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestContentForServicesBackfill(t *testing.T) {
	var calls atomic.Int32
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	content := testContentStore(t)
	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	ctx := context.Background()

	items, err := svc.ContentForServices(ctx, []string{"203"}, "", 50)
	if err != nil {
		t.Fatalf("ContentForServices: %v", err)
	}
	// refresh caches 6 items for netflix, still under the floor of 10,
	// so popularity backfill adds unfiltered popular titles
	if len(items) < 6 {
		t.Errorf("expected at least the refreshed items, got %d", len(items))
	}
	ids := make(map[string]struct{})
	for _, item := range items {
		if _, dup := ids[item.ID]; dup {
			t.Errorf("duplicate item %s in results", item.ID)
		}
		ids[item.ID] = struct{}{}
	}
}

func TestTrendingShufflesAndCaches(t *testing.T) {
	var calls atomic.Int32
	srv := fakeProvider(t, &calls)
	defer srv.Close()

	content := testContentStore(t)
	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	ctx := context.Background()

	items, err := svc.Trending(ctx, []string{"203"}, 10)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(items) != 6 {
		t.Fatalf("expected 6 trending items, got %d", len(items))
	}

	// trending results are cached for later detail lookups
	count, err := content.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 6 {
		t.Errorf("expected trending items cached, got %d", count)
	}
}

func TestTrendingFallsBackToCacheWhenProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	content := testContentStore(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		err := content.Upsert(ctx, models.ContentItem{
			ID:          fmt.Sprintf("tt%07d", i),
			Title:       fmt.Sprintf("Cached %d", i),
			ContentType: models.ContentTypeMovie,
			ServiceIDs:  []string{"203"},
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc := NewService(testCatalogConfig(), testGateway(srv.URL), content, 1)
	items, err := svc.Trending(ctx, []string{"203"}, 10)
	if err != nil {
		t.Fatalf("Trending with cache should degrade, not fail: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("got %d cached trending items, want 4", len(items))
	}

	// With nothing cached either, the typed error surfaces.
	empty := testContentStore(t)
	svc = NewService(testCatalogConfig(), testGateway(srv.URL), empty, 1)
	if _, err := svc.Trending(ctx, []string{"203"}, 10); !errors.Is(err, upstream.ErrUnavailable) {
		t.Errorf("err = %v, want upstream.ErrUnavailable", err)
	}
}
