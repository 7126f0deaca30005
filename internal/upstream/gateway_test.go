// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/models"
)

func testConfig(baseURL string) config.UpstreamConfig {
	return config.UpstreamConfig{
		BaseURL:          baseURL,
		APIKey:           "test-key",
		APIHost:          "test-host",
		Country:          "us",
		Language:         "en",
		RequestTimeout:   2 * time.Second,
		MaxRetries:       3,
		RateLimitPerSec:  1000,
		RateLimitBurst:   1000,
		BreakerThreshold: 50,
		BreakerCooldown:  time.Second,
		Services:         config.DefaultServiceMapping(),
	}
}

const searchBody = `{
	"results": [
		{
			"imdbId": "tt0111161",
			"title": "The Shawshank Redemption",
			"year": 1994,
			"runtime": 142,
			"rating": 93,
			"overview": "Two imprisoned men bond over a number of years.",
			"posterURLs": {"original": "https://img.example/orig.jpg", "500": "https://img.example/500.jpg"},
			"streamingInfo": {"us": {"netflix": [{"type": "sub", "link": "https://netflix.example/watch"}]}}
		},
		{
			"title": "No IMDb ID",
			"year": 2001
		}
	]
}`

func TestSearchByService(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-rapidapi-key")
		if r.URL.Query().Get("service") != "netflix" {
			t.Errorf("expected service=netflix, got %s", r.URL.Query().Get("service"))
		}
		if r.URL.Query().Get("sort_by") != "popularity" {
			t.Errorf("expected sort_by=popularity, got %s", r.URL.Query().Get("sort_by"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL))
	items, err := g.SearchByService(context.Background(), "203", models.ContentTypeMovie, "", false)
	if err != nil {
		t.Fatalf("SearchByService: %v", err)
	}
	if gotPath != "/search/basic" {
		t.Errorf("expected path /search/basic, got %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected api key header, got %q", gotKey)
	}

	// the entry without an imdbId must be dropped
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.ID != "tt0111161" {
		t.Errorf("expected id tt0111161, got %s", item.ID)
	}
	if item.ContentType != models.ContentTypeMovie {
		t.Errorf("expected content type movie, got %s", item.ContentType)
	}
	if item.PosterURL != "https://img.example/orig.jpg" {
		t.Errorf("expected original poster, got %s", item.PosterURL)
	}
	if item.UserRating != 9.3 {
		t.Errorf("expected rating 9.3, got %v", item.UserRating)
	}
	if len(item.ServiceIDs) != 1 || item.ServiceIDs[0] != "203" {
		t.Errorf("expected service IDs [203], got %v", item.ServiceIDs)
	}
	if len(item.Sources) != 1 || item.Sources[0].Type != "sub" {
		t.Errorf("expected one sub source, got %v", item.Sources)
	}
}

func TestSearchByServiceUnknownService(t *testing.T) {
	g := NewGateway(testConfig("http://unused.example"))
	if _, err := g.SearchByService(context.Background(), "999", models.ContentTypeMovie, "", false); err == nil {
		t.Fatal("expected error for unknown service ID")
	}
}

func TestGetDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get/movie/id/tt0111161" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"imdbId": "tt0111161",
			"title": "The Shawshank Redemption",
			"year": 1994,
			"runtime": 142,
			"genres": [{"name": "Drama"}],
			"cast": [{"name": "Tim Robbins"}, {"name": "Morgan Freeman"}],
			"directors": [{"name": "Frank Darabont"}],
			"streamingInfo": {"us": {"netflix": [{"type": "sub", "link": "https://netflix.example/watch"}]}}
		}`))
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL))
	item, err := g.GetDetails(context.Background(), "tt0111161", models.ContentTypeMovie)
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if !item.DetailsCached {
		t.Error("expected DetailsCached to be set")
	}
	if len(item.Cast) != 2 || item.Cast[0] != "Tim Robbins" {
		t.Errorf("unexpected cast %v", item.Cast)
	}
	if len(item.Directors) != 1 || item.Directors[0] != "Frank Darabont" {
		t.Errorf("unexpected directors %v", item.Directors)
	}
	if len(item.GenreNames) != 1 || item.GenreNames[0] != "Drama" {
		t.Errorf("unexpected genres %v", item.GenreNames)
	}
}

func TestGetDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL))
	_, err := g.GetDetails(context.Background(), "tt9999999", models.ContentTypeMovie)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDoRequestRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	g := NewGateway(cfg)

	start := time.Now()
	_, err := g.SearchPopular(context.Background(), models.ContentTypeMovie)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
	// one backoff of 2^1 seconds between the two attempts
	if elapsed := time.Since(start); elapsed < 2*time.Second {
		t.Errorf("expected at least 2s of backoff, elapsed %s", elapsed)
	}
}

func TestDoRequestRecoversAfterRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL))
	items, err := g.SearchPopular(context.Background(), models.ContentTypeMovie)
	if err != nil {
		t.Fatalf("expected recovery on retry, got %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestDoRequestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.SearchPopular(ctx, models.ContentTypeMovie)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestPickImage(t *testing.T) {
	tests := []struct {
		name string
		urls map[string]string
		want string
	}{
		{"nil map", nil, ""},
		{"original preferred", map[string]string{"original": "a", "500": "b"}, "a"},
		{"falls back to 500", map[string]string{"500": "b", "92": "c"}, "b"},
		{"any non-empty", map[string]string{"92": "c"}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickImage(tt.urls); got != tt.want {
				t.Errorf("pickImage() = %q, want %q", got, tt.want)
			}
		})
	}
}
