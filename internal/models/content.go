// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package models

import (
	"time"
)

// ContentType distinguishes the two kinds of catalog entries.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeSeries ContentType = "series"
)

// Valid reports whether ct is one of the known content types.
func (ct ContentType) Valid() bool {
	return ct == ContentTypeMovie || ct == ContentTypeSeries
}

// WatchOption describes one place a title can be watched: the streaming
// service carrying it, the kind of availability, and a deep link.
//
// Type values follow the upstream API: "sub" (subscription), "free",
// "rent", "buy", "addon".
type WatchOption struct {
	ServiceID string `json:"service_id"`
	Type      string `json:"type,omitempty"`
	Link      string `json:"link,omitempty"`
	Price     string `json:"price,omitempty"`
	Quality   string `json:"quality,omitempty"`
}

// ContentItem is the canonical cached representation of a movie or series.
// Items are keyed by ID (an IMDb identifier such as "tt0111161") in the
// content store. ServiceIDs is the deduplicated union of every streaming
// service the item has been observed on across refreshes; Sources carries
// the per-service availability detail.
//
// DetailsCached distinguishes skeleton entries produced by catalog listing
// endpoints from fully hydrated entries fetched through the detail lookup:
// listing results lack cast, directors, and sources, and a detail fetch
// upgrades the entry in place.
type ContentItem struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	ContentType        ContentType   `json:"content_type"`
	ReleaseYear        int           `json:"release_year,omitempty"`
	RuntimeMinutes     int           `json:"runtime_minutes,omitempty"`
	RatingCert         string        `json:"rating_certification,omitempty"`
	UserRating         float64       `json:"user_rating,omitempty"`
	PosterURL          string        `json:"poster_url,omitempty"`
	BackdropURL        string        `json:"backdrop_url,omitempty"`
	PlotOverview       string        `json:"plot_overview,omitempty"`
	GenreNames         []string      `json:"genre_names,omitempty"`
	Cast               []string      `json:"cast,omitempty"`
	Directors          []string      `json:"directors,omitempty"`
	TrailerURL         string        `json:"trailer_url,omitempty"`
	ServiceIDs         []string      `json:"service_ids,omitempty"`
	Sources            []WatchOption `json:"sources,omitempty"`
	DetailsCached      bool          `json:"details_cached"`
	CachedAt           time.Time     `json:"cached_at"`
	DetailsRefreshedAt time.Time     `json:"details_refreshed_at,omitempty"`
}

// HasAnyService reports whether the item is available on at least one of
// the given service IDs. An empty filter matches everything.
func (c *ContentItem) HasAnyService(serviceIDs []string) bool {
	if len(serviceIDs) == 0 {
		return true
	}
	for _, want := range serviceIDs {
		for _, have := range c.ServiceIDs {
			if want == have {
				return true
			}
		}
	}
	return false
}

// MergeServices adds the given service IDs to the item, preserving order
// and skipping duplicates.
func (c *ContentItem) MergeServices(serviceIDs []string) {
	for _, id := range serviceIDs {
		found := false
		for _, have := range c.ServiceIDs {
			if have == id {
				found = true
				break
			}
		}
		if !found {
			c.ServiceIDs = append(c.ServiceIDs, id)
		}
	}
}

// RefreshMarker records when a refresh cycle last completed. A single
// marker gates the 24-hour refresh policy: while it is fresh, upstream
// refresh calls are suppressed for every user.
type RefreshMarker struct {
	RefreshedAt time.Time `json:"refreshed_at"`
}

// StreamingService describes one supported provider, mapping the numeric
// catalog identifier used by clients to the slug the upstream API expects.
type StreamingService struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}
