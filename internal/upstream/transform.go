// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package upstream

import (
	"time"

	"github.com/streampick/streampick/internal/models"
)

// transformResults converts a page of provider results, dropping entries
// without an IMDb identifier. contentType may be empty for mixed-type
// title search results.
func (g *Gateway) transformResults(results []titleDTO, contentType models.ContentType) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(results))
	for _, dto := range results {
		if dto.ImdbID == "" {
			continue
		}
		items = append(items, g.transformTitle(dto, contentType))
	}
	return items
}

// transformTitle maps one provider record to the canonical ContentItem.
func (g *Gateway) transformTitle(dto titleDTO, contentType models.ContentType) models.ContentItem {
	item := models.ContentItem{
		ID:             dto.ImdbID,
		Title:          dto.Title,
		ContentType:    contentType,
		ReleaseYear:    dto.Year,
		RuntimeMinutes: dto.Runtime,
		PlotOverview:   dto.Overview,
		PosterURL:      pickImage(dto.PosterURLs),
		BackdropURL:    pickImage(dto.BackdropURLs),
		TrailerURL:     dto.Video,
		CachedAt:       time.Now().UTC(),
	}

	if dto.Rating > 0 {
		item.UserRating = float64(dto.Rating) / 10.0
	}

	item.GenreNames = names(dto.Genres)
	item.Cast = names(dto.Cast)
	item.Directors = names(dto.Directors)

	// Mixed title-search results arrive with an empty content type; the
	// only reliable signal is which detail endpoint the ID resolves on,
	// so callers resolve it lazily.
	item.ServiceIDs, item.Sources = g.transformStreamingInfo(dto.StreamingInfo)
	return item
}

// transformStreamingInfo flattens the provider's per-country availability
// map into service IDs and watch options, keeping only services present
// in the configured mapping.
func (g *Gateway) transformStreamingInfo(info map[string]serviceMap) ([]string, []models.WatchOption) {
	countryInfo, ok := info[g.cfg.Country]
	if !ok {
		return nil, nil
	}

	var serviceIDs []string
	var sources []models.WatchOption
	for slug, options := range countryInfo {
		serviceID, known := g.reverse[slug]
		if !known {
			continue
		}
		serviceIDs = append(serviceIDs, serviceID)
		for _, opt := range options {
			sources = append(sources, models.WatchOption{
				ServiceID: serviceID,
				Type:      opt.Type,
				Link:      opt.Link,
				Price:     opt.Price.Formatted,
				Quality:   opt.Quality,
			})
		}
	}
	return serviceIDs, sources
}

func names(dtos []namedDTO) []string {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]string, 0, len(dtos))
	for _, d := range dtos {
		if d.Name != "" {
			out = append(out, d.Name)
		}
	}
	return out
}

// pickImage prefers the original-resolution asset, then the 500px one,
// then anything present.
func pickImage(urls map[string]string) string {
	if len(urls) == 0 {
		return ""
	}
	if u := urls["original"]; u != "" {
		return u
	}
	if u := urls["500"]; u != "" {
		return u
	}
	for _, u := range urls {
		if u != "" {
			return u
		}
	}
	return ""
}
