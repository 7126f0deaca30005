// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package discovery

import (
	"github.com/streampick/streampick/internal/models"
)

// builtinFallbacks returns the last-resort cards. These are universally
// recognizable titles served only when the cache is empty and the
// provider is unreachable, so a brand-new install still has a working
// swipe deck.
func builtinFallbacks() []models.ContentItem {
	return []models.ContentItem{
		{
			ID:             "tt0111161",
			Title:          "The Shawshank Redemption",
			ContentType:    models.ContentTypeMovie,
			ReleaseYear:    1994,
			RuntimeMinutes: 142,
			RatingCert:     "R",
			PosterURL:      "https://m.media-amazon.com/images/M/MV5BNDE3ODcxYzMtY2YzZC00NmNlLWJiNDMtZDViZWM2MzIxZDYwXkEyXkFqcGdeQXVyNjAwNDUxODI@._V1_.jpg",
			PlotOverview:   "Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency.",
		},
		{
			ID:             "tt0068646",
			Title:          "The Godfather",
			ContentType:    models.ContentTypeMovie,
			ReleaseYear:    1972,
			RuntimeMinutes: 175,
			RatingCert:     "R",
			PosterURL:      "https://m.media-amazon.com/images/M/MV5BM2MyNjYxNmUtYTAwNi00MTYxLWJmNWYtYzZlODY3ZTk3OTFlXkEyXkFqcGdeQXVyNzkwMjQ5NzM@._V1_.jpg",
			PlotOverview:   "The aging patriarch of an organized crime dynasty transfers control of his clandestine empire to his reluctant son.",
		},
		{
			ID:             "tt0944947",
			Title:          "Game of Thrones",
			ContentType:    models.ContentTypeSeries,
			ReleaseYear:    2011,
			RuntimeMinutes: 60,
			RatingCert:     "TV-MA",
			PosterURL:      "https://m.media-amazon.com/images/M/MV5BYTRiNDQwYzAtMzVlZS00NTI5LWJjYjUtMzkwNTUzMWMxZTllXkEyXkFqcGdeQXVyNjIyNDgwMzM@._V1_.jpg",
			PlotOverview:   "Nine noble families fight for control over the lands of Westeros, while an ancient enemy returns after being dormant for millennia.",
		},
		{
			ID:             "tt0108778",
			Title:          "Friends",
			ContentType:    models.ContentTypeSeries,
			ReleaseYear:    1994,
			RuntimeMinutes: 22,
			RatingCert:     "TV-14",
			PosterURL:      "https://m.media-amazon.com/images/M/MV5BNDVkYjU0MzctMWRmZi00NTkxLTgwZWEtOWVhYjZlYjllYmU4XkEyXkFqcGdeQXVyNTA4NzY1MzY@._V1_.jpg",
			PlotOverview:   "Follows the personal and professional lives of six twenty to thirty-something-year-old friends living in Manhattan.",
		},
		{
			ID:             "tt0455275",
			Title:          "The Office",
			ContentType:    models.ContentTypeSeries,
			ReleaseYear:    2005,
			RuntimeMinutes: 22,
			RatingCert:     "TV-14",
			PosterURL:      "https://m.media-amazon.com/images/M/MV5BMDNkOTE4NDQtMTNmYi00MWE0LWE4ZTktYTc0NzhhNWIzNzJiXkEyXkFqcGdeQXVyMzQ2MDI5NjU@._V1_.jpg",
			PlotOverview:   "A mockumentary on a group of typical office workers, where the workday consists of ego clashes, inappropriate behavior, and tedium.",
		},
	}
}
