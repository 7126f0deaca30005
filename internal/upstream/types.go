// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package upstream

// Provider wire types. Field names follow the provider's JSON exactly;
// only the fields the transform consumes are declared.

// searchResponse is the body of /search/basic and /search/title.
type searchResponse struct {
	Results []titleDTO `json:"results"`
}

// titleDTO is one catalog entry as the provider returns it. The same
// shape is returned by the detail endpoints at the top level.
type titleDTO struct {
	ImdbID        string                `json:"imdbId"`
	TmdbID        int                   `json:"tmdbId"`
	Title         string                `json:"title"`
	Year          int                   `json:"year"`
	Runtime       int                   `json:"runtime"`
	Rating        int                   `json:"rating"` // 0-100 aggregate score
	Overview      string                `json:"overview"`
	PosterURLs    map[string]string     `json:"posterURLs"`
	BackdropURLs  map[string]string     `json:"backdropURLs"`
	Genres        []namedDTO            `json:"genres"`
	Cast          []namedDTO            `json:"cast"`
	Directors     []namedDTO            `json:"directors"`
	Video         string                `json:"video"`
	StreamingInfo map[string]serviceMap `json:"streamingInfo"`
}

// serviceMap maps a provider slug ("netflix") to its availability options
// within one country.
type serviceMap map[string][]streamOptionDTO

type namedDTO struct {
	Name string `json:"name"`
}

type streamOptionDTO struct {
	Type    string   `json:"type"`
	Link    string   `json:"link"`
	Quality string   `json:"quality"`
	Price   priceDTO `json:"price"`
}

type priceDTO struct {
	Formatted string `json:"formatted"`
}
