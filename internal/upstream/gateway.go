// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/metrics"
	"github.com/streampick/streampick/internal/models"
)

var (
	// ErrNotFound is returned when the provider has no entry for an ID.
	ErrNotFound = errors.New("upstream: content not found")

	// ErrUnavailable is returned when every retry attempt failed or the
	// circuit breaker is open. Callers degrade to cached content.
	ErrUnavailable = errors.New("upstream: provider unavailable")
)

// Gateway is the single client for the streaming-availability provider.
// It is safe for concurrent use.
type Gateway struct {
	cfg     config.UpstreamConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	reverse map[string]string // provider slug -> catalog service ID
}

// requestOptions tightens the retry budget for latency-sensitive paths.
// The discovery selector uses a lower budget than cache refreshes.
type requestOptions struct {
	maxRetries int
	timeout    time.Duration
}

// NewGateway builds a Gateway from configuration.
func NewGateway(cfg config.UpstreamConfig) *Gateway {
	reverse := make(map[string]string, len(cfg.Services))
	for id, slug := range cfg.Services {
		reverse[slug] = id
	}

	settings := gobreaker.Settings{
		Name:    "upstream",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerThreshold
		},
		IsSuccessful: func(err error) bool {
			// A 404 is a definitive answer from a healthy provider.
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerOpen(to == gobreaker.StateOpen)
			logging.Warn().
				Str("component", "upstream").
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Gateway{
		cfg: cfg,
		client: &http.Client{
			// Per-attempt deadline is applied via request context; this
			// is the hard ceiling for a single attempt.
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst),
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		reverse: reverse,
	}
}

// defaultOptions returns the full retry budget from configuration.
func (g *Gateway) defaultOptions() requestOptions {
	return requestOptions{maxRetries: g.cfg.MaxRetries, timeout: g.cfg.RequestTimeout}
}

// lowLatencyOptions returns a reduced budget for interactive paths.
func (g *Gateway) lowLatencyOptions() requestOptions {
	retries := g.cfg.MaxRetries - 1
	if retries < 1 {
		retries = 1
	}
	timeout := 5 * time.Second
	if g.cfg.RequestTimeout < timeout {
		timeout = g.cfg.RequestTimeout
	}
	return requestOptions{maxRetries: retries, timeout: timeout}
}

// ServiceSlug resolves a catalog service ID to the provider's slug.
func (g *Gateway) ServiceSlug(serviceID string) (string, bool) {
	slug, ok := g.cfg.Services[serviceID]
	return slug, ok
}

// SearchByService fetches the most popular titles of one content type on
// one streaming service. genre is optional. Interactive callers set
// lowLatency to shrink the retry budget.
func (g *Gateway) SearchByService(ctx context.Context, serviceID string, contentType models.ContentType, genre string, lowLatency bool) ([]models.ContentItem, error) {
	slug, ok := g.ServiceSlug(serviceID)
	if !ok {
		return nil, fmt.Errorf("upstream: unknown service ID %q", serviceID)
	}

	q := url.Values{}
	q.Set("country", g.cfg.Country)
	q.Set("service", slug)
	q.Set("type", string(contentType))
	q.Set("page", "1")
	q.Set("language", g.cfg.Language)
	q.Set("sort_by", "popularity")
	if genre != "" {
		q.Set("genre", genre)
	}

	opts := g.defaultOptions()
	if lowLatency {
		opts = g.lowLatencyOptions()
	}

	body, err := g.doRequest(ctx, "search_basic", "/search/basic?"+q.Encode(), opts)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("upstream: decode search response: %w", err)
	}
	return g.transformResults(resp.Results, contentType), nil
}

// SearchPopular fetches popular titles of one content type with no
// service filter. Used for popularity backfill when the cache is empty.
func (g *Gateway) SearchPopular(ctx context.Context, contentType models.ContentType) ([]models.ContentItem, error) {
	q := url.Values{}
	q.Set("country", g.cfg.Country)
	q.Set("type", string(contentType))
	q.Set("page", "1")
	q.Set("language", g.cfg.Language)
	q.Set("sort_by", "popularity")

	body, err := g.doRequest(ctx, "search_popular", "/search/basic?"+q.Encode(), g.defaultOptions())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("upstream: decode search response: %w", err)
	}
	return g.transformResults(resp.Results, contentType), nil
}

// SearchTitle looks up titles by free-text query across all services.
func (g *Gateway) SearchTitle(ctx context.Context, query string) ([]models.ContentItem, error) {
	q := url.Values{}
	q.Set("title", query)
	q.Set("country", g.cfg.Country)
	q.Set("show_type", "all")
	q.Set("output_language", g.cfg.Language)

	body, err := g.doRequest(ctx, "search_title", "/search/title?"+q.Encode(), g.defaultOptions())
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("upstream: decode title search response: %w", err)
	}
	// Title search mixes movies and series; the transform infers the
	// type per item from the payload where possible.
	return g.transformResults(resp.Results, ""), nil
}

// GetDetails fetches the full record for one title. contentType selects
// the detail endpoint; callers that don't know the type try movie first
// and fall back to series on ErrNotFound.
func (g *Gateway) GetDetails(ctx context.Context, id string, contentType models.ContentType) (models.ContentItem, error) {
	if !contentType.Valid() {
		return models.ContentItem{}, fmt.Errorf("upstream: invalid content type %q", contentType)
	}

	path := fmt.Sprintf("/get/%s/id/%s?country=%s", contentType, url.PathEscape(id), g.cfg.Country)
	body, err := g.doRequest(ctx, "get_details", path, g.defaultOptions())
	if err != nil {
		return models.ContentItem{}, err
	}

	var dto titleDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return models.ContentItem{}, fmt.Errorf("upstream: decode detail response: %w", err)
	}
	if dto.Title == "" {
		return models.ContentItem{}, ErrNotFound
	}

	item := g.transformTitle(dto, contentType)
	if item.ID == "" {
		// detail endpoints are keyed by the requested ID even when the
		// payload omits imdbId
		item.ID = id
	}
	item.DetailsCached = true
	item.DetailsRefreshedAt = time.Now().UTC()
	return item, nil
}

// doRequest performs one provider call with rate limiting, circuit
// breaking, and bounded retries. Attempt n sleeps 2^n seconds before
// retrying, matching the provider's published backoff guidance.
func (g *Gateway) doRequest(ctx context.Context, operation, path string, opts requestOptions) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < opts.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.UpstreamRetries.WithLabelValues(operation).Inc()
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := g.breaker.Execute(func() ([]byte, error) {
			return g.attempt(ctx, operation, path, opts.timeout)
		})
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		logging.Warn().
			Str("component", "upstream").
			Str("operation", operation).
			Int("attempt", attempt+1).
			Int("max_retries", opts.maxRetries).
			Err(err).
			Msg("upstream request failed")
	}

	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// attempt performs a single HTTP round trip with its own deadline.
func (g *Gateway) attempt(ctx context.Context, operation, path string, timeout time.Duration) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, g.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", g.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", g.cfg.APIHost)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(operation, 0, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	metrics.RecordUpstreamRequest(operation, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("upstream: rate limited (status %d)", resp.StatusCode)
	default:
		return nil, fmt.Errorf("upstream: unexpected status %d", resp.StatusCode)
	}
}
