// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package metrics exposes Prometheus instrumentation for the upstream
// gateway, the content cache, the discovery path, and recommender
// training. Collectors are registered through promauto at init and
// served on /metrics by the API router.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream gateway metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streampick_upstream_request_duration_seconds",
			Help:    "Duration of upstream metadata provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_upstream_retries_total",
			Help: "Total number of upstream request retry attempts",
		},
		[]string{"operation"},
	)

	UpstreamBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streampick_upstream_breaker_open",
			Help: "Whether the upstream circuit breaker is open (1) or closed (0)",
		},
	)

	// Content cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_cache_hits_total",
			Help: "Total number of content cache hits",
		},
		[]string{"lookup"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_cache_misses_total",
			Help: "Total number of content cache misses",
		},
		[]string{"lookup"},
	)

	CachedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "streampick_cached_items",
			Help: "Number of content items currently in the cache",
		},
	)

	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_refresh_runs_total",
			Help: "Total number of catalog refresh cycles by outcome",
		},
		[]string{"outcome"}, // "completed", "skipped_fresh", "failed"
	)

	// Discovery metrics
	DiscoveryServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_discovery_served_total",
			Help: "Total discovery cards served by source tier",
		},
		[]string{"tier"}, // "cache_services", "upstream", "cache_any", "fallback"
	)

	// Recommender metrics
	ModelTrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streampick_model_training_duration_seconds",
			Help:    "Duration of recommender model training in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"engine"},
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streampick_recommendations_served_total",
			Help: "Total recommendation requests served by engine",
		},
		[]string{"engine", "cold_start"},
	)

	// HTTP metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "streampick_api_request_duration_seconds",
			Help:    "Duration of HTTP API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)
)

// RecordUpstreamRequest records one completed upstream request attempt
// chain, including the terminal status code (0 for transport failures).
func RecordUpstreamRequest(operation string, status int, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, endpoint string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, endpoint, strconv.Itoa(status)).Observe(duration.Seconds())
}

// RecordTraining records a recommender training run.
func RecordTraining(engine string, duration time.Duration) {
	ModelTrainingDuration.WithLabelValues(engine).Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(engine string, coldStart bool) {
	RecommendationsServed.WithLabelValues(engine, strconv.FormatBool(coldStart)).Inc()
}

// SetBreakerOpen updates the circuit breaker gauge.
func SetBreakerOpen(open bool) {
	if open {
		UpstreamBreakerState.Set(1)
	} else {
		UpstreamBreakerState.Set(0)
	}
}
