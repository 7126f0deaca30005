// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package config

import (
	"time"
)

// Config is the root configuration for the StreamPick server. Values are
// layered: struct defaults, then an optional YAML file, then environment
// variables, with later layers overriding earlier ones.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Upstream  UpstreamConfig  `koanf:"upstream"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Discovery DiscoveryConfig `koanf:"discovery"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RateLimit       int           `koanf:"rate_limit"`        // requests per window per IP
	RateLimitWindow time.Duration `koanf:"rate_limit_window"` //
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// StoreConfig controls the embedded Badger document store.
type StoreConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// UpstreamConfig controls the streaming-availability metadata provider.
// Services maps the numeric catalog identifiers used by clients to the
// provider's service slugs.
type UpstreamConfig struct {
	BaseURL          string            `koanf:"base_url"`
	APIKey           string            `koanf:"api_key"`
	APIHost          string            `koanf:"api_host"`
	Country          string            `koanf:"country"`
	Language         string            `koanf:"language"`
	RequestTimeout   time.Duration     `koanf:"request_timeout"`
	MaxRetries       int               `koanf:"max_retries"`
	RateLimitPerSec  float64           `koanf:"rate_limit_per_sec"`
	RateLimitBurst   int               `koanf:"rate_limit_burst"`
	BreakerThreshold uint32            `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration     `koanf:"breaker_cooldown"`
	Services         map[string]string `koanf:"services"`
}

// CatalogConfig controls the cache refresh policy.
type CatalogConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	PageSize        int           `koanf:"page_size"`
	MaxPerType      int           `koanf:"max_per_type"`
}

// DiscoveryConfig controls the swipe-card selection path.
type DiscoveryConfig struct {
	BatchSize        int      `koanf:"batch_size"`
	FallbackIDs      []string `koanf:"fallback_ids"`
	DetailFetchLimit int      `koanf:"detail_fetch_limit"`
}

// RecommendConfig controls both recommendation engines.
type RecommendConfig struct {
	MaxResults      int           `koanf:"max_results"`
	SimilarPerItem  int           `koanf:"similar_per_item"`
	NeighborCount   int           `koanf:"neighbor_count"`
	ModelMaxAge     time.Duration `koanf:"model_max_age"`
	MinPositiveRate int           `koanf:"min_positive_rate"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Caller    bool   `koanf:"caller"`
	Timestamp bool   `koanf:"timestamp"`
}

// defaultConfig returns a Config with every field set to its default.
// These are loaded first and overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       120,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Store: StoreConfig{
			Path:       "/data/streampick",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Upstream: UpstreamConfig{
			BaseURL:          "https://streaming-availability.p.rapidapi.com",
			APIKey:           "",
			APIHost:          "streaming-availability.p.rapidapi.com",
			Country:          "us",
			Language:         "en",
			RequestTimeout:   8 * time.Second,
			MaxRetries:       3,
			RateLimitPerSec:  2,
			RateLimitBurst:   4,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			Services:         DefaultServiceMapping(),
		},
		Catalog: CatalogConfig{
			RefreshInterval: 24 * time.Hour,
			PageSize:        25,
			MaxPerType:      20,
		},
		Discovery: DiscoveryConfig{
			BatchSize:        10,
			FallbackIDs:      DefaultFallbackIDs(),
			DetailFetchLimit: 5,
		},
		Recommend: RecommendConfig{
			MaxResults:      20,
			SimilarPerItem:  20,
			NeighborCount:   20,
			ModelMaxAge:     24 * time.Hour,
			MinPositiveRate: 4,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
	}
}

// DefaultServiceMapping returns the built-in catalog-ID to provider-slug
// table for the supported streaming services.
func DefaultServiceMapping() map[string]string {
	return map[string]string{
		"203": "netflix",
		"26":  "prime",
		"372": "disney",
		"157": "hulu",
		"387": "hbo",
		"444": "paramount",
		"389": "peacock",
		"371": "apple",
		"442": "discovery",
		"443": "espn",
	}
}

// DefaultFallbackIDs returns the well-known titles served when the cache,
// the upstream provider, and the popularity path all come up empty.
func DefaultFallbackIDs() []string {
	return []string{
		"tt0111161", // The Shawshank Redemption
		"tt0068646", // The Godfather
		"tt0944947", // Game of Thrones
		"tt0108778", // Friends
		"tt0455275", // The Office
	}
}

// ServiceNames maps provider slugs to display names for the
// /streaming-services endpoint.
var ServiceNames = map[string]string{
	"netflix":   "Netflix",
	"prime":     "Prime Video",
	"disney":    "Disney+",
	"hulu":      "Hulu",
	"hbo":       "Max",
	"paramount": "Paramount+",
	"peacock":   "Peacock",
	"apple":     "Apple TV+",
	"discovery": "Discovery+",
	"espn":      "ESPN+",
	"mubi":      "MUBI",
	"starz":     "Starz",
}
