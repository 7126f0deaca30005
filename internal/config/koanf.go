// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/streampick/config.yaml",
	"/etc/streampick/config.yml",
}

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// sliceConfigPaths lists the config paths whose values may arrive as
// comma-separated strings from environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"discovery.fallback_ids",
}

// Load builds the effective configuration from three layers: struct
// defaults, an optional YAML file, and environment variables, in that
// order of increasing priority.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// STREAMPICK_UPSTREAM_API_KEY -> upstream.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, honoring
// the CONFIG_PATH override. Returns "" when no file is found, which is
// not an error: defaults plus env vars are a complete configuration.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf
// config paths. Only listed variables are consumed, so unrelated
// environment noise never leaks into the configuration.
var envMappings = map[string]string{
	"streampick_host":             "server.host",
	"streampick_port":             "server.port",
	"streampick_read_timeout":     "server.read_timeout",
	"streampick_write_timeout":    "server.write_timeout",
	"streampick_shutdown_timeout": "server.shutdown_timeout",
	"streampick_rate_limit":       "server.rate_limit",
	"streampick_cors_origins":     "server.cors_origins",

	"streampick_store_path":        "store.path",
	"streampick_store_in_memory":   "store.in_memory",
	"streampick_store_gc_interval": "store.gc_interval",

	"streampick_upstream_base_url":        "upstream.base_url",
	"streampick_upstream_api_key":         "upstream.api_key",
	"streampick_upstream_api_host":        "upstream.api_host",
	"streampick_upstream_country":         "upstream.country",
	"streampick_upstream_language":        "upstream.language",
	"streampick_upstream_timeout":         "upstream.request_timeout",
	"streampick_upstream_max_retries":     "upstream.max_retries",
	"streampick_upstream_rate_per_sec":    "upstream.rate_limit_per_sec",
	"streampick_upstream_rate_burst":      "upstream.rate_limit_burst",
	"streampick_breaker_threshold":        "upstream.breaker_threshold",
	"streampick_breaker_cooldown":         "upstream.breaker_cooldown",

	"streampick_refresh_interval": "catalog.refresh_interval",
	"streampick_page_size":        "catalog.page_size",
	"streampick_max_per_type":     "catalog.max_per_type",

	"streampick_discovery_batch_size":   "discovery.batch_size",
	"streampick_discovery_fallback_ids": "discovery.fallback_ids",

	"streampick_recommend_max_results":   "recommend.max_results",
	"streampick_recommend_neighbors":     "recommend.neighbor_count",
	"streampick_recommend_model_max_age": "recommend.model_max_age",

	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"log_caller":    "logging.caller",
	"log_timestamp": "logging.timestamp",

	// Accepted for compatibility with common RapidAPI tooling.
	"rapidapi_key":  "upstream.api_key",
	"rapidapi_host": "upstream.api_host",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unknown variables are dropped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
