// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the effective configuration is internally
// consistent. It does not require an upstream API key: the server can run
// in cache-only mode and serve whatever the store already holds.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %d", c.Server.RateLimit)
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		return fmt.Errorf("upstream.base_url must start with http:// or https://, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.MaxRetries < 1 {
		return fmt.Errorf("upstream.max_retries must be at least 1, got %d", c.Upstream.MaxRetries)
	}
	if c.Upstream.RequestTimeout <= 0 {
		return fmt.Errorf("upstream.request_timeout must be positive, got %s", c.Upstream.RequestTimeout)
	}
	if len(c.Upstream.Services) == 0 {
		return fmt.Errorf("upstream.services must not be empty")
	}
	for id, slug := range c.Upstream.Services {
		if id == "" || slug == "" {
			return fmt.Errorf("upstream.services entries must have non-empty id and slug")
		}
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.RefreshInterval <= 0 {
		return fmt.Errorf("catalog.refresh_interval must be positive, got %s", c.Catalog.RefreshInterval)
	}
	if c.Catalog.MaxPerType < 1 {
		return fmt.Errorf("catalog.max_per_type must be at least 1, got %d", c.Catalog.MaxPerType)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.MaxResults < 1 {
		return fmt.Errorf("recommend.max_results must be at least 1, got %d", c.Recommend.MaxResults)
	}
	if c.Recommend.MinPositiveRate < 1 || c.Recommend.MinPositiveRate > 5 {
		return fmt.Errorf("recommend.min_positive_rate must be between 1 and 5, got %d", c.Recommend.MinPositiveRate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, fatal, panic; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
