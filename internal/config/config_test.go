// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefaultServiceMapping(t *testing.T) {
	m := DefaultServiceMapping()
	if len(m) != 10 {
		t.Fatalf("expected 10 services, got %d", len(m))
	}
	tests := []struct {
		id   string
		slug string
	}{
		{"203", "netflix"},
		{"26", "prime"},
		{"372", "disney"},
		{"157", "hulu"},
		{"387", "hbo"},
	}
	for _, tt := range tests {
		if got := m[tt.id]; got != tt.slug {
			t.Errorf("service %s: expected %s, got %s", tt.id, tt.slug, got)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "invalid base url",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "ftp://example.com" },
			wantErr: "upstream.base_url",
		},
		{
			name:    "zero retries",
			mutate:  func(c *Config) { c.Upstream.MaxRetries = 0 },
			wantErr: "upstream.max_retries",
		},
		{
			name:    "empty services",
			mutate:  func(c *Config) { c.Upstream.Services = nil },
			wantErr: "upstream.services",
		},
		{
			name:    "negative refresh interval",
			mutate:  func(c *Config) { c.Catalog.RefreshInterval = -time.Hour },
			wantErr: "catalog.refresh_interval",
		},
		{
			name:    "bad positive threshold",
			mutate:  func(c *Config) { c.Recommend.MinPositiveRate = 6 },
			wantErr: "recommend.min_positive_rate",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"STREAMPICK_PORT", "server.port"},
		{"STREAMPICK_UPSTREAM_API_KEY", "upstream.api_key"},
		{"RAPIDAPI_KEY", "upstream.api_key"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%s) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STREAMPICK_PORT", "9090")
	t.Setenv("STREAMPICK_UPSTREAM_API_KEY", "test-key")
	t.Setenv("STREAMPICK_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv(ConfigPathEnvVar, "/nonexistent/streampick.yaml")

	// CONFIG_PATH pointing at a missing file should fail loudly rather
	// than fall back silently.
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}

	t.Setenv(ConfigPathEnvVar, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Upstream.APIKey != "test-key" {
		t.Errorf("expected api key from env, got %q", cfg.Upstream.APIKey)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("expected %d cors origins, got %v", len(want), cfg.Server.CORSOrigins)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("cors origin %d: expected %q, got %q", i, want[i], cfg.Server.CORSOrigins[i])
		}
	}
}
