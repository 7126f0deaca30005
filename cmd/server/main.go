// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package main is the entry point for the StreamPick server.
//
// StreamPick is a content discovery and recommendation backend for
// streaming services: it caches streaming-availability metadata from an
// upstream provider, deals a swipe-style discovery feed, and serves
// personalized recommendations from content-based and collaborative
// filtering engines.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional config file (Koanf v2)
//  2. Store: BadgerDB document store (content cache, profiles, model blobs)
//  3. Upstream Gateway: rate-limited, circuit-broken provider client
//  4. Catalog, Discovery, Recommendation services
//  5. HTTP Server: REST API with Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file, built-in
// defaults. The upstream provider credentials come from RAPIDAPI_KEY
// and RAPIDAPI_HOST.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests within the
// configured timeout, and closes the store last so every handler sees
// a live database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/streampick/streampick/internal/api"
	"github.com/streampick/streampick/internal/catalog"
	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/discovery"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/recommend"
	"github.com/streampick/streampick/internal/store"
	"github.com/streampick/streampick/internal/upstream"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: cfg.Logging.Timestamp,
	})

	logging.Info().
		Str("version", version).
		Str("store_path", cfg.Store.Path).
		Int("services", len(cfg.Upstream.Services)).
		Msg("Starting StreamPick")

	if cfg.Upstream.APIKey == "" {
		logging.Warn().Msg("No upstream API key configured; provider calls will be rejected")
	}

	db, err := store.Open(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go store.StartGC(ctx, db, cfg.Store.GCInterval)

	contentStore := store.NewContentStore(db)
	userStore := store.NewUserStore(db)
	modelStore := store.NewModelStore(db)

	gateway := upstream.NewGateway(cfg.Upstream)
	seed := time.Now().UnixNano()
	catalogSvc := catalog.NewService(cfg.Catalog, gateway, contentStore, seed)
	selector := discovery.NewSelector(cfg.Discovery, gateway, contentStore, seed)

	recommender := recommend.NewService(cfg.Recommend, userStore, contentStore, modelStore)
	if err := recommender.LoadPersisted(ctx); err != nil {
		logging.Error().Err(err).Msg("Failed to load persisted models; starting cold")
	}

	handler := api.NewHandler(cfg, catalogSvc, selector, recommender, userStore, contentStore, version)
	router := api.NewRouter(handler, cfg.Server)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Warm the models in the background so the first recommendation
	// request does not pay the training cost.
	go func() {
		if err := recommender.MaybeRebuild(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn().Err(err).Msg("Initial model build failed")
		}
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown did not complete")
		if err := server.Close(); err != nil {
			logging.Error().Err(err).Msg("Forced close failed")
		}
	}

	logging.Info().Msg("Server stopped")
}
