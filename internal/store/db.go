// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
)

// Open opens the BadgerDB described by the configuration. The caller
// owns the returned handle and must Close it on shutdown.
func Open(cfg config.StoreConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil // Badger's own logger is too chatty; we log around it

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", cfg.Path, err)
	}
	return db, nil
}

// StartGC runs Badger value-log garbage collection on the given interval
// until the context is cancelled. GC is a no-op for in-memory databases.
func StartGC(ctx context.Context, db *badger.DB, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Repeat while GC keeps finding work.
			for {
				if err := db.RunValueLogGC(0.5); err != nil {
					if err != badger.ErrNoRewrite && err != badger.ErrGCInMemoryMode {
						logging.Warn().Str("component", "store").Err(err).Msg("value log GC failed")
					}
					break
				}
			}
		}
	}
}
