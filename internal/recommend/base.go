// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"sync"
	"time"
)

// Engine names, also used as model store keys.
const (
	EngineContent       = "content"
	EngineCollaborative = "collaborative"
	EnginePopularity    = "popularity"
)

// baseEngine provides the shared trained-state bookkeeping.
type baseEngine struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// Name returns the engine identifier.
func (b *baseEngine) Name() string {
	return b.name
}

// IsTrained reports whether the engine holds a usable model.
func (b *baseEngine) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// LastTrainedAt returns when the model was last built.
func (b *baseEngine) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state. The caller must hold the write
// lock.
func (b *baseEngine) markTrained(at time.Time) {
	b.trained = true
	b.version++
	b.lastTrainedAt = at
}

// ScoredID pairs a content ID with a relevance score.
type ScoredID struct {
	ID    string
	Score float64
}
