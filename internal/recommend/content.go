// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/streampick/streampick/internal/models"
)

// ErrNotTrained is returned when an engine is asked to predict before a
// model exists.
var ErrNotTrained = errors.New("recommend: engine not trained")

// ContentEngine recommends titles whose metadata is similar to what a
// user rated highly. Similarity is cosine over TF-IDF vectors of each
// item's title, overview, genres, directors, and cast.
type ContentEngine struct {
	baseEngine

	similarPerItem  int
	minPositiveRate int

	itemIDs   []string
	itemIndex map[string]int
	similar   [][]ScoredID // top-K similar items per item index
}

// ContentModel is the gob-serializable snapshot of a trained content
// engine.
type ContentModel struct {
	ItemIDs   []string
	Similar   [][]ScoredID
	TrainedAt time.Time
}

// NewContentEngine creates an untrained content engine.
func NewContentEngine(similarPerItem, minPositiveRate int) *ContentEngine {
	if similarPerItem <= 0 {
		similarPerItem = 20
	}
	if minPositiveRate <= 0 {
		minPositiveRate = 4
	}
	return &ContentEngine{
		baseEngine:      baseEngine{name: EngineContent},
		similarPerItem:  similarPerItem,
		minPositiveRate: minPositiveRate,
		itemIndex:       make(map[string]int),
	}
}

// Train vectorizes the corpus and precomputes each item's top similar
// items. The similarity matrix itself is never materialized: only the
// top K per row survive, which keeps the model linear in corpus size.
func (e *ContentEngine) Train(ctx context.Context, items []models.ContentItem) error {
	texts := make([]string, len(items))
	itemIDs := make([]string, len(items))
	for i, item := range items {
		texts[i] = contentText(item)
		itemIDs[i] = item.ID
	}

	vectors := buildTFIDF(texts)

	similar := make([][]ScoredID, len(items))
	for i := range vectors {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := make([]ScoredID, 0, len(vectors)-1)
		for j := range vectors {
			if i == j {
				continue
			}
			score := dotSparse(vectors[i], vectors[j])
			if score <= 0 {
				continue
			}
			row = append(row, ScoredID{ID: itemIDs[j], Score: score})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Score > row[b].Score })
		if len(row) > e.similarPerItem {
			row = row[:e.similarPerItem]
		}
		similar[i] = row
	}

	index := make(map[string]int, len(itemIDs))
	for i, id := range itemIDs {
		index[id] = i
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.itemIDs = itemIDs
	e.itemIndex = index
	e.similar = similar
	e.markTrained(time.Now().UTC())
	return nil
}

// Recommend scores unrated titles by their similarity to the user's
// positively rated ones. When several liked titles point at the same
// candidate, the first (highest-ranked source) score stands. Users with
// no positive ratings get nothing here; the service layer falls back to
// popularity.
func (e *ContentEngine) Recommend(ctx context.Context, profile *models.UserProfile, limit int) ([]ScoredID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.trained {
		return nil, ErrNotTrained
	}

	rated := make(map[string]struct{}, len(profile.Ratings))
	var liked []string
	for _, r := range profile.Ratings {
		rated[r.ContentID] = struct{}{}
		if r.Score >= e.minPositiveRate {
			liked = append(liked, r.ContentID)
		}
	}
	if len(liked) == 0 {
		return nil, nil
	}

	scores := make(map[string]float64)
	for _, likedID := range liked {
		idx, ok := e.itemIndex[likedID]
		if !ok {
			continue
		}
		for _, candidate := range e.similar[idx] {
			if _, already := rated[candidate.ID]; already {
				continue
			}
			if _, seen := scores[candidate.ID]; seen {
				continue
			}
			scores[candidate.ID] = candidate.Score
		}
	}

	out := make([]ScoredID, 0, len(scores))
	for id, score := range scores {
		out = append(out, ScoredID{ID: id, Score: score})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].ID < out[b].ID // stable order for equal scores
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ItemCount returns the size of the trained corpus.
func (e *ContentEngine) ItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.itemIDs)
}

// Snapshot exports the trained state for persistence.
func (e *ContentEngine) Snapshot() *ContentModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.trained {
		return nil
	}
	return &ContentModel{
		ItemIDs:   e.itemIDs,
		Similar:   e.similar,
		TrainedAt: e.lastTrainedAt,
	}
}

// Restore loads a previously persisted snapshot.
func (e *ContentEngine) Restore(model *ContentModel) {
	index := make(map[string]int, len(model.ItemIDs))
	for i, id := range model.ItemIDs {
		index[id] = i
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.itemIDs = model.ItemIDs
	e.itemIndex = index
	e.similar = model.Similar
	e.markTrained(model.TrainedAt)
}
