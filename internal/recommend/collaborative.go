// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"context"
	"sort"
	"time"

	"github.com/streampick/streampick/internal/models"
)

// CollabEngine recommends titles that similar users rated highly.
// Similarity between users is cosine over their rating vectors.
type CollabEngine struct {
	baseEngine

	neighborCount   int
	minPositiveRate int

	userIDs    []string
	userIndex  map[string]int
	ratings    []map[string]float64 // per user: content ID -> score
	itemCount  int
	interCount int
}

// CollabModel is the gob-serializable snapshot of a trained
// collaborative engine.
type CollabModel struct {
	UserIDs          []string
	Ratings          []map[string]float64
	ItemCount        int
	InteractionCount int
	TrainedAt        time.Time
}

// NewCollabEngine creates an untrained collaborative engine.
func NewCollabEngine(neighborCount, minPositiveRate int) *CollabEngine {
	if neighborCount <= 0 {
		neighborCount = 20
	}
	if minPositiveRate <= 0 {
		minPositiveRate = 4
	}
	return &CollabEngine{
		baseEngine:      baseEngine{name: EngineCollaborative},
		neighborCount:   neighborCount,
		minPositiveRate: minPositiveRate,
		userIndex:       make(map[string]int),
	}
}

// Train builds the user/item rating matrix from all profiles. Users
// with no ratings contribute nothing and are skipped.
func (e *CollabEngine) Train(ctx context.Context, profiles []models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	userIDs := make([]string, 0, len(profiles))
	ratings := make([]map[string]float64, 0, len(profiles))
	items := make(map[string]struct{})
	interactions := 0

	for _, p := range profiles {
		if len(p.Ratings) == 0 {
			continue
		}
		vec := make(map[string]float64, len(p.Ratings))
		for _, r := range p.Ratings {
			vec[r.ContentID] = float64(r.Score)
			items[r.ContentID] = struct{}{}
			interactions++
		}
		userIDs = append(userIDs, p.UserID)
		ratings = append(ratings, vec)
	}

	index := make(map[string]int, len(userIDs))
	for i, id := range userIDs {
		index[id] = i
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.userIDs = userIDs
	e.userIndex = index
	e.ratings = ratings
	e.itemCount = len(items)
	e.interCount = interactions
	e.markTrained(time.Now().UTC())
	return nil
}

// Recommend finds the user's nearest neighbors by rating overlap and
// accumulates similarity-weighted scores for titles those neighbors
// liked but the user has not rated. Users absent from the trained
// matrix (or without overlap) get nothing here.
func (e *CollabEngine) Recommend(ctx context.Context, profile *models.UserProfile, limit int) ([]ScoredID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.trained {
		return nil, ErrNotTrained
	}

	idx, ok := e.userIndex[profile.UserID]
	if !ok {
		return nil, nil
	}
	target := e.ratings[idx]

	neighbors := make([]scoredIndex, 0, len(e.ratings))
	for j, vec := range e.ratings {
		if j == idx {
			continue
		}
		sim := cosine(target, vec)
		if sim <= 0 {
			continue
		}
		neighbors = append(neighbors, scoredIndex{index: j, score: sim})
	}
	sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].score > neighbors[b].score })
	if len(neighbors) > e.neighborCount {
		neighbors = neighbors[:e.neighborCount]
	}

	minPositive := float64(e.minPositiveRate)
	scores := make(map[string]float64)
	for _, n := range neighbors {
		for contentID, rating := range e.ratings[n.index] {
			if rating < minPositive {
				continue
			}
			if _, rated := target[contentID]; rated {
				continue
			}
			scores[contentID] += n.score * rating
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
		return out[a].ID < out[b].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Counts reports matrix dimensions for model metadata.
func (e *CollabEngine) Counts() (users, items, interactions int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.userIDs), e.itemCount, e.interCount
}

// Snapshot exports the trained state for persistence.
func (e *CollabEngine) Snapshot() *CollabModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.trained {
		return nil
	}
	return &CollabModel{
		UserIDs:          e.userIDs,
		Ratings:          e.ratings,
		ItemCount:        e.itemCount,
		InteractionCount: e.interCount,
		TrainedAt:        e.lastTrainedAt,
	}
}

// Restore loads a previously persisted snapshot.
func (e *CollabEngine) Restore(model *CollabModel) {
	index := make(map[string]int, len(model.UserIDs))
	for i, id := range model.UserIDs {
		index[id] = i
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.userIDs = model.UserIDs
	e.userIndex = index
	e.ratings = model.Ratings
	e.itemCount = model.ItemCount
	e.interCount = model.InteractionCount
	e.markTrained(model.TrainedAt)
}

type scoredIndex struct {
	index int
	score float64
}
