// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/streampick/streampick/internal/models"
)

func testCorpus() []models.ContentItem {
	return []models.ContentItem{
		{
			ID:           "tt1",
			Title:        "Space War Saga",
			PlotOverview: "Starships clash in galaxy spanning battles.",
			GenreNames:   []string{"Science Fiction"},
		},
		{
			ID:           "tt2",
			Title:        "Space War Returns",
			PlotOverview: "The starships return for another galaxy battle.",
			GenreNames:   []string{"Science Fiction"},
		},
		{
			ID:           "tt3",
			Title:        "Romantic Cooking",
			PlotOverview: "Chefs fall head over heels between recipes.",
			GenreNames:   []string{"Romance"},
		},
		{
			ID:           "tt4",
			Title:        "Kitchen Love Story",
			PlotOverview: "Romance blooms among recipes and chefs.",
			GenreNames:   []string{"Romance"},
		},
	}
}

func profileWithRatings(userID string, ratings map[string]int) *models.UserProfile {
	p := &models.UserProfile{UserID: userID}
	for id, score := range ratings {
		p.Ratings = append(p.Ratings, models.Rating{ContentID: id, Score: score})
	}
	return p
}

func TestContentEngineRecommends(t *testing.T) {
	engine := NewContentEngine(20, 4)
	if err := engine.Train(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	profile := profileWithRatings("alice", map[string]int{"tt1": 5})
	recs, err := engine.Recommend(context.Background(), profile, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations, got none")
	}
	if recs[0].ID != "tt2" {
		t.Errorf("top recommendation = %s, want tt2", recs[0].ID)
	}
	for _, r := range recs {
		if r.ID == "tt1" {
			t.Error("recommended an item the user already rated")
		}
	}
}

func TestContentEngineExcludesAllRated(t *testing.T) {
	engine := NewContentEngine(20, 4)
	if err := engine.Train(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	// tt2 is the obvious match for tt1 but the user already rated it low.
	profile := profileWithRatings("alice", map[string]int{"tt1": 5, "tt2": 2})
	recs, err := engine.Recommend(context.Background(), profile, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	for _, r := range recs {
		if r.ID == "tt1" || r.ID == "tt2" {
			t.Errorf("recommended rated item %s", r.ID)
		}
	}
}

func TestContentEngineNoPositiveRatings(t *testing.T) {
	engine := NewContentEngine(20, 4)
	if err := engine.Train(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	profile := profileWithRatings("bob", map[string]int{"tt1": 2, "tt3": 3})
	recs, err := engine.Recommend(context.Background(), profile, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("expected no recommendations without positive ratings, got %d", len(recs))
	}
}

func TestContentEngineNotTrained(t *testing.T) {
	engine := NewContentEngine(20, 4)
	_, err := engine.Recommend(context.Background(), profileWithRatings("alice", map[string]int{"tt1": 5}), 10)
	if !errors.Is(err, ErrNotTrained) {
		t.Errorf("err = %v, want ErrNotTrained", err)
	}
}

func TestContentEngineRespectsLimit(t *testing.T) {
	engine := NewContentEngine(20, 4)
	if err := engine.Train(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	profile := profileWithRatings("carol", map[string]int{"tt3": 5})
	recs, err := engine.Recommend(context.Background(), profile, 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) > 1 {
		t.Errorf("got %d recommendations, limit was 1", len(recs))
	}
}

func TestContentEngineSnapshotRestore(t *testing.T) {
	trained := NewContentEngine(20, 4)
	if err := trained.Train(context.Background(), testCorpus()); err != nil {
		t.Fatalf("Train: %v", err)
	}

	snap := trained.Snapshot()
	if snap == nil {
		t.Fatal("Snapshot returned nil for a trained engine")
	}

	restored := NewContentEngine(20, 4)
	restored.Restore(snap)
	if !restored.IsTrained() {
		t.Fatal("restored engine reports untrained")
	}
	if restored.ItemCount() != trained.ItemCount() {
		t.Errorf("restored item count = %d, want %d", restored.ItemCount(), trained.ItemCount())
	}

	profile := profileWithRatings("alice", map[string]int{"tt1": 5})
	want, err := trained.Recommend(context.Background(), profile, 10)
	if err != nil {
		t.Fatalf("Recommend on trained: %v", err)
	}
	got, err := restored.Recommend(context.Background(), profile, 10)
	if err != nil {
		t.Fatalf("Recommend on restored: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("restored produced %d recs, trained produced %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("rec %d differs: restored %v, trained %v", i, got[i], want[i])
		}
	}
}

func TestContentEngineUntrainedSnapshotNil(t *testing.T) {
	if snap := NewContentEngine(20, 4).Snapshot(); snap != nil {
		t.Error("Snapshot on untrained engine should be nil")
	}
}
