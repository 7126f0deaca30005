// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/store"
)

func testService(t *testing.T) (*Service, *store.ContentStore, *store.UserStore) {
	t.Helper()

	db, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	content := store.NewContentStore(db)
	users := store.NewUserStore(db)
	modelStore := store.NewModelStore(db)

	cfg := config.RecommendConfig{
		MaxResults:      20,
		SimilarPerItem:  20,
		NeighborCount:   20,
		ModelMaxAge:     24 * time.Hour,
		MinPositiveRate: 4,
	}
	return NewService(cfg, users, content, modelStore), content, users
}

func seedService(t *testing.T, content *store.ContentStore, users *store.UserStore) {
	t.Helper()
	ctx := context.Background()

	for _, item := range testCorpus() {
		if err := content.Upsert(ctx, item); err != nil {
			t.Fatalf("seed content: %v", err)
		}
	}
	if _, err := users.AddRating(ctx, "alice", "tt1", 5); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	if _, err := users.AddRating(ctx, "bob", "tt1", 5); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
	if _, err := users.AddRating(ctx, "bob", "tt3", 4); err != nil {
		t.Fatalf("seed rating: %v", err)
	}
}

func TestServiceRecommendContent(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)
	ctx := context.Background()

	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	recs, err := svc.Recommend(ctx, "alice", EngineContent, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	// tt2 is the metadata match for tt1; the remainder is popularity
	// padding. tt1 itself is rated and must not appear.
	if recs[0].Content.ID != "tt2" || recs[0].Engine != EngineContent {
		t.Errorf("first rec = %s/%s, want tt2/%s", recs[0].Content.ID, recs[0].Engine, EngineContent)
	}
	for _, r := range recs[1:] {
		if r.Engine != EnginePopularity {
			t.Errorf("padding rec %s labeled %s, want %s", r.Content.ID, r.Engine, EnginePopularity)
		}
	}
	for _, r := range recs {
		if r.Content.ID == "tt1" {
			t.Error("recommended a title the user already rated")
		}
	}
}

func TestServiceColdStartFallsBackToPopularity(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)
	ctx := context.Background()

	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	recs, err := svc.Recommend(ctx, "newcomer", EngineCollaborative, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected popularity fallback for a new user")
	}
	for _, r := range recs {
		if r.Engine != EnginePopularity {
			t.Errorf("rec %s labeled %s, want %s", r.Content.ID, r.Engine, EnginePopularity)
		}
	}
	// tt1 has two ratings and should lead the popularity ranking.
	if recs[0].Content.ID != "tt1" {
		t.Errorf("top popular rec = %s, want tt1", recs[0].Content.ID)
	}
}

func TestServiceUnknownEngine(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)

	_, err := svc.Recommend(context.Background(), "alice", "astrology", 5)
	if !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("err = %v, want ErrUnknownEngine", err)
	}
}

func TestServiceReadPathNeverTrains(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)
	ctx := context.Background()

	// Before any write-path trigger, a read serves the popularity
	// ranking rather than blocking on training.
	recs, err := svc.Recommend(ctx, "alice", EngineContent, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if svc.contentEng.IsTrained() || svc.collabEng.IsTrained() {
		t.Fatal("read path must not train the models")
	}
	for _, r := range recs {
		if r.Engine != EnginePopularity {
			t.Errorf("untrained rec %s labeled %s, want %s", r.Content.ID, r.Engine, EnginePopularity)
		}
	}
}

func TestServiceMaybeRebuildTrainsStaleModels(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)
	ctx := context.Background()

	if err := svc.MaybeRebuild(ctx); err != nil {
		t.Fatalf("MaybeRebuild: %v", err)
	}
	if !svc.contentEng.IsTrained() || !svc.collabEng.IsTrained() {
		t.Fatal("expected both engines trained")
	}

	// A fresh model is left alone.
	trainedAt := svc.contentEng.LastTrainedAt()
	if err := svc.MaybeRebuild(ctx); err != nil {
		t.Fatalf("MaybeRebuild second: %v", err)
	}
	if !svc.contentEng.LastTrainedAt().Equal(trainedAt) {
		t.Error("fresh model should not be retrained")
	}
}

func TestServicePersistsAndRestoresModels(t *testing.T) {
	db, err := store.Open(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	content := store.NewContentStore(db)
	users := store.NewUserStore(db)
	modelStore := store.NewModelStore(db)
	cfg := config.RecommendConfig{
		MaxResults:      20,
		SimilarPerItem:  20,
		NeighborCount:   20,
		ModelMaxAge:     24 * time.Hour,
		MinPositiveRate: 4,
	}

	seedService(t, content, users)
	ctx := context.Background()

	first := NewService(cfg, users, content, modelStore)
	if err := first.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// A second service over the same store should come up trained.
	second := NewService(cfg, users, content, modelStore)
	if err := second.LoadPersisted(ctx); err != nil {
		t.Fatalf("LoadPersisted: %v", err)
	}
	if !second.contentEng.IsTrained() || !second.collabEng.IsTrained() {
		t.Fatal("restored service should hold trained engines")
	}

	recs, err := second.Recommend(ctx, "alice", EngineContent, 5)
	if err != nil {
		t.Fatalf("Recommend after restore: %v", err)
	}
	if len(recs) == 0 || recs[0].Content.ID != "tt2" {
		t.Errorf("restored service recs = %v, want tt2 first", recs)
	}
}

func TestServiceLoadPersistedEmptyStore(t *testing.T) {
	svc, _, _ := testService(t)
	if err := svc.LoadPersisted(context.Background()); err != nil {
		t.Errorf("LoadPersisted on empty store should succeed, got %v", err)
	}
}

func TestServiceLimitCapping(t *testing.T) {
	svc, content, users := testService(t)
	seedService(t, content, users)
	ctx := context.Background()

	if err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	recs, err := svc.Recommend(ctx, "alice", EngineContent, 1)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) > 1 {
		t.Errorf("got %d recs with limit 1", len(recs))
	}
}
