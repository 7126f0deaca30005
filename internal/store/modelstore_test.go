// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeModel struct {
	Weights map[string]float64
	Items   []string
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	s := NewModelStore(testDB(t))
	ctx := context.Background()

	model := fakeModel{
		Weights: map[string]float64{"tt1": 0.9, "tt2": 0.4},
		Items:   []string{"tt1", "tt2"},
	}
	meta := ModelMetadata{
		TrainedAt: time.Now().UTC(),
		ItemCount: 2,
		UserCount: 1,
	}

	if err := s.Save(ctx, "content", model, meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var loaded fakeModel
	gotMeta, err := s.Load(ctx, "content", &loaded)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotMeta.Version != 1 {
		t.Errorf("expected version 1, got %d", gotMeta.Version)
	}
	if gotMeta.Checksum == "" {
		t.Error("expected checksum to be recorded")
	}
	if loaded.Weights["tt1"] != 0.9 {
		t.Errorf("unexpected loaded weights %v", loaded.Weights)
	}
	if len(loaded.Items) != 2 {
		t.Errorf("unexpected loaded items %v", loaded.Items)
	}
}

func TestModelVersionIncrements(t *testing.T) {
	s := NewModelStore(testDB(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Save(ctx, "collab", fakeModel{Items: []string{"tt1"}}, ModelMetadata{}); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	meta, err := s.Metadata(ctx, "collab")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Version != 3 {
		t.Errorf("expected version 3 after 3 saves, got %d", meta.Version)
	}
}

func TestModelNotFound(t *testing.T) {
	s := NewModelStore(testDB(t))
	ctx := context.Background()

	var target fakeModel
	if _, err := s.Load(ctx, "missing", &target); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
	if _, err := s.Metadata(ctx, "missing"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound, got %v", err)
	}
}

func TestModelDelete(t *testing.T) {
	s := NewModelStore(testDB(t))
	ctx := context.Background()

	if err := s.Save(ctx, "content", fakeModel{}, ModelMetadata{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "content"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var target fakeModel
	if _, err := s.Load(ctx, "content", &target); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("expected ErrModelNotFound after delete, got %v", err)
	}
}
