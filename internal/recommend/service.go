// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streampick/streampick/internal/config"
	"github.com/streampick/streampick/internal/logging"
	"github.com/streampick/streampick/internal/metrics"
	"github.com/streampick/streampick/internal/models"
	"github.com/streampick/streampick/internal/store"
)

// ErrUnknownEngine is returned when a request names an engine the
// service does not run.
var ErrUnknownEngine = errors.New("recommend: unknown engine")

// Service owns both recommendation engines, their persisted models,
// and the popularity ranking used for cold starts and padding.
type Service struct {
	cfg     config.RecommendConfig
	users   *store.UserStore
	content *store.ContentStore
	store   *store.ModelStore

	contentEng *ContentEngine
	collabEng  *CollabEngine

	mu      sync.RWMutex
	popular []ScoredID

	rebuildMu sync.Mutex
}

// NewService wires the engines to their stores. Call LoadPersisted to
// pick up models from a previous run, then Rebuild (or let the first
// Recommend trigger it) to train from current data.
func NewService(cfg config.RecommendConfig, users *store.UserStore, content *store.ContentStore, modelStore *store.ModelStore) *Service {
	return &Service{
		cfg:        cfg,
		users:      users,
		content:    content,
		store:      modelStore,
		contentEng: NewContentEngine(cfg.SimilarPerItem, cfg.MinPositiveRate),
		collabEng:  NewCollabEngine(cfg.NeighborCount, cfg.MinPositiveRate),
	}
}

// LoadPersisted restores previously trained models from the store.
// Missing models are not an error; the engines stay untrained until
// the next rebuild. The popularity ranking is always recomputed from
// live profiles since it is cheap.
func (s *Service) LoadPersisted(ctx context.Context) error {
	var contentModel ContentModel
	if meta, err := s.store.Load(ctx, EngineContent, &contentModel); err == nil {
		s.contentEng.Restore(&contentModel)
		logging.Info().
			Str("component", "recommend").
			Str("engine", EngineContent).
			Int("version", meta.Version).
			Time("trained_at", meta.TrainedAt).
			Msg("Restored persisted model")
	} else if !errors.Is(err, store.ErrModelNotFound) {
		return fmt.Errorf("load content model: %w", err)
	}

	var collabModel CollabModel
	if meta, err := s.store.Load(ctx, EngineCollaborative, &collabModel); err == nil {
		s.collabEng.Restore(&collabModel)
		logging.Info().
			Str("component", "recommend").
			Str("engine", EngineCollaborative).
			Int("version", meta.Version).
			Time("trained_at", meta.TrainedAt).
			Msg("Restored persisted model")
	} else if !errors.Is(err, store.ErrModelNotFound) {
		return fmt.Errorf("load collaborative model: %w", err)
	}

	profiles, err := s.users.All(ctx)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	s.mu.Lock()
	s.popular = popularityRanking(profiles)
	s.mu.Unlock()
	return nil
}

// Rebuild retrains both engines from current store contents and
// persists the resulting models. Concurrent rebuild requests are
// serialized; predictions keep serving the previous model while a
// rebuild runs.
func (s *Service) Rebuild(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	profiles, err := s.users.All(ctx)
	if err != nil {
		return fmt.Errorf("rebuild: load profiles: %w", err)
	}
	items, err := s.content.Query(ctx, store.ContentQuery{})
	if err != nil {
		return fmt.Errorf("rebuild: load content: %w", err)
	}

	if err := s.trainContent(ctx, items, len(profiles)); err != nil {
		return err
	}
	if err := s.trainCollab(ctx, profiles); err != nil {
		return err
	}

	s.mu.Lock()
	s.popular = popularityRanking(profiles)
	s.mu.Unlock()

	logging.Info().
		Str("component", "recommend").
		Int("items", len(items)).
		Int("users", len(profiles)).
		Msg("Recommendation models rebuilt")
	return nil
}

func (s *Service) trainContent(ctx context.Context, items []models.ContentItem, userCount int) error {
	start := time.Now()
	if err := s.contentEng.Train(ctx, items); err != nil {
		return fmt.Errorf("train content engine: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordTraining(EngineContent, elapsed)

	snap := s.contentEng.Snapshot()
	if snap == nil {
		return nil
	}
	meta := store.ModelMetadata{
		Name:       EngineContent,
		TrainedAt:  snap.TrainedAt,
		ItemCount:  len(snap.ItemIDs),
		UserCount:  userCount,
		TrainingMS: elapsed.Milliseconds(),
	}
	if err := s.store.Save(ctx, EngineContent, snap, meta); err != nil {
		return fmt.Errorf("persist content model: %w", err)
	}
	return nil
}

func (s *Service) trainCollab(ctx context.Context, profiles []models.UserProfile) error {
	start := time.Now()
	if err := s.collabEng.Train(ctx, profiles); err != nil {
		return fmt.Errorf("train collaborative engine: %w", err)
	}
	elapsed := time.Since(start)
	metrics.RecordTraining(EngineCollaborative, elapsed)

	snap := s.collabEng.Snapshot()
	if snap == nil {
		return nil
	}
	users, matrixItems, interactions := s.collabEng.Counts()
	meta := store.ModelMetadata{
		Name:             EngineCollaborative,
		TrainedAt:        snap.TrainedAt,
		ItemCount:        matrixItems,
		UserCount:        users,
		InteractionCount: interactions,
		TrainingMS:       elapsed.Milliseconds(),
	}
	if err := s.store.Save(ctx, EngineCollaborative, snap, meta); err != nil {
		return fmt.Errorf("persist collaborative model: %w", err)
	}
	return nil
}

// Trained reports whether both engines hold usable models.
func (s *Service) Trained() bool {
	return s.contentEng.IsTrained() && s.collabEng.IsTrained()
}

// MaybeRebuild retrains when either engine has never trained or its
// model is older than the configured maximum age. It is invoked from
// the rating write path and at startup, never from the request path
// serving recommendations, so reads cannot stall behind training.
func (s *Service) MaybeRebuild(ctx context.Context) error {
	if s.fresh() {
		return nil
	}
	return s.Rebuild(ctx)
}

func (s *Service) fresh() bool {
	maxAge := s.cfg.ModelMaxAge
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)
	for _, eng := range []interface {
		IsTrained() bool
		LastTrainedAt() time.Time
	}{s.contentEng, s.collabEng} {
		if !eng.IsTrained() || eng.LastTrainedAt().Before(cutoff) {
			return false
		}
	}
	return true
}

// Recommend produces up to limit recommendations for the user from the
// named engine. Users the engine cannot score (no positive ratings, or
// absent from the trained matrix) fall back to the popularity ranking,
// and short personalized lists are padded the same way. Each result is
// labeled with the engine that actually produced it.
func (s *Service) Recommend(ctx context.Context, userID, engine string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 || limit > s.cfg.MaxResults {
		limit = s.cfg.MaxResults
	}

	profile, err := s.users.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	var scored []ScoredID
	switch engine {
	case EngineContent:
		scored, err = s.contentEng.Recommend(ctx, profile, limit)
	case EngineCollaborative:
		scored, err = s.collabEng.Recommend(ctx, profile, limit)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if err != nil && !errors.Is(err, ErrNotTrained) {
		return nil, err
	}

	coldStart := len(scored) == 0
	personalized := len(scored)

	s.mu.RLock()
	popular := s.popular
	s.mu.RUnlock()
	scored = padWithPopular(scored, popular, profile, limit)

	recs := make([]models.Recommendation, 0, len(scored))
	for i, sc := range scored {
		item, err := s.content.Get(ctx, sc.ID)
		if err != nil {
			if errors.Is(err, store.ErrContentNotFound) {
				continue
			}
			return nil, err
		}
		source := engine
		if i >= personalized {
			source = EnginePopularity
		}
		recs = append(recs, models.Recommendation{
			Content: item,
			Score:   sc.Score,
			Engine:  source,
		})
	}

	metrics.RecordRecommendation(engine, coldStart)
	logging.Ctx(ctx).Debug().
		Str("engine", engine).
		Str("user_id", userID).
		Int("personalized", personalized).
		Int("total", len(recs)).
		Bool("cold_start", coldStart).
		Msg("Recommendations served")
	return recs, nil
}
