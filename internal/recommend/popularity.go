// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package recommend

import (
	"sort"

	"github.com/streampick/streampick/internal/models"
)

// popularityRanking orders content IDs by how many users rated them,
// most-rated first. Ties break on ID so the order is deterministic.
// This is the cold-start path for new users and the padding source when
// a personalized engine comes up short.
func popularityRanking(profiles []models.UserProfile) []ScoredID {
	counts := make(map[string]int)
	for _, p := range profiles {
		for _, r := range p.Ratings {
			counts[r.ContentID]++
		}
	}

	ranked := make([]ScoredID, 0, len(counts))
	for id, n := range counts {
		ranked = append(ranked, ScoredID{ID: id, Score: float64(n)})
	}
	sort.Slice(ranked, func(a, b int) bool {
		if ranked[a].Score != ranked[b].Score {
			return ranked[a].Score > ranked[b].Score
		}
		return ranked[a].ID < ranked[b].ID
	})
	return ranked
}

// padWithPopular appends popular IDs to recs until limit is reached,
// skipping anything already present and anything the user has rated.
func padWithPopular(recs []ScoredID, popular []ScoredID, profile *models.UserProfile, limit int) []ScoredID {
	if limit <= 0 || len(recs) >= limit {
		return recs
	}

	have := make(map[string]struct{}, len(recs)+len(profile.Ratings))
	for _, r := range recs {
		have[r.ID] = struct{}{}
	}
	for _, r := range profile.Ratings {
		have[r.ContentID] = struct{}{}
	}

	for _, p := range popular {
		if len(recs) >= limit {
			break
		}
		if _, ok := have[p.ID]; ok {
			continue
		}
		recs = append(recs, p)
		have[p.ID] = struct{}{}
	}
	return recs
}
