// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package models

import (
	"time"
)

// Rating is a user's 1-5 score for a content item. Scores of 4 and above
// are treated as positive signal by both recommenders.
type Rating struct {
	ContentID string    `json:"content_id"`
	Score     int       `json:"score"`
	RatedAt   time.Time `json:"rated_at"`
}

// Positive reports whether the rating counts as positive signal.
func (r Rating) Positive() bool {
	return r.Score >= 4
}

// UserProfile holds everything the discovery and recommendation paths need
// to know about a user: subscribed services, ratings, and the like/dislike
// lists built up by the swipe flow.
//
// Liked and Disliked are mutually exclusive: recording a preference for a
// content ID on one list removes it from the other.
type UserProfile struct {
	UserID     string    `json:"user_id"`
	ServiceIDs []string  `json:"service_ids,omitempty"`
	Ratings    []Rating  `json:"ratings,omitempty"`
	Liked      []string  `json:"liked,omitempty"`
	Disliked   []string  `json:"disliked,omitempty"`
	Seen       []string  `json:"seen,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RatingFor returns the user's rating for the given content ID, if any.
func (u *UserProfile) RatingFor(contentID string) (Rating, bool) {
	for _, r := range u.Ratings {
		if r.ContentID == contentID {
			return r, true
		}
	}
	return Rating{}, false
}

// HasSeen reports whether the content ID is on the user's seen list.
func (u *UserProfile) HasSeen(contentID string) bool {
	for _, id := range u.Seen {
		if id == contentID {
			return true
		}
	}
	return false
}

// PreferenceAction is the verdict a user passes on a discovery card.
type PreferenceAction string

const (
	PreferenceLike    PreferenceAction = "like"
	PreferenceDislike PreferenceAction = "dislike"
	PreferenceSkip    PreferenceAction = "skip"
)

// Valid reports whether the action is one of the known preference verbs.
func (a PreferenceAction) Valid() bool {
	switch a {
	case PreferenceLike, PreferenceDislike, PreferenceSkip:
		return true
	}
	return false
}

// Recommendation pairs a content item with the score an engine assigned it.
// Engine is "content" or "collaborative"; popularity backfill entries carry
// Engine "popularity" and a zero score.
type Recommendation struct {
	Content ContentItem `json:"content"`
	Score   float64     `json:"score"`
	Engine  string      `json:"engine"`
}
