// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/streampick/streampick/internal/models"
)

const userKeyPrefix = "user:"

// ErrUserNotFound is returned when a user ID has no profile.
var ErrUserNotFound = errors.New("store: user not found")

// UserStore persists user profiles: subscribed services, ratings, and
// like/dislike preferences.
type UserStore struct {
	db *badger.DB
}

// NewUserStore creates a user store on an existing DB.
func NewUserStore(db *badger.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns one profile by user ID.
func (s *UserStore) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile

	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(userKeyPrefix + userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user %s: %w", userID, err)
		}
		return entry.Value(func(val []byte) error {
			return json.Unmarshal(val, &profile)
		})
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOrCreate returns the profile for userID, creating an empty one on
// first contact.
func (s *UserStore) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	profile = &models.UserProfile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Save writes a profile, stamping UpdatedAt.
func (s *UserStore) Save(ctx context.Context, profile *models.UserProfile) error {
	if profile.UserID == "" {
		return fmt.Errorf("store: user profile without ID")
	}
	profile.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal user %s: %w", profile.UserID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(userKeyPrefix+profile.UserID), data)
	})
}

// SetServices replaces the user's subscribed streaming services.
func (s *UserStore) SetServices(ctx context.Context, userID string, serviceIDs []string) (*models.UserProfile, error) {
	return s.update(ctx, userID, func(p *models.UserProfile) {
		p.ServiceIDs = serviceIDs
	})
}

// AddRating records or replaces the user's rating for a content item.
func (s *UserStore) AddRating(ctx context.Context, userID, contentID string, score int) (*models.UserProfile, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("store: rating score must be 1-5, got %d", score)
	}
	return s.update(ctx, userID, func(p *models.UserProfile) {
		now := time.Now().UTC()
		for i := range p.Ratings {
			if p.Ratings[i].ContentID == contentID {
				p.Ratings[i].Score = score
				p.Ratings[i].RatedAt = now
				return
			}
		}
		p.Ratings = append(p.Ratings, models.Rating{
			ContentID: contentID,
			Score:     score,
			RatedAt:   now,
		})
	})
}

// SetPreference applies a like/dislike/skip verdict. Like and dislike
// are mutually exclusive: recording one removes the content ID from the
// other list. Every verdict marks the item seen.
func (s *UserStore) SetPreference(ctx context.Context, userID, contentID string, action models.PreferenceAction) (*models.UserProfile, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("store: invalid preference action %q", action)
	}
	return s.update(ctx, userID, func(p *models.UserProfile) {
		switch action {
		case models.PreferenceLike:
			p.Liked = appendUnique(p.Liked, contentID)
			p.Disliked = removeString(p.Disliked, contentID)
		case models.PreferenceDislike:
			p.Disliked = appendUnique(p.Disliked, contentID)
			p.Liked = removeString(p.Liked, contentID)
		case models.PreferenceSkip:
			// seen only
		}
		p.Seen = appendUnique(p.Seen, contentID)
	})
}

// All returns every stored profile. Used to build the collaborative
// training matrix.
func (s *UserStore) All(ctx context.Context) ([]models.UserProfile, error) {
	var profiles []models.UserProfile

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var profile models.UserProfile
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &profile)
			}); err != nil {
				continue
			}
			profiles = append(profiles, profile)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// update applies a mutation to a profile inside a single transaction,
// creating the profile if missing. The read and the write share one
// txn so concurrent writers to the same profile cannot drop each
// other's changes; conflicting transactions are retried.
func (s *UserStore) update(ctx context.Context, userID string, mutate func(*models.UserProfile)) (*models.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("store: user profile without ID")
	}

	var profile models.UserProfile
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			key := []byte(userKeyPrefix + userID)
			profile = models.UserProfile{}

			entry, err := txn.Get(key)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				profile.UserID = userID
				profile.CreatedAt = time.Now().UTC()
			case err != nil:
				return fmt.Errorf("get user %s: %w", userID, err)
			default:
				if verr := entry.Value(func(val []byte) error {
					return json.Unmarshal(val, &profile)
				}); verr != nil {
					return fmt.Errorf("decode user %s: %w", userID, verr)
				}
			}

			mutate(&profile)
			profile.UpdatedAt = time.Now().UTC()

			data, err := json.Marshal(&profile)
			if err != nil {
				return fmt.Errorf("marshal user %s: %w", userID, err)
			}
			return txn.Set(key, data)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &profile, nil
	}
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, have := range list {
		if have != v {
			out = append(out, have)
		}
	}
	return out
}
