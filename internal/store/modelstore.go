// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const modelKeyPrefix = "model:"

// ErrModelNotFound is returned when no trained model is stored under a
// name.
var ErrModelNotFound = errors.New("store: model not found")

// ModelMetadata describes a stored recommender model.
type ModelMetadata struct {
	Name             string    `json:"name"`
	Version          int       `json:"version"`
	TrainedAt        time.Time `json:"trained_at"`
	SavedAt          time.Time `json:"saved_at"`
	ItemCount        int       `json:"item_count"`
	UserCount        int       `json:"user_count"`
	InteractionCount int       `json:"interaction_count"`
	Checksum         string    `json:"checksum"`
	SizeBytes        int64     `json:"size_bytes"`
	TrainingMS       int64     `json:"training_duration_ms"`
}

// storedModel is the on-disk record: metadata plus the gzip-compressed
// gob encoding of the model state.
type storedModel struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// ModelStore persists trained recommender models as versioned blobs in
// the document store. Each Save replaces the previous blob atomically
// within one transaction; the version counter is monotonic.
type ModelStore struct {
	db *badger.DB
}

// NewModelStore creates a model store on an existing DB.
func NewModelStore(db *badger.DB) *ModelStore {
	return &ModelStore{db: db}
}

// Save serializes data with gob, checksums and compresses it, and writes
// it under the model name. The previous version number is read and
// incremented in the same transaction.
func (s *ModelStore) Save(ctx context.Context, name string, data interface{}, meta ModelMetadata) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("encode model %s: %w", name, err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress model %s: %w", name, err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression for %s: %w", name, err)
	}

	meta.Name = name
	meta.SavedAt = time.Now().UTC()
	meta.SizeBytes = int64(compressed.Len())

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(modelKeyPrefix + name)

		meta.Version = 1
		if prev, err := txn.Get(key); err == nil {
			var prevStored storedModel
			if verr := prev.Value(func(val []byte) error {
				return gob.NewDecoder(bytes.NewReader(val)).Decode(&prevStored)
			}); verr == nil {
				meta.Version = prevStored.Metadata.Version + 1
			}
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get previous model %s: %w", name, err)
		}

		var record bytes.Buffer
		if err := gob.NewEncoder(&record).Encode(storedModel{
			Metadata:       meta,
			CompressedData: compressed.Bytes(),
		}); err != nil {
			return fmt.Errorf("encode model record %s: %w", name, err)
		}
		return txn.Set(key, record.Bytes())
	})
}

// Load reads the latest model for name into target, verifying the
// checksum before decoding.
func (s *ModelStore) Load(ctx context.Context, name string, target interface{}) (*ModelMetadata, error) {
	var stored storedModel

	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(modelKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		}
		if err != nil {
			return fmt.Errorf("get model %s: %w", name, err)
		}
		return entry.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&stored)
		})
	})
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(stored.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model %s: %w", name, err)
	}
	defer func() { _ = gzr.Close() }()

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", name, err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != stored.Metadata.Checksum {
		return nil, fmt.Errorf("model %s checksum mismatch: expected %s, got %s", name, stored.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", name, err)
	}
	return &stored.Metadata, nil
}

// Metadata returns the stored metadata for name without decoding the
// model blob.
func (s *ModelStore) Metadata(ctx context.Context, name string) (*ModelMetadata, error) {
	var stored storedModel
	err := s.db.View(func(txn *badger.Txn) error {
		entry, err := txn.Get([]byte(modelKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrModelNotFound
		}
		if err != nil {
			return fmt.Errorf("get model %s: %w", name, err)
		}
		return entry.Value(func(val []byte) error {
			return gob.NewDecoder(bytes.NewReader(val)).Decode(&stored)
		})
	})
	if err != nil {
		return nil, err
	}
	return &stored.Metadata, nil
}

// Delete removes a stored model.
func (s *ModelStore) Delete(ctx context.Context, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(modelKeyPrefix + name))
	})
}
