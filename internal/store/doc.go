// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package store persists StreamPick's state in an embedded BadgerDB.
//
// Three stores share one DB, separated by key prefix: the content cache
// (content: and marker: keys), user profiles (user: keys), and trained
// recommender models (model: keys). Values are JSON documents encoded
// with goccy/go-json, except model blobs which are gob-encoded and
// gzip-compressed with a SHA-256 integrity checksum.
package store
