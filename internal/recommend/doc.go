// StreamPick - Streaming Content Discovery and Recommendation
// Copyright 2026 StreamPick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streampick/streampick

// Package recommend implements the two recommendation engines and the
// service that trains, persists, and serves them.
//
// The content engine vectorizes item metadata with TF-IDF and serves
// titles similar to what the user rated highly. The collaborative
// engine builds a user-item rating matrix and scores titles liked by
// the user's nearest neighbors. Both degrade to a popularity ranking
// for cold-start users and pad thin result sets the same way.
//
// # Thread Safety
//
// Engines are safe for concurrent use. Training acquires an exclusive
// lock while prediction uses a shared lock, so serving continues on the
// old model during a rebuild.
package recommend
