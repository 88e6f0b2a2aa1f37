// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend implements the hybrid movie recommendation engine.
//
// # Architecture
//
// A personal recommendation request blends two independent signals:
//
//   - Content-based retrieval (Retriever): similar movies for the first liked
//     entries, minus watched and liked movies, deduplicated, then backfilled
//     from the popular listing when the pool is small
//   - External scoring (ExternalScorer): an external machine-learning service
//     scoring the user's enriched liked movies
//
// Both run concurrently. Merge then ranks scorer candidates above content
// candidates (0.9 + 0.01*rank against a flat 0.7), drops watched movies and
// duplicates, and truncates the list.
//
// Replacement requests (ReplacementSelector) pick a substitute for one shown
// movie from the top-rated catalog, preferring movies that share genres with
// the user's affinity profile (AnalyzeAffinity).
//
// # Failure Model
//
// Only profile store failures are returned as errors. Metadata provider and
// scorer failures degrade to partial results: a missing similar list, no
// scorer candidates, or a default genre for a liked entry whose genres are
// unknown. A replacement with nothing left to choose from returns
// ErrNoReplacement.
//
// # Determinism
//
// Ranking is deterministic for unchanged inputs. Randomness is confined to
// replacement selection, which draws from a seeded *rand.Rand guarded by a
// mutex; Config.Seed makes it reproducible.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, tmdbClient, profileStore, logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetScorer(scorerClient)
//
//	result, err := engine.PersonalRecommendations(ctx, userID)
package recommend
