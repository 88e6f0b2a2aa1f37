// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package models defines the data structures shared across Marquee.

Key Components:

  - Movie, Genre: metadata snapshots returned by the metadata provider
  - LikedEntry, WatchedEntry, WatchlistEntry, Profile: per-user state owned by the profile store
  - ScoredCandidate, SourceCounts: transient ranking output of the recommendation engine
  - ScorerHealth: reachability report for the external scoring service
  - APIResponse, APIError, Metadata: the HTTP response envelope

Genre is the single normalization point for legacy genre data: its JSON decoder
accepts either a {"id", "name"} object or a bare genre name.
*/
package models
