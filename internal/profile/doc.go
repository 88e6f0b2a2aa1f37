// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package profile stores per-user liked, watched and watchlist entries and
// implements the list operations on them.
//
// Three Store backends exist: BadgerStore (embedded, the default), MongoStore
// (one document per user) and MemoryStore. Service wraps a Store, enriches
// likes with genres from the metadata provider and publishes a profile event
// for each mutation.
package profile
