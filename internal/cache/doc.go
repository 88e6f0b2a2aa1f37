// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package cache provides byte-oriented response caches for the movie catalog
client.

Two Store implementations are available:

  - MemoryStore: in-process LRU with per-entry TTL and a background sweep
  - RedisStore: shared cache on Redis through github.com/go-redis/redis

Backend selection (cache.backend):

	memory  (default)
	redis
	none    catalog responses are not cached

Values are opaque bytes; callers encode them (the catalog client stores
JSON). Keys are built with GenerateKey so query parameters never leak into
Redis key names.

Usage:

	store := cache.NewMemoryStore(10000, time.Hour)
	defer store.Close()

	key := cache.GenerateKey("movie_details", map[string]any{"id": 603})
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
	    // decode data
	}
	_ = store.Set(ctx, key, payload, time.Hour)
*/
package cache
