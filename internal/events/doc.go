// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package events publishes and consumes profile change events over Watermill.

Every profile mutation (like, unlike, watched, unwatched, watchlist add) is
published as a ProfileEvent on one topic. The bus runs in-process on a
gochannel by default, or over core NATS when events.backend is "nats".

The Router consumes the topic with Recoverer, Retry and PoisonQueue
middleware. GenreBackfillHandler is the one consumer today: a movie liked while
the metadata provider was down is stored without genres, and the handler
fetches them once the event is processed.

Usage:

	bus, err := events.NewBus(events.DefaultConfig(), logger)
	router, err := events.NewRouter(bus, logger)
	router.Handle("genre-backfill", events.NewGenreBackfillHandler(meta, profiles, logger))
	go router.Serve(ctx)
	_ = bus.Publish(ctx, events.NewProfileEvent(events.TypeLiked, "u1", 603))
*/
package events
