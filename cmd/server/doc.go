// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee serves movie metadata from TMDB, keeps per-user liked, watched and
watchlist lists, and ranks personal recommendations by blending content-based
candidates with an external machine-learning scorer.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   └── profile-gc (badger backend only)
	├── EventsSupervisor ("events-layer")
	│   └── event-router (genre backfill consumer)
	└── APISupervisor ("api-layer")
	    └── http-server

Initialization order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Profile store: badger, mongo or memory
 4. Metadata cache: memory, redis or none
 5. TMDB client behind a circuit breaker
 6. Event bus and router: gochannel or core NATS
 7. Recommendation engine, with the scorer client behind a circuit breaker
 8. HTTP router: chi with CORS, rate limiting and optional JWT auth

# Configuration

Common environment variables:

	TMDB_API_KEY        TMDB v3 API key
	PYTHON_ML_SERVICE   scorer base URL (alias of SCORER_URL)
	PROFILE_BACKEND     badger | mongo | memory
	CACHE_BACKEND       memory | redis | none
	EVENTS_BACKEND      gochannel | nats
	AUTH_MODE           none | jwt
	JWT_SECRET          32+ characters, required for AUTH_MODE=jwt

# Tokens

With AUTH_MODE=jwt every /api/v1/users/{userID} route requires a bearer token
whose subject is that user. Operators mint one with:

	JWT_SECRET=... ./marquee -issue-token alice

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to SHUTDOWN_TIMEOUT, the event router stops consuming, and the
profile store, cache and bus are closed.
*/
package main
