// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides centralized zerolog-based structured logging for Marquee.
//
// The global logger is configured once at startup from config.LoggingConfig and
// accessed through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("user_id", id).Msg("Recommendations served")
//
// Request-scoped logging goes through the context. The request id middleware stores
// the id (and optionally a child logger) in the request context, and Ctx returns a
// logger that carries it:
//
//	logging.Ctx(ctx).Warn().Err(err).Msg("Similar lookup failed")
//
// # Adapters
//
// Two adapters route third-party logging into zerolog:
//   - SlogHandler implements slog.Handler (used by sutureslog for supervisor events)
//   - WatermillAdapter implements watermill.LoggerAdapter (used by the profile event router)
package logging
