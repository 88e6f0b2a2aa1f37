// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth protects per-user API routes with bearer tokens.

Marquee has no accounts or sessions. In "jwt" mode every request under
/api/v1/users/{userID} must carry an HS256 token whose subject is that user id;
in "none" mode the routes are open.

Key Components:

  - JWTManager: token generation and validation (HMAC-SHA256, optional issuer)
  - Middleware: chi middleware returning 401 for missing or invalid tokens and
    403 when the subject does not match the path

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    return err
	}
	mw, err := auth.NewMiddleware(cfg.Security.AuthMode, jwtManager)
	if err != nil {
	    return err
	}
	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
	    r.Use(mw.RequireUser("userID"))
	    // ...
	})

Tokens are minted out of band:

	token, err := jwtManager.GenerateToken("alice")
*/
package auth
