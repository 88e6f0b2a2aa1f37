// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
)

type contextKey string

// ClaimsContextKey stores validated *Claims in the request context.
const ClaimsContextKey contextKey = "claims"

// Middleware guards per-user routes.
type Middleware struct {
	mode       string
	jwtManager *JWTManager
}

// NewMiddleware creates the middleware. A nil manager is only valid in
// ModeNone.
func NewMiddleware(mode string, jwtManager *JWTManager) (*Middleware, error) {
	switch mode {
	case ModeNone, "":
		return &Middleware{mode: ModeNone}, nil
	case ModeJWT:
		if jwtManager == nil {
			return nil, errors.New("jwt auth mode requires a JWT manager")
		}
		return &Middleware{mode: ModeJWT, jwtManager: jwtManager}, nil
	default:
		return nil, fmt.Errorf("invalid auth mode: %s", mode)
	}
}

// Mode returns the active authentication mode.
func (m *Middleware) Mode() string { return m.mode }

// RequireUser requires a bearer token whose subject equals the chi URL
// parameter named param. Missing or invalid tokens get 401, a token for a
// different user gets 403.
func (m *Middleware) RequireUser(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.mode == ModeNone {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
				return
			}

			claims, err := m.jwtManager.ValidateToken(token)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("token validation failed")
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			if want := chi.URLParam(r, param); claims.UserID() != want {
				logging.Ctx(r.Context()).Warn().
					Str("subject", claims.UserID()).
					Str("user_id", want).
					Msg("token subject does not match requested user")
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "token does not grant access to this user")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			ctx = logging.ContextWithUserID(ctx, claims.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims stored by RequireUser.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="marquee"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response already committed
	json.NewEncoder(w).Encode(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}
