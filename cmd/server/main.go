// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
)

func main() {
	issueFor := flag.String("issue-token", "", "print a signed JWT for the given user id and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	if *issueFor != "" {
		if err := issueToken(os.Stdout, &cfg.Security, *issueFor); err != nil {
			logging.Fatal().Err(err).Msg("Failed to issue token")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// issueToken writes a token for userID. It requires a JWT secret even when
// the server itself runs with auth disabled.
func issueToken(w io.Writer, sec *config.SecurityConfig, userID string) error {
	manager, err := auth.NewJWTManager(sec)
	if err != nil {
		return err
	}
	token, err := manager.GenerateToken(userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()

	logging.Info().
		Str("profile_backend", cfg.Profile.Backend).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("scorer_enabled", cfg.Scorer.Enabled).
		Bool("events_enabled", cfg.Events.Enabled).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting Marquee")

	if cfg.Security.AuthMode == auth.ModeNone {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none): any caller can act as any user")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.TMDB.APIKey == "" {
		logging.Warn().Msg("TMDB_API_KEY is not set; metadata requests will be rejected upstream")
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	// Bridges zerolog to slog for sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	server := a.addServices(tree, cfg, logger)
	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // best-effort diagnostics
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
