// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/breaker"
	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/profile"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/scorer"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/tmdb"
)

// badgerGCDiscardRatio is the value log discard ratio for profile store GC.
const badgerGCDiscardRatio = 0.5

// app holds the wired components and the resources that must be released.
type app struct {
	store   profile.Store
	cache   cache.Store
	bus     *events.Bus
	router  *events.Router
	handler http.Handler
	engine  *recommend.Engine
}

// openCache returns the metadata cache, or nil for the none backend.
func openCache(cfg config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case cache.BackendNone:
		return nil, nil
	case cache.BackendMemory, "":
		return cache.NewMemoryStore(0, cfg.TTL), nil
	case cache.BackendRedis:
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       cfg.TTL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func profileOptions(cfg config.ProfileConfig) profile.Options {
	return profile.Options{
		Backend:         cfg.Backend,
		BadgerPath:      cfg.BadgerPath,
		MongoURI:        cfg.MongoURI,
		MongoDatabase:   cfg.MongoDatabase,
		MongoCollection: cfg.MongoCollection,
		MongoOptions:    profile.MongoOptions{Timeout: cfg.MongoTimeout},
	}
}

func newCatalog(cfg config.TMDBConfig, store cache.Store, ttl time.Duration) *tmdb.CircuitBreakerClient {
	client := tmdb.NewClient(tmdb.Config{
		BaseURL:           cfg.BaseURL,
		ImageBaseURL:      cfg.ImageBaseURL,
		APIKey:            cfg.APIKey,
		Language:          cfg.Language,
		Region:            cfg.Region,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Cache:             store,
		CacheTTL:          ttl,
	})
	return tmdb.NewCircuitBreakerClient(client, breaker.DefaultSettings())
}

// newScorer returns nil when the scorer is disabled.
func newScorer(cfg config.ScorerConfig, details scorer.DetailsProvider) recommend.ExternalScorer {
	if !cfg.Enabled {
		return nil
	}
	client := scorer.NewClient(scorer.Config{
		URL:               cfg.URL,
		Timeout:           cfg.Timeout,
		HealthTimeout:     cfg.HealthTimeout,
		EnrichConcurrency: cfg.EnrichConcurrency,
	}, details)
	return scorer.NewCircuitBreakerClient(client, breaker.DefaultSettings())
}

func recommendConfig(cfg config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		SimilarExpansionLimit: cfg.SimilarExpansionLimit,
		BackfillThreshold:     cfg.BackfillThreshold,
		BackfillMax:           cfg.BackfillMax,
		ResultLimit:           cfg.ResultLimit,
		PopularPage:           cfg.PopularPage,
		TopRatedPage:          cfg.TopRatedPage,
		FanOutLimit:           cfg.FanOutLimit,
		RequestTimeout:        cfg.RequestTimeout,
		Seed:                  cfg.Seed,
	}
}

// openEvents returns a nil bus and router when events are disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openEvents(cfg config.EventsConfig, logger zerolog.Logger) (*events.Bus, *events.Router, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	bus, err := events.NewBus(events.Config{
		Backend:              cfg.Backend,
		NATSURL:              cfg.NATSURL,
		Topic:                cfg.Topic,
		BufferSize:           cfg.BufferSize,
		RetryCount:           cfg.RetryCount,
		RetryInitialInterval: cfg.RetryInitialInterval,
		CloseTimeout:         cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create event bus: %w", err)
	}
	router, err := events.NewRouter(bus, logger)
	if err != nil {
		_ = bus.Close()
		return nil, nil, fmt.Errorf("create event router: %w", err)
	}
	return bus, router, nil
}

func newAuthMiddleware(cfg *config.SecurityConfig) (*auth.Middleware, error) {
	var manager *auth.JWTManager
	if cfg.AuthMode == auth.ModeJWT {
		m, err := auth.NewJWTManager(cfg)
		if err != nil {
			return nil, fmt.Errorf("create jwt manager: %w", err)
		}
		manager = m
	}
	return auth.NewMiddleware(cfg.AuthMode, manager)
}

// buildApp wires every component. On error, anything already opened is closed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.Close(logger)
			a = nil
		}
	}()

	if a.store, err = profile.Open(ctx, profileOptions(cfg.Profile)); err != nil {
		return a, fmt.Errorf("open profile store: %w", err)
	}
	if a.cache, err = openCache(cfg.Cache); err != nil {
		return a, fmt.Errorf("open metadata cache: %w", err)
	}

	catalog := newCatalog(cfg.TMDB, a.cache, cfg.Cache.TTL)

	if a.bus, a.router, err = openEvents(cfg.Events, logger); err != nil {
		return a, err
	}
	var publisher events.Publisher = events.NopPublisher{}
	if a.bus != nil {
		publisher = a.bus
	}

	profiles := profile.NewService(a.store, catalog, publisher, logger)
	if a.router != nil {
		a.router.Handle("genre_backfill", events.NewGenreBackfillHandler(catalog, profiles, logger))
	}

	if a.engine, err = recommend.NewEngine(recommendConfig(cfg.Recommend), catalog, profiles, logger); err != nil {
		return a, fmt.Errorf("create recommendation engine: %w", err)
	}
	if s := newScorer(cfg.Scorer, catalog); s != nil {
		a.engine.SetScorer(s)
	}

	handler, err := api.NewHandler(catalog, a.engine, profiles)
	if err != nil {
		return a, fmt.Errorf("create api handler: %w", err)
	}
	authMW, err := newAuthMiddleware(&cfg.Security)
	if err != nil {
		return a, err
	}
	chiMW := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	a.handler = api.NewRouter(handler, chiMW, authMW).Setup()

	return a, nil
}

// addServices registers the app's long-running services with the tree.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *app) addServices(tree *supervisor.SupervisorTree, cfg *config.Config, logger zerolog.Logger) *http.Server {
	if bs, ok := a.store.(*profile.BadgerStore); ok && cfg.Profile.BadgerGCEvery > 0 {
		tree.AddDataService(services.NewPeriodicTask("profile-gc", cfg.Profile.BadgerGCEvery, func(context.Context) error {
			return bs.CollectGarbage(badgerGCDiscardRatio)
		}, logger))
	}
	if a.router != nil {
		tree.AddEventService(a.router)
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	return server
}

// Close releases the store, cache and bus. It is safe on a partially built app.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *app) Close(logger zerolog.Logger) {
	var errs []error
	if a.bus != nil {
		errs = append(errs, a.bus.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error().Err(err).Msg("error releasing resources")
	}
}
