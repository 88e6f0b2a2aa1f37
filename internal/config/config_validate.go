// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/marquee/internal/logging"
)

// minJWTSecretLength is the shortest accepted HS256 secret.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateTMDB,
		c.validateScorer,
		c.validateRecommend,
		c.validateProfile,
		c.validateCache,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if err := validateHTTPURL("TMDB_BASE_URL", c.TMDB.BaseURL); err != nil {
		return err
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return fmt.Errorf("TMDB_RPS must be positive, got %v", c.TMDB.RequestsPerSecond)
	}
	if c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_BURST must be at least 1, got %d", c.TMDB.Burst)
	}
	return nil
}

func (c *Config) validateScorer() error {
	if !c.Scorer.Enabled {
		return nil
	}
	if err := validateHTTPURL("SCORER_URL", c.Scorer.URL); err != nil {
		return err
	}
	if c.Scorer.Timeout <= 0 || c.Scorer.HealthTimeout <= 0 {
		return fmt.Errorf("SCORER_TIMEOUT and SCORER_HEALTH_TIMEOUT must be positive")
	}
	if c.Scorer.EnrichConcurrency < 1 {
		return fmt.Errorf("SCORER_ENRICH_CONCURRENCY must be at least 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	positive := map[string]int{
		"RECOMMEND_SIMILAR_EXPANSION_LIMIT": r.SimilarExpansionLimit,
		"RECOMMEND_RESULT_LIMIT":            r.ResultLimit,
		"RECOMMEND_POPULAR_PAGE":            r.PopularPage,
		"RECOMMEND_TOP_RATED_PAGE":          r.TopRatedPage,
		"RECOMMEND_FAN_OUT_LIMIT":           r.FanOutLimit,
	}
	for name, v := range positive {
		if v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, v)
		}
	}
	if r.BackfillThreshold < 0 {
		return fmt.Errorf("RECOMMEND_BACKFILL_THRESHOLD must not be negative")
	}
	if r.BackfillMax < r.BackfillThreshold {
		return fmt.Errorf("RECOMMEND_BACKFILL_MAX (%d) must be >= RECOMMEND_BACKFILL_THRESHOLD (%d)",
			r.BackfillMax, r.BackfillThreshold)
	}
	if r.RequestTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateProfile() error {
	switch c.Profile.Backend {
	case "badger":
		if c.Profile.BadgerPath == "" {
			return fmt.Errorf("PROFILE_BADGER_PATH is required for the badger profile backend")
		}
		if c.Profile.BadgerGCEvery < 0 {
			return fmt.Errorf("PROFILE_BADGER_GC must not be negative")
		}
	case "mongo":
		if !strings.HasPrefix(c.Profile.MongoURI, "mongodb://") && !strings.HasPrefix(c.Profile.MongoURI, "mongodb+srv://") {
			return fmt.Errorf("MONGODB_URI must start with mongodb:// or mongodb+srv://")
		}
		if c.Profile.MongoDatabase == "" || c.Profile.MongoCollection == "" {
			return fmt.Errorf("MONGODB_DATABASE and MONGODB_COLLECTION are required for the mongo profile backend")
		}
	case "memory":
	default:
		return fmt.Errorf("PROFILE_BACKEND must be badger, mongo or memory, got %q", c.Profile.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "none":
		return nil
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be memory, redis or none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "gochannel":
	case "nats":
		if !strings.HasPrefix(c.Events.NATSURL, "nats://") {
			return fmt.Errorf("NATS_URL must start with nats://, got %q", c.Events.NATSURL)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
	case "jwt":
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
