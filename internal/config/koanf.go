// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Timeout:         60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		TMDB: TMDBConfig{
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			APIKey:            "",
			Language:          "en-US",
			Region:            "",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 40,
			Burst:             20,
		},
		Scorer: ScorerConfig{
			Enabled:           true,
			URL:               "http://localhost:5001",
			Timeout:           30 * time.Second,
			HealthTimeout:     5 * time.Second,
			EnrichConcurrency: 8,
		},
		Recommend: RecommendConfig{
			SimilarExpansionLimit: 3,
			BackfillThreshold:     25,
			BackfillMax:           35,
			ResultLimit:           20,
			PopularPage:           1,
			TopRatedPage:          1,
			FanOutLimit:           8,
			Seed:                  0, // 0 = seeded from the clock
			RequestTimeout:        45 * time.Second,
		},
		Profile: ProfileConfig{
			Backend:         "badger",
			BadgerPath:      "/data/profiles",
			BadgerGCEvery:   10 * time.Minute,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "marquee",
			MongoCollection: "users",
			MongoTimeout:    10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:        "memory",
			TTL:            time.Hour,
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "marquee:tmdb",
		},
		Events: EventsConfig{
			Enabled:              true,
			Backend:              "gochannel",
			NATSURL:              "nats://127.0.0.1:4222",
			Topic:                "profile.events",
			BufferSize:           256,
			RetryCount:           3,
			RetryInitialInterval: 200 * time.Millisecond,
			CloseTimeout:         10 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			JWTSecret:       "",
			JWTIssuer:       "marquee",
			TokenTTL:        24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (if one exists)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// TMDB_API_KEY -> tmdb.api_key, PYTHON_ML_SERVICE -> scorer.url, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they come from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Metadata provider
	"tmdb_api_key":        "tmdb.api_key",
	"tmdb_base_url":       "tmdb.base_url",
	"tmdb_image_base_url": "tmdb.image_base_url",
	"tmdb_language":       "tmdb.language",
	"tmdb_region":         "tmdb.region",
	"tmdb_timeout":        "tmdb.timeout",
	"tmdb_rps":            "tmdb.requests_per_second",
	"tmdb_burst":          "tmdb.burst",

	// External scorer; PYTHON_ML_SERVICE is kept for existing deployments
	"scorer_enabled":            "scorer.enabled",
	"scorer_url":                "scorer.url",
	"python_ml_service":         "scorer.url",
	"scorer_timeout":            "scorer.timeout",
	"scorer_health_timeout":     "scorer.health_timeout",
	"scorer_enrich_concurrency": "scorer.enrich_concurrency",

	// Engine
	"recommend_similar_expansion_limit": "recommend.similar_expansion_limit",
	"recommend_backfill_threshold":      "recommend.backfill_threshold",
	"recommend_backfill_max":            "recommend.backfill_max",
	"recommend_result_limit":            "recommend.result_limit",
	"recommend_popular_page":            "recommend.popular_page",
	"recommend_top_rated_page":          "recommend.top_rated_page",
	"recommend_fan_out_limit":           "recommend.fan_out_limit",
	"recommend_seed":                    "recommend.seed",
	"recommend_request_timeout":         "recommend.request_timeout",

	// Profile store
	"profile_backend":     "profile.backend",
	"profile_badger_path": "profile.badger_path",
	"profile_badger_gc":   "profile.badger_gc_interval",
	"mongodb_uri":         "profile.mongo_uri",
	"mongodb_database":    "profile.mongo_database",
	"mongodb_collection":  "profile.mongo_collection",
	"mongodb_timeout":     "profile.mongo_timeout",

	// Metadata cache
	"cache_backend":    "cache.backend",
	"cache_ttl":        "cache.ttl",
	"redis_addr":       "cache.redis_addr",
	"redis_password":   "cache.redis_password",
	"redis_db":         "cache.redis_db",
	"redis_key_prefix": "cache.redis_key_prefix",

	// Profile events
	"events_enabled":        "events.enabled",
	"events_backend":        "events.backend",
	"nats_url":              "events.nats_url",
	"events_topic":          "events.topic",
	"events_buffer_size":    "events.buffer_size",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_close_timeout":  "events.close_timeout",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"token_ttl":           "security.token_ttl",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
