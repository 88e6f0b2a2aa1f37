// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	TMDB      TMDBConfig      `koanf:"tmdb"`
	Scorer    ScorerConfig    `koanf:"scorer"`
	Recommend RecommendConfig `koanf:"recommend"`
	Profile   ProfileConfig   `koanf:"profile"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TMDBConfig configures the movie metadata provider.
type TMDBConfig struct {
	BaseURL           string        `koanf:"base_url"`
	ImageBaseURL      string        `koanf:"image_base_url"`
	APIKey            string        `koanf:"api_key"`
	Language          string        `koanf:"language"`
	Region            string        `koanf:"region"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// ScorerConfig configures the external machine-learning scoring service.
type ScorerConfig struct {
	Enabled           bool          `koanf:"enabled"`
	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	HealthTimeout     time.Duration `koanf:"health_timeout"`
	EnrichConcurrency int           `koanf:"enrich_concurrency"`
}

// RecommendConfig holds the tunables of the hybrid recommendation engine.
type RecommendConfig struct {
	SimilarExpansionLimit int           `koanf:"similar_expansion_limit"`
	BackfillThreshold     int           `koanf:"backfill_threshold"`
	BackfillMax           int           `koanf:"backfill_max"`
	ResultLimit           int           `koanf:"result_limit"`
	PopularPage           int           `koanf:"popular_page"`
	TopRatedPage          int           `koanf:"top_rated_page"`
	FanOutLimit           int           `koanf:"fan_out_limit"`
	Seed                  int64         `koanf:"seed"`
	RequestTimeout        time.Duration `koanf:"request_timeout"`
}

// ProfileConfig selects and configures the user profile store.
type ProfileConfig struct {
	Backend         string        `koanf:"backend"` // badger, mongo, memory
	BadgerPath      string        `koanf:"badger_path"`
	BadgerGCEvery   time.Duration `koanf:"badger_gc_interval"`
	MongoURI        string        `koanf:"mongo_uri"`
	MongoDatabase   string        `koanf:"mongo_database"`
	MongoCollection string        `koanf:"mongo_collection"`
	MongoTimeout    time.Duration `koanf:"mongo_timeout"`
}

// CacheConfig configures the metadata response cache.
type CacheConfig struct {
	Backend        string        `koanf:"backend"` // memory, redis, none
	TTL            time.Duration `koanf:"ttl"`
	RedisAddr      string        `koanf:"redis_addr"`
	RedisPassword  string        `koanf:"redis_password"`
	RedisDB        int           `koanf:"redis_db"`
	RedisKeyPrefix string        `koanf:"redis_key_prefix"`
}

// EventsConfig configures profile event publishing and the genre backfill consumer.
type EventsConfig struct {
	Enabled              bool          `koanf:"enabled"`
	Backend              string        `koanf:"backend"` // gochannel, nats
	NATSURL              string        `koanf:"nats_url"`
	Topic                string        `koanf:"topic"`
	BufferSize           int           `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // none, jwt
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load loads configuration from defaults, the optional config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
