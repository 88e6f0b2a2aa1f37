// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv points CONFIG_PATH at a missing file and runs the test from an
// empty directory so no stray config.yaml is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Recommend.SimilarExpansionLimit != 3 {
		t.Errorf("SimilarExpansionLimit = %d, want 3", cfg.Recommend.SimilarExpansionLimit)
	}
	if cfg.Recommend.BackfillThreshold != 25 || cfg.Recommend.BackfillMax != 35 {
		t.Errorf("backfill = %d/%d, want 25/35", cfg.Recommend.BackfillThreshold, cfg.Recommend.BackfillMax)
	}
	if cfg.Recommend.ResultLimit != 20 {
		t.Errorf("ResultLimit = %d, want 20", cfg.Recommend.ResultLimit)
	}
	if cfg.Scorer.Timeout != 30*time.Second {
		t.Errorf("Scorer.Timeout = %v, want 30s", cfg.Scorer.Timeout)
	}
	if cfg.Scorer.URL != "http://localhost:5001" {
		t.Errorf("Scorer.URL = %q", cfg.Scorer.URL)
	}
	if cfg.Profile.Backend != "badger" {
		t.Errorf("Profile.Backend = %q, want badger", cfg.Profile.Backend)
	}
	if cfg.Security.AuthMode != "none" {
		t.Errorf("Security.AuthMode = %q, want none", cfg.Security.AuthMode)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"PYTHON_ML_SERVICE", "scorer.url"},
		{"SCORER_URL", "scorer.url"},
		{"MONGODB_URI", "profile.mongo_uri"},
		{"REDIS_ADDR", "cache.redis_addr"},
		{"RECOMMEND_SEED", "recommend.seed"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TMDB_API_KEY", "test-key")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PYTHON_ML_SERVICE", "http://scorer.internal:5001")
	t.Setenv("RECOMMEND_RESULT_LIMIT", "10")
	t.Setenv("SCORER_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDB.APIKey != "test-key" {
		t.Errorf("TMDB.APIKey = %q", cfg.TMDB.APIKey)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Scorer.URL != "http://scorer.internal:5001" {
		t.Errorf("Scorer.URL = %q", cfg.Scorer.URL)
	}
	if cfg.Recommend.ResultLimit != 10 {
		t.Errorf("Recommend.ResultLimit = %d, want 10", cfg.Recommend.ResultLimit)
	}
	if cfg.Scorer.Timeout != 5*time.Second {
		t.Errorf("Scorer.Timeout = %v, want 5s", cfg.Scorer.Timeout)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolateEnv(t)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
tmdb:
  api_key: file-key
  language: tr-TR
profile:
  backend: mongo
  mongo_uri: mongodb://mongo:27017
cache:
  backend: redis
  redis_addr: redis:6379
recommend:
  seed: 42
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("REDIS_ADDR", "cache.internal:6380")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.TMDB.APIKey != "file-key" || cfg.TMDB.Language != "tr-TR" {
		t.Errorf("TMDB = %+v", cfg.TMDB)
	}
	if cfg.Profile.Backend != "mongo" || cfg.Profile.MongoURI != "mongodb://mongo:27017" {
		t.Errorf("Profile = %+v", cfg.Profile)
	}
	if cfg.Cache.RedisAddr != "cache.internal:6380" {
		t.Errorf("env should override file: RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Recommend.Seed != 42 {
		t.Errorf("Recommend.Seed = %d, want 42", cfg.Recommend.Seed)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{
			name:    "missing TMDB key",
			envVars: map[string]string{},
			errMsg:  "TMDB_API_KEY is required",
		},
		{
			name:    "jwt without secret",
			envVars: map[string]string{"TMDB_API_KEY": "k", "AUTH_MODE": "jwt"},
			errMsg:  "JWT_SECRET is required",
		},
		{
			name:    "short jwt secret",
			envVars: map[string]string{"TMDB_API_KEY": "k", "AUTH_MODE": "jwt", "JWT_SECRET": "short"},
			errMsg:  "at least 32 characters",
		},
		{
			name:    "unknown profile backend",
			envVars: map[string]string{"TMDB_API_KEY": "k", "PROFILE_BACKEND": "sqlite"},
			errMsg:  "PROFILE_BACKEND",
		},
		{
			name:    "backfill max below threshold",
			envVars: map[string]string{"TMDB_API_KEY": "k", "RECOMMEND_BACKFILL_MAX": "10"},
			errMsg:  "RECOMMEND_BACKFILL_MAX",
		},
		{
			name:    "bad scorer url",
			envVars: map[string]string{"TMDB_API_KEY": "k", "SCORER_URL": "localhost:5001"},
			errMsg:  "SCORER_URL",
		},
		{
			name:    "bad log format",
			envVars: map[string]string{"TMDB_API_KEY": "k", "LOG_FORMAT": "xml"},
			errMsg:  "LOG_FORMAT",
		},
		{
			name:    "nats backend needs nats url",
			envVars: map[string]string{"TMDB_API_KEY": "k", "EVENTS_BACKEND": "nats", "NATS_URL": "http://x"},
			errMsg:  "NATS_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() expected error containing %q, got nil", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want substring %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoadWithKoanf_ValidJWT(t *testing.T) {
	isolateEnv(t)
	t.Setenv("TMDB_API_KEY", "k")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", strings.Repeat("s", 32))

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Security.AuthMode != "jwt" {
		t.Errorf("AuthMode = %q, want jwt", cfg.Security.AuthMode)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if s.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
