// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package config loads and validates Marquee configuration.
//
// Configuration is layered with Koanf v2, later layers overriding earlier ones:
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, or config.yaml / /etc/marquee/config.yaml)
//  3. Environment variables mapped through an explicit table (envTransformFunc)
//
// Unmapped environment variables are ignored. The loaded Config is validated
// before it is returned.
//
// Example config.yaml:
//
//	tmdb:
//	  api_key: "..."
//	scorer:
//	  url: http://ml-scorer:5001
//	profile:
//	  backend: badger
//	  badger_path: /data/profiles
//	cache:
//	  backend: redis
//	  redis_addr: redis:6379
package config
