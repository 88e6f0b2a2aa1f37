// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// SimilarExpansionLimit is how many liked entries are expanded through
	// the provider's similar-movies relation. Default: 3.
	SimilarExpansionLimit int `json:"similar_expansion_limit"`

	// BackfillThreshold triggers popular backfill when the content pool is
	// smaller. Default: 25.
	BackfillThreshold int `json:"backfill_threshold"`

	// BackfillMax caps the content pool after popular backfill. Default: 35.
	BackfillMax int `json:"backfill_max"`

	// ResultLimit is the maximum length of a ranked result. Default: 20.
	ResultLimit int `json:"result_limit"`

	// PopularPage is the popular-listing page used for backfill and the
	// no-preferences fallback. Default: 1.
	PopularPage int `json:"popular_page"`

	// TopRatedPage is the top-rated page used as the replacement pool. Default: 1.
	TopRatedPage int `json:"top_rated_page"`

	// FanOutLimit bounds concurrent provider calls within one request. Default: 8.
	FanOutLimit int `json:"fan_out_limit"`

	// RequestTimeout bounds a whole engine operation. Zero disables it.
	RequestTimeout time.Duration `json:"request_timeout"`

	// Seed seeds replacement selection. Zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarExpansionLimit: 3,
		BackfillThreshold:     25,
		BackfillMax:           35,
		ResultLimit:           20,
		PopularPage:           1,
		TopRatedPage:          1,
		FanOutLimit:           8,
		RequestTimeout:        45 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SimilarExpansionLimit < 0 {
		return fmt.Errorf("similar_expansion_limit must be non-negative, got %d", c.SimilarExpansionLimit)
	}
	if c.BackfillThreshold < 0 {
		return fmt.Errorf("backfill_threshold must be non-negative, got %d", c.BackfillThreshold)
	}
	if c.BackfillMax < c.BackfillThreshold {
		return fmt.Errorf("backfill_max must be >= backfill_threshold, got %d < %d", c.BackfillMax, c.BackfillThreshold)
	}
	if c.ResultLimit < 1 {
		return fmt.Errorf("result_limit must be positive, got %d", c.ResultLimit)
	}
	if c.PopularPage < 1 {
		return fmt.Errorf("popular_page must be positive, got %d", c.PopularPage)
	}
	if c.TopRatedPage < 1 {
		return fmt.Errorf("top_rated_page must be positive, got %d", c.TopRatedPage)
	}
	if c.FanOutLimit < 1 {
		return fmt.Errorf("fan_out_limit must be positive, got %d", c.FanOutLimit)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be non-negative, got %v", c.RequestTimeout)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// MarshalJSON renders RequestTimeout as a duration string.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		RequestTimeout string `json:"request_timeout"`
	}{
		Alias:          (*Alias)(c),
		RequestTimeout: c.RequestTimeout.String(),
	})
}

// fanOut returns FanOutLimit, at least 1.
func (c *Config) fanOut() int {
	if c.FanOutLimit < 1 {
		return 1
	}
	return c.FanOutLimit
}
