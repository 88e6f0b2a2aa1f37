// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read into memory.
const maxErrorBodySize = 64 * 1024

// Default endpoints.
const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultImageBaseURL = "https://image.tmdb.org/t/p"
)

// ErrNotFound is matched by errors for ids the provider does not know.
var ErrNotFound = errors.New("tmdb: not found")

// APIError is a non-2xx response from TMDB.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb %s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Provider is the full set of metadata operations. Client and
// CircuitBreakerClient both implement it.
type Provider interface {
	Details(ctx context.Context, movieID int64) (*models.Movie, error)
	Similar(ctx context.Context, movieID int64, page int) (*models.MoviePage, error)
	Popular(ctx context.Context, page int) (*models.MoviePage, error)
	TopRated(ctx context.Context, page int) (*models.MoviePage, error)
	NowPlaying(ctx context.Context, page int) (*models.MoviePage, error)
	Upcoming(ctx context.Context, page int) (*models.MoviePage, error)
	Search(ctx context.Context, query string, page int) (*models.MoviePage, error)
	Genres(ctx context.Context) ([]models.Genre, error)
}

// Config configures a Client.
type Config struct {
	BaseURL           string
	ImageBaseURL      string
	APIKey            string
	Language          string
	Region            string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables the limiter
	Burst             int

	// Cache is optional. CacheTTL <= 0 uses the store default.
	Cache    cache.Store
	CacheTTL time.Duration
}

// Client talks to the TMDB v3 REST API.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	region       string

	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration

	cache    cache.Store
	cacheTTL time.Duration

	genreMu     sync.Mutex
	genreNames  map[int]string
	genreLoaded bool
}

// NewClient creates a TMDB client. Empty URLs fall back to the public endpoints.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = DefaultImageBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL:   strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:         cfg.APIKey,
		language:       cfg.Language,
		region:         cfg.Region,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, burst),
		maxRetries:     3,
		retryBaseDelay: time.Second,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
	}
}

// getJSON fetches path with params and decodes the body into result.
// endpoint labels metrics and errors.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}

	key := ""
	if c.cache != nil {
		key = cache.GenerateKey("tmdb:"+endpoint, map[string]string{"path": path, "query": params.Encode()})
		if body, ok := c.cacheGet(ctx, key); ok {
			if err := json.Unmarshal(body, result); err == nil {
				return nil
			}
			_ = c.cache.Delete(ctx, key)
		}
	}

	start := time.Now()
	body, err := c.fetch(ctx, endpoint, path, params)
	metrics.RecordTMDBRequest(endpoint, time.Since(start), err, errors.Is(err, ErrNotFound))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode tmdb %s response: %w", endpoint, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Msg("tmdb cache write failed")
		}
	}
	return nil
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("backend", c.cache.Backend()).Msg("tmdb cache read failed")
		ok = false
	}
	metrics.RecordCacheLookup(c.cache.Backend(), ok)
	return body, ok
}

// fetch performs the request and returns the raw body of a 2xx response.
func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + query.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make tmdb %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tmdb %s response: %w", endpoint, err)
	}
	return body, nil
}

// doRequestWithRateLimit waits for the outbound limiter, then performs the GET.
// HTTP 429 responses are retried with exponential backoff, honoring Retry-After.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}

		logging.Ctx(ctx).Debug().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("tmdb rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// readBodyForError reads up to maxErrorBodySize bytes of an error response.
func readBodyForError(body io.Reader) []byte {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize+1))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(data) > maxErrorBodySize {
		return append(data[:maxErrorBodySize], []byte("\n... (truncated)")...)
	}
	return data
}

// ImageURL joins a TMDB image path with the image base URL at the given size.
// An empty path yields an empty URL.
func (c *Client) ImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.imageBaseURL + "/" + size + path
}
