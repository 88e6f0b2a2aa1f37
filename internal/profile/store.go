// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/models"
)

// Store backend names.
const (
	BackendBadger = "badger"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

var (
	// ErrNotFound is returned when a movie is not in the list an operation targets.
	ErrNotFound = errors.New("movie not found in profile")

	// ErrAlreadyWatched is returned when marking an already watched movie.
	ErrAlreadyWatched = errors.New("movie already marked as watched")

	// ErrInvalidUserID is returned for empty user ids.
	ErrInvalidUserID = errors.New("user id is required")
)

// Store persists user profiles.
//
// Get returns an empty profile for unknown users. Update loads the profile,
// applies fn and writes the result atomically with respect to other Update
// calls for the same user. If fn returns an error nothing is written and the
// error is returned unchanged.
type Store interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, fn func(*models.Profile) error) error
	Ping(ctx context.Context) error
	Close() error
}

func checkUserID(userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return nil
}

// apply runs fn on a working copy so a failed mutation never leaks into
// stored state.
func apply(p *models.Profile, fn func(*models.Profile) error) (*models.Profile, error) {
	working := p.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.Normalize()
	return working, nil
}

// Options selects and configures a store backend.
type Options struct {
	Backend string

	BadgerPath string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoOptions    MongoOptions
}

// Open creates the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendBadger, "":
		return OpenBadgerStore(opts.BadgerPath)
	case BackendMongo:
		return OpenMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection, opts.MongoOptions)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown profile backend %q", opts.Backend)
	}
}
