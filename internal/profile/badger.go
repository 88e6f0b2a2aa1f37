// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/models"
)

// Key prefix for BadgerDB storage
const profileKeyPrefix = "profile/"

// maxConflictRetries bounds retries of an Update that lost a transaction conflict.
const maxConflictRetries = 5

// BadgerStore implements Store using BadgerDB for durable storage.
// Profiles are stored as JSON under profile/<userID>.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	now    func() time.Time

	// Serializes writers in this process; conflicts remain possible when the
	// DB is shared with another store.
	writeMu sync.Mutex
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for profiles: %w", err)
	}
	store := NewBadgerStore(db)
	store.ownsDB = true
	return store, nil
}

// NewBadgerStore creates a store on an existing DB connection. Close does not
// close a DB it did not open.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

func profileKey(userID string) []byte {
	return []byte(profileKeyPrefix + userID)
}

// Get retrieves a profile by user id.
func (s *BadgerStore) Get(_ context.Context, userID string) (*models.Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}

	var p *models.Profile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = readProfile(txn, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies fn inside a read-write transaction. Transactions that
// conflict with a concurrent writer are retried.
func (s *BadgerStore) Update(ctx context.Context, userID string, fn func(*models.Profile) error) error {
	if err := checkUserID(userID); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var err error
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			current, err := readProfile(txn, userID)
			if err != nil {
				return err
			}
			updated, err := apply(current, fn)
			if err != nil {
				return err
			}
			updated.UserID = userID
			updated.UpdatedAt = s.now().UTC()

			data, err := json.Marshal(updated)
			if err != nil {
				return fmt.Errorf("marshal profile: %w", err)
			}
			if err := txn.Set(profileKey(userID), data); err != nil {
				return fmt.Errorf("set profile: %w", err)
			}
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("update profile %s: %w", userID, err)
}

func readProfile(txn *badger.Txn, userID string) (*models.Profile, error) {
	item, err := txn.Get(profileKey(userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.NewProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	var p models.Profile
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &p)
	}); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.UserID = userID
	p.Normalize()
	return &p, nil
}

// Ping reports whether the database is open.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// CollectGarbage rewrites value log files until BadgerDB has nothing left to
// reclaim. In-memory databases have no value log and return nil.
func (s *BadgerStore) CollectGarbage(discardRatio float64) error {
	for {
		err := s.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// Close closes the database if this store opened it.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
