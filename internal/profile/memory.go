// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// MemoryStore keeps profiles in process memory. Suitable for tests and
// single-process development runs.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]*models.Profile),
		now:      time.Now,
	}
}

// Get returns a copy of the stored profile.
func (s *MemoryStore) Get(_ context.Context, userID string) (*models.Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p.Clone(), nil
	}
	return models.NewProfile(userID), nil
}

// Update applies fn under the store lock.
func (s *MemoryStore) Update(_ context.Context, userID string, fn func(*models.Profile) error) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[userID]
	if !ok {
		current = models.NewProfile(userID)
	}
	updated, err := apply(current, fn)
	if err != nil {
		return err
	}
	updated.UserID = userID
	updated.UpdatedAt = s.now().UTC()
	s.profiles[userID] = updated
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored profiles.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
