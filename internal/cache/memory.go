// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"context"
	"sync"
	"time"
)

const (
	defaultCapacity        = 10000
	defaultTTL             = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// lruEntry is a node in the recency list.
type lruEntry struct {
	key       string
	value     []byte
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe LRU cache with TTL support.
//
// It uses a doubly-linked list for recency ordering and a map for O(1)
// lookups. Expired entries are removed lazily on Get and by a periodic sweep.
// When capacity is reached the least recently used entry is evicted.
type MemoryStore struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	items    map[string]*lruEntry

	// head.next is the most recently used, tail.prev the least.
	head *lruEntry
	tail *lruEntry

	stats Stats
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates an LRU store and starts its cleanup goroutine.
// Call Close to stop the goroutine.
func NewMemoryStore(capacity int, ttl time.Duration) *MemoryStore {
	s := newMemoryStore(capacity, ttl, time.Now)
	go s.cleanupLoop(defaultCleanupInterval)
	return s
}

func newMemoryStore(capacity int, ttl time.Duration, now func() time.Time) *MemoryStore {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	s := &MemoryStore{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry),
		head:     &lruEntry{},
		tail:     &lruEntry{},
		now:      now,
		stop:     make(chan struct{}),
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	s.stats.LastCleanup = now()
	return s
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return BackendMemory }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		s.stats.Misses++
		return nil, false, nil
	}

	if s.now().After(entry.expiresAt) {
		s.removeEntry(entry)
		s.stats.Misses++
		s.stats.Evictions++
		return nil, false, nil
	}

	s.moveToFront(entry)
	s.stats.Hits++
	return entry.value, true, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)

	if entry, ok := s.items[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		s.moveToFront(entry)
		return nil
	}

	entry := &lruEntry{key: key, value: value, expiresAt: expiresAt}
	s.addToFront(entry)
	s.items[key] = entry

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
	s.stats.TotalKeys = int64(len(s.items))
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.items[key]; ok {
		s.removeEntry(entry)
		s.stats.Evictions++
	}
	return nil
}

// Len returns the number of entries, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// GetStats returns a snapshot of cache statistics.
func (s *MemoryStore) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.TotalKeys = int64(len(s.items))
	return st
}

// HitRate returns the cache hit rate as a percentage
func (s *MemoryStore) HitRate() float64 {
	stats := s.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes all expired entries
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, entry := range s.items {
		if now.After(entry.expiresAt) {
			s.removeEntry(entry)
			s.stats.Evictions++
		}
	}
	s.stats.TotalKeys = int64(len(s.items))
	s.stats.LastCleanup = now
}

func (s *MemoryStore) addToFront(entry *lruEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) unlink(entry *lruEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (s *MemoryStore) moveToFront(entry *lruEntry) {
	s.unlink(entry)
	s.addToFront(entry)
}

func (s *MemoryStore) removeEntry(entry *lruEntry) {
	s.unlink(entry)
	delete(s.items, entry.key)
}

func (s *MemoryStore) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return
	}
	s.removeEntry(oldest)
	s.stats.Evictions++
}

var _ Store = (*MemoryStore)(nil)
