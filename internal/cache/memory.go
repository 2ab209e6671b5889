// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/metrics"
)

// cleanupInterval is how often the background sweep removes expired entries.
// Expired entries are also removed lazily on Get, so the sweep only matters
// for keys that stop being requested.
const cleanupInterval = time.Minute

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-memory TTL cache. Values are stored as
// their JSON encoding so Get hands out independent copies, never aliases
// into the cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64

	stopOnce sync.Once
	stop     chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory cache with the given default TTL and
// starts its background cleanup sweep.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}

	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.recordMiss()
		return false, nil
	}

	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		size := len(s.entries)
		s.mu.Unlock()

		s.recordEviction()
		s.recordMiss()
		metrics.CacheSize.WithLabelValues(StoreMemory).Set(float64(size))
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		s.recordMiss()
		return false, fmt.Errorf("decode cached value for %q: %w", key, err)
	}

	s.recordHit()
	return true, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}

	s.mu.Lock()
	s.entries[key] = memoryEntry{
		data:      data,
		expiresAt: time.Now().Add(s.ttl),
	}
	size := len(s.entries)
	s.mu.Unlock()

	metrics.CacheSize.WithLabelValues(StoreMemory).Set(float64(size))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()

	if existed {
		s.recordEviction()
	}
	metrics.CacheSize.WithLabelValues(StoreMemory).Set(float64(size))
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	dropped := int64(len(s.entries))
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()

	s.statsMu.Lock()
	s.evictions += dropped
	s.statsMu.Unlock()

	metrics.CacheSize.WithLabelValues(StoreMemory).Set(0)
	return nil
}

func (s *MemoryStore) Stats() Stats {
	s.mu.RLock()
	entries := int64(len(s.entries))
	s.mu.RUnlock()

	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Entries:   entries,
	}
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes all expired entries in one pass.
func (s *MemoryStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	var swept int64
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			swept++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()

	if swept > 0 {
		s.statsMu.Lock()
		s.evictions += swept
		s.statsMu.Unlock()
	}
	metrics.CacheSize.WithLabelValues(StoreMemory).Set(float64(size))
}

func (s *MemoryStore) recordHit() {
	s.statsMu.Lock()
	s.hits++
	s.statsMu.Unlock()
	metrics.RecordCacheHit(StoreMemory)
}

func (s *MemoryStore) recordMiss() {
	s.statsMu.Lock()
	s.misses++
	s.statsMu.Unlock()
	metrics.RecordCacheMiss(StoreMemory)
}

func (s *MemoryStore) recordEviction() {
	s.statsMu.Lock()
	s.evictions++
	s.statsMu.Unlock()
	metrics.RecordCacheEviction(StoreMemory)
}
