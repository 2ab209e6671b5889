// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/streamscope-io/streamscope/internal/config"
)

// Store backend names, matching the CACHE_STORE config values.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// fallbackTTL applies when the configured TTL is missing or nonsensical.
// Stream state goes stale quickly, so the window is short.
const fallbackTTL = 30 * time.Second

// Stats is a point-in-time snapshot of store activity.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int64
}

// Store caches JSON-encoded response payloads keyed by request identity
// (for example "user:login:somestreamer"). Implementations are safe for
// concurrent use.
type Store interface {
	// Get decodes the cached value for key into dest. The bool result is
	// false on a miss; absent and expired entries both miss.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the store's default TTL,
	// overwriting any existing entry.
	Set(ctx context.Context, key string, value interface{}) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error

	// Stats reports hit/miss/eviction counters and the entry count.
	Stats() Stats

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}

// NewStore builds the configured cache backend: an in-memory TTL map, or a
// BadgerDB store that survives restarts.
func NewStore(cfg *config.CacheConfig) (Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = fallbackTTL
	}

	switch cfg.Store {
	case StoreBadger:
		return NewBadgerStore(cfg.Path, ttl)
	case StoreMemory, "":
		return NewMemoryStore(ttl), nil
	default:
		return nil, fmt.Errorf("unknown cache store %q (want %s or %s)", cfg.Store, StoreMemory, StoreBadger)
	}
}
