// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/metrics"
)

// badgerKeyPrefix namespaces cache entries inside the database so the store
// can be cleared without touching anything else that might share the DB.
const badgerKeyPrefix = "cache:"

// BadgerStore is a persistent cache backed by BadgerDB. Entries carry a TTL
// at the storage layer, so expired keys vanish from reads without any sweep
// of our own. Warm cache state survives process restarts, which matters when
// the upstream is rate limited and every saved request counts.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) a BadgerDB at path.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %s: %w", path, err)
	}

	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		s.recordMiss()
		return false, nil
	}
	if err != nil {
		s.recordMiss()
		return false, fmt.Errorf("read cache entry %q: %w", key, err)
	}

	s.recordHit()
	return true, nil
}

func (s *BadgerStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(badgerKeyPrefix+key), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("write cache entry %q: %w", key, err)
	}

	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(badgerKeyPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}

	s.recordEviction()
	return nil
}

// Clear removes every cache entry. Keys are collected first, then deleted
// one by one so a large cache cannot blow the transaction size limit.
func (s *BadgerStore) Clear(ctx context.Context) error {
	var keys [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan cache entries: %w", err)
	}

	for _, key := range keys {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("clear cache entry %q: %w", key, err)
		}
	}

	s.statsMu.Lock()
	s.evictions += int64(len(keys))
	s.statsMu.Unlock()
	metrics.CacheSize.WithLabelValues(StoreBadger).Set(0)

	return nil
}

// Stats counts live keys with a value-free iteration; expired entries are
// already invisible to the iterator.
func (s *BadgerStore) Stats() Stats {
	var entries int64

	//nolint:errcheck // Counting is best-effort; a read error just reports zero.
	s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			entries++
		}
		return nil
	})

	metrics.CacheSize.WithLabelValues(StoreBadger).Set(float64(entries))

	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Entries:   entries,
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) recordHit() {
	s.statsMu.Lock()
	s.hits++
	s.statsMu.Unlock()
	metrics.RecordCacheHit(StoreBadger)
}

func (s *BadgerStore) recordMiss() {
	s.statsMu.Lock()
	s.misses++
	s.statsMu.Unlock()
	metrics.RecordCacheMiss(StoreBadger)
}

func (s *BadgerStore) recordEviction() {
	s.statsMu.Lock()
	s.evictions++
	s.statsMu.Unlock()
	metrics.RecordCacheEviction(StoreBadger)
}
