// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package cache provides the response cache in front of the Twitch client.
//
// Every upstream request spends rate-limit budget, so answers the API has
// already paid for are kept for a short TTL and served again. The cache is
// keyed by request identity (for example "user:login:somestreamer") and
// stores the JSON encoding of the response payload.
//
// # Backends
//
// Two implementations of Store exist, selected by CACHE_STORE:
//
//   - memory: an RWMutex-guarded map with a background expiry sweep. Fast,
//     zero dependencies at runtime, state lost on restart. The default.
//   - badger: a BadgerDB database at CACHE_PATH. Entries carry their TTL at
//     the storage layer (badger.Entry.WithTTL), and warm state survives
//     restarts, which matters when every saved request counts against the
//     upstream rate limit.
//
// # Usage
//
//	store, err := cache.NewStore(&cfg.Cache)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	var user models.UserProfile
//	if hit, _ := store.Get(ctx, key, &user); hit {
//		return &user, nil
//	}
//	// ... fetch upstream, then:
//	_ = store.Set(ctx, key, &user)
//
// Set and Get errors are deliberately non-fatal for callers: a broken cache
// degrades to pass-through, it never fails a request.
//
// # Observability
//
// Both backends feed the cache_hits_total, cache_misses_total,
// cache_evictions_total and cache_entries metrics, labeled by backend, and
// report a Stats snapshot for the health endpoint.
package cache
