// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package middleware provides HTTP middleware in http.HandlerFunc form,
bridged into the Chi router by the api package's adapter.

Components:

  - PrometheusMetrics: per-endpoint request counter, latency histogram,
    and active request gauge, recorded through internal/metrics
  - Compression: gzip response compression for clients that accept it,
    skipping WebSocket upgrades

Request ID generation and the remaining inbound middleware (CORS, rate
limiting, security headers) live in the api package as Chi-native
factories; authentication lives in internal/auth.

Thread Safety:

Both middlewares are safe for concurrent use. Compression draws gzip
writers from a sync.Pool; metrics recording is atomic.
*/
package middleware
