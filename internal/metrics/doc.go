// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring upstream Twitch traffic, token health,
API performance, and system behavior.

# Overview

The package provides metrics for:
  - Twitch Helix request latency, status codes, and retries
  - App access token refreshes, invalidations, and time to expiry
  - Rate limit waits and remaining budget
  - HTTP API latency and throughput
  - Cache hit/miss rates
  - Live stream monitor poll cycles and emitted events
  - WebSocket connection counts
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

Twitch Upstream Metrics:
  - twitch_requests_total: Requests sent upstream (counter)
    Labels: resource (users, streams, token), status_code
  - twitch_request_duration_seconds: Upstream latency (histogram)
    Labels: resource
  - twitch_request_retries_total: Retries after 401/429 (counter)
    Labels: resource, reason (auth, rate_limit)
  - twitch_rate_limit_waits_total: Waits for window reset (counter)
  - twitch_rate_limit_wait_seconds: Wait durations (histogram)
  - twitch_rate_limit_remaining: Remaining points from last response (gauge)

Token Metrics:
  - twitch_token_refreshes_total: Token endpoint round trips (counter)
    Labels: result (success, failure)
  - twitch_token_refresh_duration_seconds: Refresh latency (histogram)
  - twitch_token_invalidations_total: Tokens discarded after 401 (counter)
  - twitch_token_expiry_seconds: Seconds until current token expires (gauge)

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Monitor Metrics:
  - monitor_poll_duration_seconds: Poll cycle duration (histogram)
  - monitor_polls_total: Poll cycles (counter)
    Labels: result (success, failure)
  - monitor_poll_errors_total: Poll failures by class (counter)
    Labels: error_type (rate_limited, authentication, timeout, other)
  - monitor_live_channels: Watched channels currently live (gauge)
  - monitor_watched_channels: Channels under watch (gauge)
  - monitor_last_success_timestamp: Unix timestamp of last good poll (gauge)
  - monitor_stream_events_total: State change events broadcast (counter)
    Labels: event_type (stream.online, stream.offline, stream.changed)

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
    Labels: cache_type (memory, badger)
  - cache_entries: Current entries (gauge)
    Labels: cache_type

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total, websocket_messages_received_total (counters)
  - websocket_errors_total (counter)
    Labels: error_type

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge, 0=closed 1=half-open 2=open)
    Labels: name
  - circuit_breaker_requests_total (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

# Usage Example

Recording upstream metrics around a Helix call:

	start := time.Now()
	resp, err := client.Do(req)
	metrics.RecordTwitchRequest("users", strconv.Itoa(resp.StatusCode), time.Since(start))

Recording API metrics from middleware:

	func Metrics(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()
	        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

	        metrics.TrackActiveRequest(true)
	        defer metrics.TrackActiveRequest(false)

	        next.ServeHTTP(ww, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(ww.Status()), time.Since(start))
	    })
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'streamscope'
	    static_configs:
	      - targets: ['localhost:8000']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Upstream request rate by resource
	rate(twitch_requests_total[5m])

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

	# Token refresh failure ratio
	rate(twitch_token_refreshes_total{result="failure"}[15m])

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: streamscope
	    rules:
	      - alert: TokenRefreshFailing
	        expr: increase(twitch_token_refreshes_total{result="failure"}[10m]) > 3
	        for: 5m
	        annotations:
	          summary: "App access token refreshes failing"

	      - alert: UpstreamRateLimited
	        expr: increase(twitch_rate_limit_waits_total[5m]) > 10
	        for: 5m
	        annotations:
	          summary: "Sustained Twitch rate limiting"

	      - alert: MonitorStalled
	        expr: time() - monitor_last_success_timestamp > 300
	        for: 5m
	        annotations:
	          summary: "Stream monitor has not polled successfully in 5 minutes"

	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state > 0
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.name }}"

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, never raw URLs with IDs
  - Upstream resources are a fixed set (users, streams, token)
  - Error types are limited to predefined constants
  - Channel names and user IDs are never used as labels

# See Also

  - internal/api: HTTP middleware with metrics integration
  - internal/twitch: Upstream request and token metrics recording
  - internal/monitor: Poll cycle metrics
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
