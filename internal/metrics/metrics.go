// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Twitch Helix request performance and retry behavior
// - App access token lifecycle
// - API endpoint latency and throughput
// - Cache efficiency
// - Live stream monitor polling
// - WebSocket connections

var (
	// Twitch Upstream Metrics
	TwitchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitch_requests_total",
			Help: "Total number of requests sent to the Twitch API",
		},
		[]string{"resource", "status_code"},
	)

	TwitchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "twitch_request_duration_seconds",
			Help:    "Duration of Twitch API requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"resource"},
	)

	TwitchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitch_request_retries_total",
			Help: "Total number of Twitch request retries",
		},
		[]string{"resource", "reason"}, // reason: "auth", "rate_limit"
	)

	TwitchRateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitch_rate_limit_waits_total",
			Help: "Total number of waits forced by Twitch rate limiting",
		},
	)

	TwitchRateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twitch_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the Twitch rate limit window to reset",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60}, // Helix windows reset within a minute
		},
	)

	TwitchRateLimitRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitch_rate_limit_remaining",
			Help: "Remaining Twitch rate limit points as of the last response",
		},
	)

	// Token Lifecycle Metrics
	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "twitch_token_refreshes_total",
			Help: "Total number of app access token refreshes",
		},
		[]string{"result"}, // "success", "failure"
	)

	TokenRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "twitch_token_refresh_duration_seconds",
			Help:    "Duration of token endpoint round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TokenInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "twitch_token_invalidations_total",
			Help: "Total number of tokens discarded after upstream rejection",
		},
	)

	TokenExpirySeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "twitch_token_expiry_seconds",
			Help: "Seconds until the current app access token expires",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "memory", "badger"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Monitor Metrics
	MonitorPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "monitor_poll_duration_seconds",
			Help:    "Duration of monitor poll cycles in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // A poll is one or two Helix calls
		},
	)

	MonitorPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_polls_total",
			Help: "Total number of monitor poll cycles",
		},
		[]string{"result"}, // "success", "failure"
	)

	MonitorPollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_poll_errors_total",
			Help: "Total number of monitor poll errors",
		},
		[]string{"error_type"}, // "rate_limited", "authentication", "timeout", "other"
	)

	MonitorLiveChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_live_channels",
			Help: "Number of watched channels currently live",
		},
	)

	MonitorWatchedChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_watched_channels",
			Help: "Number of channels the monitor is watching",
		},
	)

	MonitorLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monitor_last_success_timestamp",
			Help: "Unix timestamp of last successful monitor poll",
		},
	)

	MonitorStreamEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_stream_events_total",
			Help: "Total number of stream state change events emitted",
		},
		[]string{"event_type"}, // "stream.online", "stream.offline", "stream.changed"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordTwitchRequest records one upstream request attempt
func RecordTwitchRequest(resource, statusCode string, duration time.Duration) {
	TwitchRequestsTotal.WithLabelValues(resource, statusCode).Inc()
	TwitchRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordTwitchRetry records a retry triggered by a 401 or 429 response
func RecordTwitchRetry(resource, reason string) {
	TwitchRetriesTotal.WithLabelValues(resource, reason).Inc()
}

// RecordRateLimitWait records a pause taken for the Twitch window to reset
func RecordRateLimitWait(duration time.Duration) {
	TwitchRateLimitWaits.Inc()
	TwitchRateLimitWaitDuration.Observe(duration.Seconds())
}

// RecordTokenRefresh records a token endpoint round trip and its outcome
func RecordTokenRefresh(duration time.Duration, err error) {
	TokenRefreshDuration.Observe(duration.Seconds())
	if err != nil {
		TokenRefreshesTotal.WithLabelValues("failure").Inc()
	} else {
		TokenRefreshesTotal.WithLabelValues("success").Inc()
	}
}

// RecordTokenInvalidated records a token discarded after an upstream 401
func RecordTokenInvalidated() {
	TokenInvalidationsTotal.Inc()
	TokenExpirySeconds.Set(0)
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheHit records a cache hit for the given store type
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given store type
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheEviction records a TTL eviction for the given store type
func RecordCacheEviction(cacheType string) {
	CacheEvictions.WithLabelValues(cacheType).Inc()
}

// RecordMonitorPoll records a monitor poll cycle and classifies any error
func RecordMonitorPoll(duration time.Duration, liveChannels int, err error) {
	MonitorPollDuration.Observe(duration.Seconds())
	if err != nil {
		MonitorPollsTotal.WithLabelValues("failure").Inc()
		MonitorPollErrors.WithLabelValues(classifyPollError(err)).Inc()
	} else {
		MonitorPollsTotal.WithLabelValues("success").Inc()
		MonitorLiveChannels.Set(float64(liveChannels))
		MonitorLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordStreamEvent records a stream state change broadcast by the monitor
func RecordStreamEvent(eventType string) {
	MonitorStreamEvents.WithLabelValues(eventType).Inc()
}

// classifyPollError buckets poll failures by message. Matching on text keeps
// this package free of imports from the packages it instruments.
func classifyPollError(err error) string {
	msg := err.Error()
	switch {
	case msg == "":
		return "unknown"
	case strings.Contains(msg, "rate limit"):
		return "rate_limited"
	case strings.Contains(msg, "authentication"):
		return "authentication"
	case strings.Contains(msg, "context deadline"), strings.Contains(msg, "timeout"):
		return "timeout"
	default:
		return "other"
	}
}
