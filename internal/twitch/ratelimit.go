// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
)

const (
	// rateLimitBuffer pads the provider-reported reset time. The Helix
	// Ratelimit-Reset header has one-second granularity, so requests sent
	// exactly at the reported instant can still land in the closed window.
	rateLimitBuffer = 1 * time.Second

	// rateLimitFallbackWindow is assumed when a 429 arrives without a
	// usable Ratelimit-Reset header.
	rateLimitFallbackWindow = 60 * time.Second
)

// rateLimitTracker remembers the most recent Ratelimit-Reset deadline shared
// by all requests on one client. Helix rate limits are per app access token,
// so a 429 observed by any caller means every caller must hold back.
type rateLimitTracker struct {
	mu      sync.Mutex
	resetAt time.Time
}

// wait blocks until the tracked rate-limit window has passed, or returns the
// context error if the caller gives up first. A zero deadline or one already
// behind us returns immediately.
func (rt *rateLimitTracker) wait(ctx context.Context) error {
	rt.mu.Lock()
	resetAt := rt.resetAt
	rt.mu.Unlock()

	if resetAt.IsZero() {
		return nil
	}

	delay := time.Until(resetAt.Add(rateLimitBuffer))
	if delay <= 0 {
		return nil
	}

	logging.Warn().
		Dur("wait", delay).
		Time("reset_at", resetAt).
		Msg("Rate limit window active, delaying request")
	metrics.RecordRateLimitWait(delay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// observe updates the tracker from response headers. Twitch reports
// Ratelimit-Reset as Unix seconds on every Helix response, limited or not,
// and the tracker installs whatever the provider last said. When a 429
// carries no parseable header the fallback window applies.
func (rt *rateLimitTracker) observe(h http.Header, limited bool) {
	resetAt, ok := parseResetHeader(h)
	if !ok && limited {
		resetAt = time.Now().Add(rateLimitFallbackWindow)
		ok = true
		logging.Warn().
			Time("reset_at", resetAt).
			Msg("429 without Ratelimit-Reset header, assuming fallback window")
	}

	if ok {
		rt.mu.Lock()
		rt.resetAt = resetAt
		rt.mu.Unlock()
	}

	if remaining := h.Get("Ratelimit-Remaining"); remaining != "" {
		if n, err := strconv.ParseInt(remaining, 10, 64); err == nil {
			metrics.TwitchRateLimitRemaining.Set(float64(n))
		}
	}
}

// deadline returns the currently tracked reset time.
func (rt *rateLimitTracker) deadline() time.Time {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.resetAt
}

func parseResetHeader(h http.Header) (time.Time, bool) {
	raw := h.Get("Ratelimit-Reset")
	if raw == "" {
		return time.Time{}, false
	}

	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logging.Debug().
			Str("value", raw).
			Msg("Unparseable Ratelimit-Reset header")
		return time.Time{}, false
	}

	return time.Unix(secs, 0), true
}
