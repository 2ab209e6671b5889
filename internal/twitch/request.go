// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
)

const (
	// attemptTimeout bounds a single HTTP exchange. The caller's context
	// still applies across attempts.
	attemptTimeout = 10 * time.Second

	// maxAuthRetries allows one token refresh after an upstream 401.
	maxAuthRetries = 1

	// maxRateRetries bounds in-call retries after a 429. Past this the
	// caller gets ErrRateLimited and the shared tracker holds off the
	// next call instead.
	maxRateRetries = 2

	// rateRetryPause is the fixed pause before retrying a 429 inside a
	// single call.
	rateRetryPause = 1 * time.Second

	// maxErrorBodySize caps how much of an error response is read into
	// memory for diagnostics.
	maxErrorBodySize = 64 * 1024
)

// attemptResult describes one completed HTTP exchange: the status code,
// whether the payload was decoded into the caller's result, and the error
// body for non-2xx responses.
type attemptResult struct {
	status int
	ok     bool
	body   []byte
}

// doRequest performs a Helix GET with rate-limit pacing, lazy token
// acquisition, and a bounded retry budget. Auth failures retry once after
// invalidating the cached token; 429s retry up to maxRateRetries with a fixed
// pause. Everything else returns immediately with a classified error.
func (c *Client) doRequest(ctx context.Context, resource string, query url.Values, result interface{}) error {
	authRetries := 0
	rateRetries := 0

	for attempt := 0; attempt <= maxAuthRetries+maxRateRetries; attempt++ {
		if err := c.rateLimits.wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}

		token, err := c.tokens.token(ctx)
		if err != nil {
			return err
		}

		res, err := c.attempt(ctx, token, resource, query, result)
		if err != nil {
			return err
		}
		if res.ok {
			return nil
		}

		switch res.status {
		case http.StatusUnauthorized:
			if authRetries < maxAuthRetries {
				authRetries++
				c.tokens.invalidate()
				metrics.RecordTwitchRetry(resource, "auth")
				logging.Warn().
					Str("resource", resource).
					Int("attempt", authRetries).
					Int("max_retries", maxAuthRetries).
					Msg("Upstream rejected token, refreshing credentials")
				continue
			}
			return newAPIError(ErrAuthentication, res.status, res.body)

		case http.StatusTooManyRequests:
			if rateRetries < maxRateRetries {
				rateRetries++
				metrics.RecordTwitchRetry(resource, "rate_limit")
				logging.Warn().
					Str("resource", resource).
					Dur("retry_delay", rateRetryPause).
					Int("attempt", rateRetries).
					Int("max_retries", maxRateRetries).
					Msg("Rate limited by upstream, backing off")
				select {
				case <-ctx.Done():
					return fmt.Errorf("%w: %w", ErrTransport, ctx.Err())
				case <-time.After(rateRetryPause):
				}
				continue
			}
			return newAPIError(ErrRateLimited, res.status, res.body)

		case http.StatusNotFound:
			return newAPIError(ErrNotFound, res.status, res.body)

		default:
			return newAPIError(ErrProvider, res.status, res.body)
		}
	}

	return fmt.Errorf("unreachable code: retries exhausted for %s", resource)
}

// attempt executes one HTTP exchange against the Helix API. Rate-limit
// headers are observed on every response regardless of status, so the shared
// tracker always reflects the provider's latest word.
func (c *Client) attempt(ctx context.Context, token, resource string, query url.Values, result interface{}) (*attemptResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.apiBaseURL+"/"+resource, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s request: %v", ErrTransport, resource, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Client-Id", c.clientID)
	req.URL.RawQuery = query.Encode()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordTwitchRequest(resource, "error", duration)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	metrics.RecordTwitchRequest(resource, strconv.Itoa(resp.StatusCode), duration)
	c.rateLimits.observe(resp.Header, resp.StatusCode == http.StatusTooManyRequests)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return nil, fmt.Errorf("%w: decode %s response: %v", ErrTransport, resource, err)
		}
		return &attemptResult{status: resp.StatusCode, ok: true}, nil
	}

	return &attemptResult{
		status: resp.StatusCode,
		body:   readBodyForError(resp.Body),
	}, nil
}

// readBodyForError reads a response body for inclusion in an error,
// truncating anything past maxErrorBodySize.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		body = append(body, []byte("\n... (truncated)")...)
	}
	return body
}
