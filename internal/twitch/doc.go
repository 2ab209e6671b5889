// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package twitch implements the Helix API client that everything upstream of
// Twitch goes through: the analytics handlers, the readiness probe, and the
// live stream monitor.
//
// # Token Lifecycle
//
// The client authenticates with an app access token obtained through the
// OAuth2 client-credentials grant. Tokens are acquired lazily: nothing is
// exchanged at construction time, and the first request (or Ping) pays for
// the exchange. The cached token is considered valid until five minutes
// before its provider-reported expiry, which keeps a token from dying
// mid-request. When Twitch rejects a token with 401 the cache is dropped and
// the request retried once with fresh credentials.
//
// Concurrent callers share one token. A refresh takes the write lock and
// re-checks validity, so a burst of expired-token callers produces exactly
// one exchange.
//
// # Rate Limiting
//
// Helix reports its token-bucket state on every response via the
// Ratelimit-Reset header (Unix seconds). The client records the latest value
// unconditionally and, before each attempt, sleeps until one second past the
// recorded reset when the window is still closed. A 429 without a usable
// header assumes a sixty second window. Within a single call a 429 is retried
// at most twice with a one second pause; after that the caller receives
// ErrRateLimited while the shared tracker keeps later calls from piling on.
//
// # Error Classification
//
// Every failure wraps one of the package sentinels, so callers branch with
// errors.Is and never inspect status codes:
//
//	ErrInvalidArgument - rejected before any network traffic
//	ErrAuthentication  - token exchange failed, or a refreshed token was rejected
//	ErrRateLimited     - in-call retry budget exhausted on 429s
//	ErrNotFound        - upstream 404
//	ErrProvider        - any other upstream 4xx/5xx
//	ErrTransport       - connection failures, timeouts, undecodable bodies
//	ErrCircuitOpen     - rejected locally by the circuit breaker
//
// Upstream error bodies are captured (capped at 64 KiB) on the *APIError in
// the chain, with the provider's "message" field pulled out when the body is
// JSON.
//
// # Circuit Breaker
//
// CircuitBreakerClient decorates any ClientInterface with a sony/gobreaker
// circuit. Caller mistakes (ErrInvalidArgument, ErrNotFound) do not count as
// failures; sustained transport, provider, or authentication errors do.
//
// # Usage
//
//	client := twitch.NewCircuitBreakerClient(&cfg.Twitch)
//	defer client.Close()
//
//	users, err := client.GetUsers(ctx, nil, []string{"somestreamer"})
//	if errors.Is(err, twitch.ErrRateLimited) {
//		// surface 429 to the caller
//	}
package twitch
