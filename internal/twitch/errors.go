// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Sentinel error kinds. Every failed public operation resolves to exactly one
// of these; callers classify with errors.Is and never see individual retry
// attempts.
var (
	// ErrInvalidArgument marks a request rejected before any network traffic.
	ErrInvalidArgument = errors.New("twitch: invalid argument")

	// ErrAuthentication covers failed token exchanges and requests still
	// rejected with 401 after one forced token refresh.
	ErrAuthentication = errors.New("twitch: authentication failed")

	// ErrRateLimited is returned once the per-call 429 retry budget is spent.
	ErrRateLimited = errors.New("twitch: rate limited")

	// ErrNotFound maps upstream 404 responses.
	ErrNotFound = errors.New("twitch: not found")

	// ErrProvider covers all other upstream 4xx/5xx responses.
	ErrProvider = errors.New("twitch: provider error")

	// ErrTransport covers network failures, attempt timeouts, and undecodable
	// success bodies.
	ErrTransport = errors.New("twitch: transport error")

	// ErrCircuitOpen is returned by the circuit breaker wrapper while the
	// upstream is considered unhealthy.
	ErrCircuitOpen = errors.New("twitch: circuit open")
)

// APIError carries the upstream response detail behind a sentinel kind.
// Unwrap exposes the kind so errors.Is(err, twitch.ErrRateLimited) works on
// wrapped values.
type APIError struct {
	kind       error
	StatusCode int
	Message    string // provider "message" field when the body was JSON
	Body       string // raw body, capped at maxErrorBodySize
}

// Error renders the kind, status, and provider message when present.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
}

// Unwrap returns the sentinel kind for errors.Is classification.
func (e *APIError) Unwrap() error {
	return e.kind
}

// newAPIError builds an APIError from an upstream response body.
func newAPIError(kind error, statusCode int, body []byte) *APIError {
	return &APIError{
		kind:       kind,
		StatusCode: statusCode,
		Message:    extractProviderMessage(body),
		Body:       string(body),
	}
}

// NewAPIError builds an APIError with an explicit kind, status, and message.
// The client derives these from upstream responses itself; fakes outside
// this package use the constructor to produce realistic provider errors.
func NewAPIError(kind error, statusCode int, message string) *APIError {
	return &APIError{
		kind:       kind,
		StatusCode: statusCode,
		Message:    message,
	}
}

// extractProviderMessage pulls the "message" field from a Twitch error body.
// Twitch error responses look like {"error":"Unauthorized","status":401,
// "message":"Invalid OAuth token"}. Non-JSON bodies yield an empty message.
func extractProviderMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
