// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Fields:
//   - Status: Response status ("success" or "error")
//   - Data: Response payload (any JSON-serializable type)
//   - Metadata: Query execution metadata (timing, caching, timestamp)
//   - Error: Error details (populated only when Status is "error")
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"user": {"id": "141981764", "login": "twitchdev", ...}},
//	  "metadata": {
//	    "timestamp": "2026-08-24T12:00:00Z",
//	    "query_time_ms": 45,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "at least one of user_id or user_login is required"
//	  },
//	  "metadata": {"timestamp": "2026-08-24T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
// All API responses include this metadata for monitoring upstream latency and
// cache effectiveness.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Upstream provider round-trip time in milliseconds (0 if cached)
//   - Cached: Whether response was served from the response cache (omitted if false)
//
// Query time tracking:
//   - Cached responses: QueryTimeMS is 0, Cached is true
//   - Fresh queries: QueryTimeMS shows the Helix call duration, including any
//     token exchange and rate-limit waits incurred by the dispatcher
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
// Provides consistent error format across all API endpoints for better client handling.
//
// Fields:
//   - Code: Machine-readable error code (e.g., "VALIDATION_ERROR", "PROVIDER_ERROR")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, upstream status, etc.)
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - AUTHENTICATION_ERROR: Provider rejected credentials after token refresh
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Provider rate limit exhausted after bounded retries
//   - PROVIDER_ERROR: Upstream returned a non-retryable error status
//   - TRANSPORT_ERROR: Network failure or timeout reaching the provider
//   - CIRCUIT_OPEN: Circuit breaker is rejecting upstream calls
//
// Example:
//
//	{
//	  "code": "NOT_FOUND",
//	  "message": "user not found",
//	  "details": {"login": "nosuchchannel"}
//	}
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// LoginRequest represents a login request for JWT authentication.
// Supports both standard and "remember me" login flows.
//
// Fields:
//   - Username: User's login name
//   - Password: User's password (plaintext, transmitted over HTTPS)
//   - RememberMe: If true, extends token expiration to 30 days (default 24h)
//
// Example:
//
//	{
//	  "username": "admin",
//	  "password": "securepassword123",
//	  "remember_me": true
//	}
//
// Security:
//   - Password is transmitted in plaintext (HTTPS required)
//   - Password is compared against a bcrypt hash (cost 12)
//   - Rate limited to 5 attempts per minute per IP
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse represents a successful login response with JWT token.
// Returns signed JWT token for subsequent authenticated requests.
//
// Fields:
//   - Token: Signed JWT token (HS256 algorithm)
//   - ExpiresAt: Token expiration timestamp (24h standard, 30d remember me)
//   - Username: Authenticated username
//   - Role: User's role (viewer, admin)
//
// Example:
//
//	{
//	  "token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9...",
//	  "expires_at": "2026-08-25T12:00:00Z",
//	  "username": "admin",
//	  "role": "admin"
//	}
//
// Token usage:
//   - Sent as Authorization: Bearer <token> header
//   - Validated on every protected endpoint
//   - Auto-refresh before expiration (client responsibility)
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Session roles. The configured admin account authenticates as RoleAdmin;
// RoleViewer is the read-only role for issued tokens.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)
