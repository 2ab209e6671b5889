// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package api provides the HTTP REST API layer for StreamScope.

This package implements the analytics endpoints that proxy Twitch Helix
reads, the health and auth surface, and the WebSocket event feed. It is
the only layer that touches HTTP concerns; provider access, caching, and
monitoring stay behind their own packages.

Key Components:

  - Router: Chi route configuration and middleware stack integration
  - Handler: Request handlers for all endpoints
  - Response formatting: Standardized JSON envelope with metadata
  - Error handling: Provider errors mapped to stable error codes
  - Authentication integration: JWT and Basic Auth support via middleware
  - Rate limiting: Per-IP tiers via go-chi/httprate
  - CORS: Cross-Origin Resource Sharing via go-chi/cors

API Surface:

1. Root:
  - GET / - welcome message (the one endpoint without the envelope)

2. Health (/api/v1/health):
  - GET / - aggregate health with Twitch connectivity and monitor snapshot
  - GET /live - liveness probe
  - GET /ready - readiness probe, 503 while upstream is unreachable

3. Auth (/api/v1/auth):
  - POST /login - credential login issuing a JWT

4. Analytics (/api/v1/analytics, authenticated):
  - GET /user - user profile lookup by id or login, cached
  - GET /streams - live streams, optionally filtered by broadcaster

5. Events (/api/v1/ws, authenticated):
  - WebSocket feed of stream.online / stream.offline / monitor.snapshot

6. Observability:
  - GET /metrics - Prometheus metrics
  - GET /swagger/* - generated OpenAPI documentation

Response Envelope:

Every endpoint except the root welcome responds with the APIResponse
envelope:

	{
	  "status": "success",
	  "data": { ... },
	  "metadata": {"timestamp": "...", "query_time_ms": 12, "cached": false}
	}

Errors carry status "error" and an error object with a stable code
(VALIDATION_ERROR, AUTHENTICATION_ERROR, NOT_FOUND, RATE_LIMIT_EXCEEDED,
PROVIDER_ERROR, TRANSPORT_ERROR, CIRCUIT_OPEN) so clients can branch on
codes instead of parsing messages.
*/
package api
