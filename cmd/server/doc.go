// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package main is the entry point for the StreamScope server application.

StreamScope is a self-hosted analytics proxy for the Twitch Helix API. It
manages OAuth2 app credentials server-side, caches analytics lookups, paces
requests against the Helix rate limit window, and watches configured channels
for live status changes broadcast over WebSocket.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("streamscope")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (real-time event fan-out)
	│   └── Stream Monitor (live status polling, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API + Swagger documentation)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Twitch Client: Helix client with token lifecycle and circuit breaker
 4. Response Cache: In-memory TTL map or persistent BadgerDB store
 5. Authentication: JWT, Basic Auth, or no-auth mode
 6. WebSocket Hub: Real-time stream event notifications
 7. Stream Monitor: Live status polling for watched channels (optional)
 8. Supervisor Tree: Suture v4 process supervision
 9. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Twitch credentials (required)
	TWITCH_CLIENT_ID=<client id>
	TWITCH_CLIENT_SECRET=<client secret>

	# Server
	HTTP_PORT=8000               # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication (choose one mode)
	AUTH_MODE=none               # jwt, basic, or none
	JWT_SECRET=<32+ chars>       # Required for JWT mode
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Response cache
	CACHE_ENABLED=true
	CACHE_STORE=memory           # memory or badger
	CACHE_TTL=30s

	# Live stream monitor
	MONITOR_ENABLED=false
	MONITOR_CHANNELS=twitchdev,gamesdonequick
	MONITOR_INTERVAL=60s

See .env.example for complete configuration reference.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Disconnects WebSocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Stops the stream monitor poll loop
 5. Flushes and closes the response cache
 6. Reports any services that failed to stop

# Usage Examples

Development (no auth):

	export TWITCH_CLIENT_ID=xxx TWITCH_CLIENT_SECRET=xxx
	export AUTH_MODE=none
	go run ./cmd/server

Production (JWT + monitor):

	export TWITCH_CLIENT_ID=xxx TWITCH_CLIENT_SECRET=xxx
	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	export MONITOR_ENABLED=true MONITOR_CHANNELS=twitchdev
	./streamscope

Docker:

	docker run -d \
	  -e TWITCH_CLIENT_ID=xxx \
	  -e TWITCH_CLIENT_SECRET=xxx \
	  -e AUTH_MODE=none \
	  -p 8000:8000 \
	  ghcr.io/streamscope-io/streamscope

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running. The API is organized into categories:

  - Core: Health checks, readiness probes, welcome route
  - Analytics: Twitch user profiles and live stream queries
  - Auth: JWT login and session management
  - Realtime: WebSocket stream event feed

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/twitch: Helix client, token lifecycle, rate limiting
  - internal/monitor: Live stream status polling
*/
package main
