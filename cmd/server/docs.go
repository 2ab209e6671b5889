// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package main provides the StreamScope HTTP server
//
// StreamScope API provides cached Twitch analytics lookups and real-time
// live stream monitoring over the Helix API.
//
// @title StreamScope API
// @version 1.0
// @description Twitch analytics proxy and live stream monitoring service
// @description
// @description ## Features
// @description
// @description - **Analytics Proxy**: Cached Twitch user profile and live stream lookups over the Helix API
// @description - **Managed Credentials**: OAuth2 client-credentials tokens acquired, cached, and refreshed server-side
// @description - **Rate-Limit Aware**: Helix rate limit headers drive request pacing and bounded retry
// @description - **Live Stream Monitor**: Watches configured channels and emits stream.online / stream.offline events
// @description - **Real-time Updates**: WebSocket-based event feed for monitored channels
// @description
// @description ## Authentication
// @description
// @description Protected endpoints require JWT authentication via HTTP-only cookie or Authorization: Bearer header.
// @description Use `/api/v1/auth/login` to obtain a token.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description Login attempts are limited separately to slow down brute force attacks.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message"
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-24T12:00:00Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/streamscope-io/streamscope/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in cookie
// @name token
// @description JWT token stored in HTTP-only cookie. Obtain via /api/v1/auth/login endpoint.
//
// @tag.name Core
// @tag.description Health checks, readiness probes, and service status
//
// @tag.name Analytics
// @tag.description Twitch analytics endpoints for user profiles and live streams
//
// @tag.name Auth
// @tag.description Authentication and session management endpoints
//
// @tag.name Realtime
// @tag.description Real-time WebSocket connections for live stream status events
package main
