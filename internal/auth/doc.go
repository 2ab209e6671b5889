// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package auth provides authentication for the StreamScope API.
//
// Three modes are supported, selected by AUTH_MODE:
//
//	none   - no authentication (default; intended for trusted networks)
//	jwt    - login with admin credentials, then HS256 bearer tokens
//	basic  - HTTP Basic credentials on every request
//
// In jwt mode, POST /api/v1/auth/login exchanges the admin username and
// password for a signed token carrying Claims. Subsequent requests present
// it in the Authorization header or the "token" cookie. In basic mode the
// bcrypt-hashed admin credentials are checked on each request.
//
// Middleware.Authenticate enforces the active mode on protected routes and
// places the authenticated Claims in the request context. Login attempts
// are additionally rate limited per client IP so that running with jwt
// mode exposed to the internet does not invite credential stuffing.
package auth
