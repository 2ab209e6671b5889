// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package models defines the data structures shared across StreamScope.
//
// The package groups models into three categories:
//
// # Twitch Wire Records
//
// Structures that mirror the Twitch Helix API responses byte for byte:
// TokenResponse (OAuth2 client-credentials exchange), TwitchUser and
// UsersEnvelope (GET /helix/users), TwitchStream and StreamsEnvelope
// (GET /helix/streams). These types belong to the provider boundary and
// change only when Twitch changes its schema.
//
// # Analytics DTOs
//
// The outward-facing views served by the analytics endpoints: UserProfile,
// Stream, UserResponse, StreamsResponse. They are deliberately decoupled
// from the wire records; conversion helpers (UserProfileFromTwitch,
// StreamsFromTwitch) translate between the two so provider schema drift
// never leaks into the public API contract.
//
// # API Envelope
//
// Every HTTP response is wrapped in APIResponse with a Status of "success"
// or "error", a Metadata block (timestamp, upstream query time, cache flag),
// and an optional APIError carrying a machine-readable code. LoginRequest
// and LoginResponse serve the JWT authentication flow.
//
// Usage example:
//
//	var envelope models.UsersEnvelope
//	if err := json.Unmarshal(body, &envelope); err != nil {
//	    return nil, fmt.Errorf("decoding users response: %w", err)
//	}
//	if len(envelope.Data) == 0 {
//	    return nil, twitch.ErrNotFound
//	}
//	profile := models.UserProfileFromTwitch(envelope.Data[0])
//
// All models use JSON struct tags matching the wire format. Time fields
// are time.Time and serialize as RFC3339.
package models
