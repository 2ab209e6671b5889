// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package models

import "time"

// Twitch Helix REST API Models
// These structures represent responses from the Twitch Helix API endpoints
// Documentation: https://dev.twitch.tv/docs/api/reference

// ============================================================================
// OAuth2 Token Models - POST https://id.twitch.tv/oauth2/token
// ============================================================================

// TokenResponse represents the response from the OAuth2 client-credentials
// token endpoint. App access tokens carry no refresh token; a new exchange
// is performed when the current token nears expiry.
type TokenResponse struct {
	AccessToken string `json:"access_token"` // Opaque bearer token
	ExpiresIn   int64  `json:"expires_in"`   // Token lifetime in seconds
	TokenType   string `json:"token_type"`   // Always "bearer"
}

// ============================================================================
// User Models - GET /helix/users
// ============================================================================

// UsersEnvelope wraps the Helix users response. The data array contains one
// record per matched id/login; unmatched filters are silently omitted by
// the provider rather than reported as errors.
type UsersEnvelope struct {
	Data []TwitchUser `json:"data"`
}

// TwitchUser represents a single Twitch user record as returned by Helix.
type TwitchUser struct {
	ID              string    `json:"id"`                // Numeric user ID (as string)
	Login           string    `json:"login"`             // Lowercase login name
	DisplayName     string    `json:"display_name"`      // Capitalized display name
	Type            string    `json:"type"`              // "staff", "admin", "global_mod", or ""
	BroadcasterType string    `json:"broadcaster_type"`  // "partner", "affiliate", or ""
	Description     string    `json:"description"`       // Channel description
	ProfileImageURL string    `json:"profile_image_url"` // Avatar URL
	OfflineImageURL string    `json:"offline_image_url"` // Offline banner URL
	ViewCount       int64     `json:"view_count"`        // Total channel views (deprecated upstream, still served)
	CreatedAt       time.Time `json:"created_at"`        // Account creation time (RFC3339)
}

// ============================================================================
// Stream Models - GET /helix/streams
// ============================================================================

// StreamsEnvelope wraps the Helix streams response. An unfiltered request
// returns a provider-defined page of currently live streams ordered by
// viewer count; the pagination cursor selects subsequent pages.
type StreamsEnvelope struct {
	Data       []TwitchStream `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// TwitchStream represents a single live stream record as returned by Helix.
// Streams that are offline are simply absent from the response.
type TwitchStream struct {
	ID           string    `json:"id"`                // Stream ID (changes per broadcast)
	UserID       string    `json:"user_id"`           // Broadcaster user ID
	UserLogin    string    `json:"user_login"`        // Broadcaster login name
	UserName     string    `json:"user_name"`         // Broadcaster display name
	GameID       string    `json:"game_id,omitempty"` // Category/game ID ("" when unset)
	GameName     string    `json:"game_name,omitempty"`
	Type         string    `json:"type"`         // "live" (or "" on provider error)
	Title        string    `json:"title"`        // Stream title
	ViewerCount  int       `json:"viewer_count"` // Current concurrent viewers
	StartedAt    time.Time `json:"started_at"`   // Broadcast start time (RFC3339)
	Language     string    `json:"language"`     // ISO 639-1 code
	ThumbnailURL string    `json:"thumbnail_url"`
	IsMature     bool      `json:"is_mature"`
}

// Pagination carries the Helix cursor for paging through large result sets.
type Pagination struct {
	Cursor string `json:"cursor,omitempty"`
}
