// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

// UserAnalyticsRequest validates query parameters for the user analytics
// endpoint. At least one of ID or Login must be set; the handler enforces
// that since "at least one of" is a cross-field rule the tags don't express.
type UserAnalyticsRequest struct {
	ID    string `validate:"omitempty,twitchid"`
	Login string `validate:"omitempty,twitchlogin"`
}

// StreamsAnalyticsRequest validates query parameters for the streams
// endpoint. Both filters are optional; an unfiltered request returns the
// most-viewed live streams.
type StreamsAnalyticsRequest struct {
	UserID    string `validate:"omitempty,twitchid"`
	UserLogin string `validate:"omitempty,twitchlogin"`
}

// LoginRequestValidation validates login request fields.
type LoginRequestValidation struct {
	Username   string `validate:"required,min=1"`
	Password   string `validate:"required,min=1"`
	RememberMe bool
}
