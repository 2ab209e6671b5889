// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package models

import "time"

// Analytics API Models
// These structures are the outward-facing DTOs served by the analytics
// endpoints. They are decoupled from the Helix wire records so provider
// schema drift never leaks into the public API contract.

// UserProfile is the analytics view of a Twitch user.
type UserProfile struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	BroadcasterType string    `json:"broadcaster_type"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url"`
	OfflineImageURL string    `json:"offline_image_url"`
	ViewCount       int64     `json:"view_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stream is the analytics view of a live stream. GameID and GameName are
// omitted when Twitch has no category set for the broadcast.
type Stream struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ViewerCount  int       `json:"viewer_count"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	StartedAt    time.Time `json:"started_at"`
	Language     string    `json:"language"`
	ThumbnailURL string    `json:"thumbnail_url"`
	GameID       string    `json:"game_id,omitempty"`
	GameName     string    `json:"game_name,omitempty"`
}

// UserResponse is the payload of GET /api/v1/analytics/user.
type UserResponse struct {
	User UserProfile `json:"user"`
}

// StreamsResponse is the payload of GET /api/v1/analytics/streams.
// Streams is never null: an empty result serializes as [].
type StreamsResponse struct {
	Streams []Stream `json:"streams"`
}

// UserProfileFromTwitch converts a Helix user record into its analytics view.
func UserProfileFromTwitch(u TwitchUser) UserProfile {
	return UserProfile{
		ID:              u.ID,
		Login:           u.Login,
		DisplayName:     u.DisplayName,
		Type:            u.Type,
		BroadcasterType: u.BroadcasterType,
		Description:     u.Description,
		ProfileImageURL: u.ProfileImageURL,
		OfflineImageURL: u.OfflineImageURL,
		ViewCount:       u.ViewCount,
		CreatedAt:       u.CreatedAt,
	}
}

// StreamFromTwitch converts a Helix stream record into its analytics view.
func StreamFromTwitch(s TwitchStream) Stream {
	return Stream{
		ID:           s.ID,
		Title:        s.Title,
		ViewerCount:  s.ViewerCount,
		UserID:       s.UserID,
		UserLogin:    s.UserLogin,
		UserName:     s.UserName,
		StartedAt:    s.StartedAt,
		Language:     s.Language,
		ThumbnailURL: s.ThumbnailURL,
		GameID:       s.GameID,
		GameName:     s.GameName,
	}
}

// StreamsFromTwitch converts a Helix stream page into analytics views.
// The result is always non-nil so JSON encoding yields [] rather than null.
func StreamsFromTwitch(records []TwitchStream) []Stream {
	streams := make([]Stream, 0, len(records))
	for _, r := range records {
		streams = append(streams, StreamFromTwitch(r))
	}
	return streams
}
