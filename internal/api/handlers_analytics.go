// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/models"
)

// Analytics endpoints proxy Helix reads through the managed client so
// callers never touch Twitch credentials, rate limit budgets, or retry
// policy. User lookups are cached under both identifier forms; stream
// queries always hit upstream because live state goes stale in seconds.

// userCacheKey builds the cache key for a user lookup. The ID form wins
// when both identifiers are present, matching the fetch path.
func userCacheKey(id, login string) string {
	if id != "" {
		return "user:id:" + id
	}
	return "user:login:" + login
}

// AnalyticsUser resolves a Twitch user profile by numeric ID or login name
//
// @Summary Get Twitch user profile
// @Description Resolves a Twitch user by numeric ID or login name and returns the profile. Lookups are cached; a repeat query served locally is flagged with metadata.cached=true.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param id query string false "Numeric Twitch user ID (takes precedence when both are given)" example("141981764")
// @Param login query string false "Twitch login name, case-insensitive" example("twitchdev")
// @Success 200 {object} models.APIResponse{data=models.UserResponse} "User profile retrieved successfully"
// @Failure 400 {object} models.APIResponse "Neither identifier given, or identifier malformed"
// @Failure 404 {object} models.APIResponse "No Twitch user matches the identifier"
// @Failure 429 {object} models.APIResponse "Provider rate limit exhausted"
// @Failure 502 {object} models.APIResponse "Provider error"
// @Router /analytics/user [get]
func (h *Handler) AnalyticsUser(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	login := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("login")))

	if id == "" && login == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"Either id or login query parameter is required", nil)
		return
	}

	req := UserAnalyticsRequest{ID: id, Login: login}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	cacheKey := userCacheKey(id, login)
	if h.store != nil {
		var profile models.UserProfile
		hit, err := h.store.Get(r.Context(), cacheKey, &profile)
		if err != nil {
			logging.Warn().Err(err).Str("key", cacheKey).Msg("Cache read failed")
		}
		if hit {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   models.UserResponse{User: profile},
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
	}

	var ids, logins []string
	if id != "" {
		ids = []string{id}
	} else {
		logins = []string{login}
	}

	start := time.Now()
	users, err := h.client.GetUsers(r.Context(), ids, logins)
	if err != nil {
		respondTwitchError(w, err)
		return
	}
	if len(users) == 0 {
		// Helix returns 200 with an empty data array for unknown users.
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Twitch user not found", nil)
		return
	}

	profile := models.UserProfileFromTwitch(users[0])

	if h.store != nil {
		// Populate both key forms so either lookup path hits next time.
		if err := h.store.Set(r.Context(), "user:id:"+profile.ID, profile); err != nil {
			logging.Warn().Err(err).Str("user_id", profile.ID).Msg("Cache write failed")
		}
		if err := h.store.Set(r.Context(), "user:login:"+profile.Login, profile); err != nil {
			logging.Warn().Err(err).Str("user_login", profile.Login).Msg("Cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.UserResponse{User: profile},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AnalyticsStreams returns live streams, optionally filtered by broadcaster
//
// @Summary Get live streams
// @Description Returns currently live streams. Without filters Twitch orders the result by viewer count descending; with user_id or user_login the result holds that broadcaster's stream, or is empty when they are offline.
// @Tags Analytics
// @Accept json
// @Produce json
// @Param user_id query string false "Filter by numeric broadcaster ID" example("141981764")
// @Param user_login query string false "Filter by broadcaster login name" example("twitchdev")
// @Success 200 {object} models.APIResponse{data=models.StreamsResponse} "Live streams retrieved successfully"
// @Failure 400 {object} models.APIResponse "Malformed filter value"
// @Failure 429 {object} models.APIResponse "Provider rate limit exhausted"
// @Failure 502 {object} models.APIResponse "Provider error"
// @Router /analytics/streams [get]
func (h *Handler) AnalyticsStreams(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	userLogin := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("user_login")))

	req := StreamsAnalyticsRequest{UserID: userID, UserLogin: userLogin}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	var ids, logins []string
	if userID != "" {
		ids = []string{userID}
	}
	if userLogin != "" {
		logins = []string{userLogin}
	}

	start := time.Now()
	records, err := h.client.GetStreams(r.Context(), ids, logins)
	if err != nil {
		respondTwitchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   models.StreamsResponse{Streams: models.StreamsFromTwitch(records)},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
