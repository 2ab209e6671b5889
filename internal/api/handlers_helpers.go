// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/models"
	"github.com/streamscope-io/streamscope/internal/twitch"
	"github.com/streamscope-io/streamscope/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log
// injection. Newlines and other control characters in query parameters could
// otherwise forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends an enveloped JSON response with caching headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	etag := generateETag(data)
	w.Header().Set("ETag", etag)

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondRaw sends a JSON body without the APIResponse envelope. Only the
// root welcome route uses it.
func respondRaw(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates an ETag from data using the FNV-1a hash.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an enveloped error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorDetails(w, status, code, message, nil, err)
}

// respondErrorDetails sends an enveloped error response with a details map.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondTwitchError maps a provider client error onto the HTTP surface.
//
// Sentinel kinds map to fixed statuses. ErrProvider preserves upstream
// detail: a 5xx upstream becomes 502 with the upstream status in details,
// while an unclassified upstream 4xx (403, 422, ...) is mirrored so the
// caller sees the same contract Twitch enforced.
func respondTwitchError(w http.ResponseWriter, err error) {
	var apiErr *twitch.APIError
	hasDetail := errors.As(err, &apiErr)

	switch {
	case errors.Is(err, twitch.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", trimSentinel(err), nil)

	case errors.Is(err, twitch.ErrAuthentication):
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Provider rejected credentials", err)

	case errors.Is(err, twitch.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)

	case errors.Is(err, twitch.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Provider rate limit exhausted, retry later", err)

	case errors.Is(err, twitch.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, "CIRCUIT_OPEN", "Provider temporarily unavailable", err)

	case errors.Is(err, twitch.ErrProvider):
		status := http.StatusBadGateway
		message := "Provider returned an error"
		details := map[string]interface{}{}
		if hasDetail {
			details["upstream_status"] = apiErr.StatusCode
			if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
				status = apiErr.StatusCode
			}
			if apiErr.Message != "" {
				message = apiErr.Message
			}
		}
		respondErrorDetails(w, status, "PROVIDER_ERROR", message, details, err)

	case errors.Is(err, twitch.ErrTransport):
		respondError(w, http.StatusGatewayTimeout, "TRANSPORT_ERROR", "Provider unreachable", err)

	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

// trimSentinel strips the "twitch: " prefix so client-facing validation
// messages read like ours, not the provider package's.
func trimSentinel(err error) string {
	return strings.TrimPrefix(err.Error(), "twitch: ")
}

// validateRequest validates a struct using go-playground/validator and
// converts failures to the VALIDATION_ERROR envelope format.
//
// Example:
//
//	req := UserAnalyticsRequest{ID: id, Login: login}
//	if apiErr := validateRequest(&req); apiErr != nil {
//	    respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
//	    return
//	}
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
