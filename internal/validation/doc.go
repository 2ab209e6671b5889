// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package validation provides request validation using go-playground/validator v10.

The package exposes a thread-safe singleton validator preloaded with custom
validators for Twitch identifier formats, plus error translation into the
API's VALIDATION_ERROR response shape.

# Custom Validators

  - twitchlogin: channel login names, 1-25 characters of [a-z0-9_]
  - twitchid: numeric Twitch user IDs (Helix returns IDs as decimal strings)

# Usage

Request structs declare validate tags and pass through ValidateStruct:

	type StreamQuery struct {
	    UserIDs    []string `validate:"omitempty,max=100,dive,twitchid"`
	    UserLogins []string `validate:"omitempty,max=100,dive,twitchlogin"`
	}

	if err := validation.ValidateStruct(&q); err != nil {
	    apiErr := err.ToAPIError()
	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	    return
	}

A single failed field produces a message like "UserLogins[1] must be a valid
Twitch login (1-25 lowercase letters, digits, or underscores)"; multiple
failures are joined with "; " and listed individually under Details.fields.

# Thread Safety

GetValidator initializes the validator exactly once via sync.Once and caches
struct metadata internally, so the singleton is safe for concurrent use from
HTTP handlers.
*/
package validation
