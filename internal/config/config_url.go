// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validateEndpointURL validates that a URL is properly formatted for HTTP/HTTPS endpoints.
// Validates: scheme (http/https), host present, no query params or fragments.
// Paths are allowed: the Twitch token endpoint (/oauth2/token) and the Helix
// base (/helix) both live under a path on their respective hosts.
func validateEndpointURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Query params conflict with the ones the client encodes itself
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	if parsedURL.Fragment != "" {
		return fmt.Errorf("%s should not contain a fragment, remove: #%s", fieldName, parsedURL.Fragment)
	}

	return nil
}

// validateTwitchLogin validates a channel login name for the monitor watch list.
// Twitch logins are 1-25 characters of lowercase letters, digits, and underscores.
func validateTwitchLogin(login string) error {
	if login == "" {
		return fmt.Errorf("login must not be empty")
	}
	if len(login) > 25 {
		return fmt.Errorf("login %q exceeds 25 characters", login)
	}
	for _, r := range login {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			if r >= 'A' && r <= 'Z' {
				return fmt.Errorf("login %q must be lowercase (use %q)", login, strings.ToLower(login))
			}
			return fmt.Errorf("login %q contains invalid character %q", login, r)
		}
	}
	return nil
}
