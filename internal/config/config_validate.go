// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateTwitch(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateMonitor(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateTwitch validates Twitch provider configuration.
// Credentials are always required: every analytics operation goes through
// the Twitch Helix API and there is no anonymous fallback.
func (c *Config) validateTwitch() error {
	if err := c.validateTwitchClientID(); err != nil {
		return err
	}
	if err := c.validateTwitchClientSecret(); err != nil {
		return err
	}
	if err := c.validateTwitchEndpoints(); err != nil {
		return err
	}
	return c.validateTwitchTimeout()
}

// validateTwitchClientID validates the Twitch client ID
func (c *Config) validateTwitchClientID() error {
	if c.Twitch.ClientID == "" {
		return fmt.Errorf("TWITCH_CLIENT_ID is required")
	}
	if containsPlaceholder(c.Twitch.ClientID) {
		return fmt.Errorf("TWITCH_CLIENT_ID contains a placeholder value - register an application at https://dev.twitch.tv/console")
	}
	return nil
}

// validateTwitchClientSecret validates the Twitch client secret
func (c *Config) validateTwitchClientSecret() error {
	if c.Twitch.ClientSecret == "" {
		return fmt.Errorf("TWITCH_CLIENT_SECRET is required")
	}
	if containsPlaceholder(c.Twitch.ClientSecret) {
		return fmt.Errorf("TWITCH_CLIENT_SECRET contains a placeholder value - generate one at https://dev.twitch.tv/console")
	}
	return nil
}

// validateTwitchEndpoints validates the token and API endpoint URLs
func (c *Config) validateTwitchEndpoints() error {
	if c.Twitch.TokenURL == "" {
		return fmt.Errorf("TWITCH_TOKEN_URL must not be empty")
	}
	if err := validateEndpointURL(c.Twitch.TokenURL, "TWITCH_TOKEN_URL"); err != nil {
		return fmt.Errorf("TWITCH_TOKEN_URL is invalid: %w", err)
	}
	if c.Twitch.APIBaseURL == "" {
		return fmt.Errorf("TWITCH_API_URL must not be empty")
	}
	if err := validateEndpointURL(c.Twitch.APIBaseURL, "TWITCH_API_URL"); err != nil {
		return fmt.Errorf("TWITCH_API_URL is invalid: %w", err)
	}
	return nil
}

// Twitch timeout constants
const (
	minTwitchTimeout = time.Second
	maxTwitchTimeout = 2 * time.Minute
)

// validateTwitchTimeout validates the per-attempt HTTP timeout
func (c *Config) validateTwitchTimeout() error {
	if c.Twitch.Timeout < minTwitchTimeout || c.Twitch.Timeout > maxTwitchTimeout {
		return fmt.Errorf("TWITCH_TIMEOUT must be between %v and %v", minTwitchTimeout, maxTwitchTimeout)
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateAuthModeConfig()
}

// validateAuthModeConfig validates configuration for the selected auth mode
func (c *Config) validateAuthModeConfig() error {
	validators := map[string]func() error{
		"jwt":   c.validateJWTAuth,
		"basic": c.validateBasicAuth,
	}

	validator, exists := validators[c.Security.AuthMode]
	if !exists {
		return nil // "none" mode has no additional validation
	}

	return validator()
}

// validateCORS validates CORS configuration for security best practices.
// In production mode with authentication enabled, wildcard CORS is rejected
// as it creates a security vulnerability where any origin can access
// protected resources using stolen credentials.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"This creates a security vulnerability where attackers can steal credentials via malicious websites. " +
			"Either set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
// Ensures rate limit values are within sensible ranges to prevent
// misconfiguration that could lead to DoS or ineffective protection.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit requests value
func (c *Config) validateRateLimitRequests() error {
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	return nil
}

// validateRateLimitWindow validates the rate limit window value
func (c *Config) validateRateLimitWindow() error {
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	"none":  true,
	"jwt":   true,
	"basic": true,
}

// validateAuthMode checks if auth mode is valid
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt, basic")
	}

	return c.validateAuthModeForEnvironment()
}

// validateAuthModeForEnvironment ensures AUTH_MODE is appropriate for the environment
func (c *Config) validateAuthModeForEnvironment() error {
	// Refuse to start unauthenticated in production so an unguarded proxy
	// cannot burn the Twitch app's rate limit budget for anonymous callers.
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE to a secure option (jwt, basic) " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateJWTAuth validates JWT authentication configuration
func (c *Config) validateJWTAuth() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	return c.validateAdminCredentials("jwt")
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateBasicAuth validates Basic authentication configuration
func (c *Config) validateBasicAuth() error {
	return c.validateAdminCredentials("basic")
}

// validateAdminCredentials validates admin username and password
func (c *Config) validateAdminCredentials(authMode string) error {
	if err := c.validateAdminUsername(authMode); err != nil {
		return err
	}
	return c.validateAdminPassword(authMode)
}

// validateAdminUsername validates the admin username configuration
func (c *Config) validateAdminUsername(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	return nil
}

// validateAdminPassword validates the admin password configuration
func (c *Config) validateAdminPassword(authMode string) error {
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is %s", authMode)
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if err := c.validatePasswordPolicy(c.Security.AdminPassword, c.Security.AdminUsername); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// validatePasswordPolicy validates a password against the configured password policy.
func (c *Config) validatePasswordPolicy(password, username string) error {
	policy := DefaultPasswordPolicy()
	return policy.ValidateWithError(password, username)
}

// validCacheStores defines the allowed cache store backends
var validCacheStores = map[string]bool{
	"memory": true,
	"badger": true,
}

// Cache TTL constants
const (
	minCacheTTL = time.Second
	maxCacheTTL = 24 * time.Hour
)

// validateCache validates cache configuration (only if enabled)
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}

	if err := c.validateCacheStore(); err != nil {
		return err
	}
	if err := c.validateCachePath(); err != nil {
		return err
	}
	return c.validateCacheTTL()
}

// validateCacheStore validates the cache store backend
func (c *Config) validateCacheStore() error {
	if !validCacheStores[c.Cache.Store] {
		return fmt.Errorf("CACHE_STORE must be one of: memory, badger")
	}
	return nil
}

// validateCachePath validates the cache path for persistent stores
func (c *Config) validateCachePath() error {
	if c.Cache.Store == "badger" && c.Cache.Path == "" {
		return fmt.Errorf("CACHE_PATH is required when CACHE_STORE=badger")
	}
	return nil
}

// validateCacheTTL validates the cache entry lifetime
func (c *Config) validateCacheTTL() error {
	if c.Cache.TTL < minCacheTTL || c.Cache.TTL > maxCacheTTL {
		return fmt.Errorf("CACHE_TTL must be between %v and %v", minCacheTTL, maxCacheTTL)
	}
	return nil
}

// Monitor constants
const (
	minMonitorInterval = 15 * time.Second // Helix rate limit budget: don't poll faster
	maxMonitorInterval = time.Hour
	minMonitorBuffer   = 1
	maxMonitorBuffer   = 4096
)

// validateMonitor validates live-stream monitor configuration (only if enabled)
func (c *Config) validateMonitor() error {
	if !c.Monitor.Enabled {
		return nil
	}

	if err := c.validateMonitorChannels(); err != nil {
		return err
	}
	if err := c.validateMonitorInterval(); err != nil {
		return err
	}
	return c.validateMonitorBuffer()
}

// validateMonitorChannels validates the watched channel list
func (c *Config) validateMonitorChannels() error {
	if len(c.Monitor.Channels) == 0 {
		return fmt.Errorf("MONITOR_CHANNELS is required when MONITOR_ENABLED=true")
	}
	for _, channel := range c.Monitor.Channels {
		if err := validateTwitchLogin(channel); err != nil {
			return fmt.Errorf("MONITOR_CHANNELS is invalid: %w", err)
		}
	}
	return nil
}

// validateMonitorInterval validates the poll interval
func (c *Config) validateMonitorInterval() error {
	if c.Monitor.Interval < minMonitorInterval || c.Monitor.Interval > maxMonitorInterval {
		return fmt.Errorf("MONITOR_INTERVAL must be between %v and %v", minMonitorInterval, maxMonitorInterval)
	}
	return nil
}

// validateMonitorBuffer validates the per-subscriber event buffer size
func (c *Config) validateMonitorBuffer() error {
	if c.Monitor.Buffer < minMonitorBuffer || c.Monitor.Buffer > maxMonitorBuffer {
		return fmt.Errorf("MONITOR_BUFFER must be between %d and %d", minMonitorBuffer, maxMonitorBuffer)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value. This prevents accidental
// deployment with insecure default credentials.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
