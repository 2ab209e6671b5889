// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package config

import (
	"time"
)

// Config holds all application configuration loaded from environment variables and config files.
// Provides centralized configuration management for all application components: the Twitch
// provider client, HTTP server, security, caching, live-stream monitoring, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Twitch.ClientID, cfg.Server.Port, etc. are now populated
//
// Validation:
// The Load() function validates all required fields and returns an error if:
//   - Required environment variables are missing (TWITCH_CLIENT_ID, TWITCH_CLIENT_SECRET)
//   - Values are malformed (invalid URL format, out-of-range numbers)
//   - Authentication is enabled but credentials are incomplete
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Twitch   TwitchConfig   `koanf:"twitch"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`   // Optional: Response caching (memory or BadgerDB)
	Monitor  MonitorConfig  `koanf:"monitor"` // Optional: Live-stream monitor for watched channels
	Logging  LoggingConfig  `koanf:"logging"`
}

// TwitchConfig holds Twitch API credentials and endpoints.
//
// The client authenticates with the OAuth2 client-credentials grant: the
// configured client ID and secret are exchanged for an app access token at
// TokenURL, and all Helix calls carry Authorization: Bearer plus Client-Id.
//
// Environment Variables:
//   - TWITCH_CLIENT_ID: Application client ID from the Twitch developer console (required)
//   - TWITCH_CLIENT_SECRET: Application client secret (required)
//   - TWITCH_TOKEN_URL: OAuth2 token endpoint (default: https://id.twitch.tv/oauth2/token)
//   - TWITCH_API_URL: Helix API base URL (default: https://api.twitch.tv/helix)
//   - TWITCH_TIMEOUT: Per-attempt HTTP timeout (default: 10s)
//
// TokenURL and APIBaseURL are overridable to point the client at mocks
// during integration testing.
type TwitchConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	TokenURL     string        `koanf:"token_url"`
	APIBaseURL   string        `koanf:"api_base_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8000)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Request read/write timeout (default: 30s)
//   - ENVIRONMENT: "development", "staging", "production" (default: development)
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // Environment mode for security validation
}

// SecurityConfig holds authentication and rate limiting settings.
//
// Environment Variables:
//   - AUTH_MODE: none, jwt, basic (default: none)
//   - JWT_SECRET: HMAC signing secret, min 32 chars (required for jwt mode)
//   - SESSION_TIMEOUT: JWT token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: Dashboard credentials (required for jwt/basic)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP API rate limit (default: 100/1m)
//   - DISABLE_RATE_LIMIT: Disable inbound rate limiting (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - TRUSTED_PROXIES: Comma-separated proxy CIDRs for client IP resolution
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// CacheConfig holds response cache settings.
//
// The cache stores successful analytics responses so repeated lookups for
// the same user or streams filter avoid a provider round trip within the
// TTL. Stream data changes quickly, so the default TTL is short.
//
// Environment Variables:
//   - CACHE_ENABLED: Enable response caching (default: true)
//   - CACHE_STORE: "memory" or "badger" (default: memory)
//   - CACHE_PATH: BadgerDB directory (required when store=badger)
//   - CACHE_TTL: Entry lifetime (default: 30s)
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Store   string        `koanf:"store"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl"`
}

// MonitorConfig holds live-stream monitor settings.
//
// When enabled, the monitor polls the streams endpoint for the watched
// channels and broadcasts stream.online / stream.offline events over the
// WebSocket hub whenever a channel's live state changes.
//
// Environment Variables:
//   - MONITOR_ENABLED: Enable the monitor (default: false)
//   - MONITOR_CHANNELS: Comma-separated channel logins to watch
//   - MONITOR_INTERVAL: Poll interval (default: 60s, minimum: 15s)
//   - MONITOR_BUFFER: Event buffer size per subscriber (default: 64)
type MonitorConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Channels []string      `koanf:"channels"`
	Interval time.Duration `koanf:"interval"`
	Buffer   int           `koanf:"buffer"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
