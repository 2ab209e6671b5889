// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package config provides centralized configuration management for StreamScope.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the backend
services and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is loaded with Koanf v2 from three layered sources, later layers
overriding earlier ones:

  - Built-in defaults (always present)
  - Optional YAML config file (config.yaml, or CONFIG_PATH)
  - Environment variables (highest priority)

# Configuration Structure

The package organizes configuration into logical groups:

  - TwitchConfig: Twitch API credentials and endpoints
  - ServerConfig: HTTP server settings (host, port, timeouts)
  - SecurityConfig: Authentication, rate limiting, and CORS settings
  - CacheConfig: Response cache settings (memory or BadgerDB)
  - MonitorConfig: Live-stream monitor settings
  - LoggingConfig: Structured logging settings

# Environment Variables

Twitch Provider (TwitchConfig):
  - TWITCH_CLIENT_ID: Application client ID (required)
  - TWITCH_CLIENT_SECRET: Application client secret (required)
  - TWITCH_TOKEN_URL: OAuth2 token endpoint (default: https://id.twitch.tv/oauth2/token)
  - TWITCH_API_URL: Helix API base URL (default: https://api.twitch.tv/helix)
  - TWITCH_TIMEOUT: Per-attempt HTTP timeout (default: 10s)

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8000)
  - HTTP_TIMEOUT: Request read/write timeout (default: 30s)
  - ENVIRONMENT: development, staging, production (default: development)

Security (SecurityConfig):
  - AUTH_MODE: Authentication mode (none, jwt, basic; default: none)
  - JWT_SECRET: JWT signing secret (min 32 chars, required for jwt mode)
  - SESSION_TIMEOUT: JWT token expiration (default: 24h)
  - ADMIN_USERNAME / ADMIN_PASSWORD: Admin credentials (required for jwt/basic)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Disable inbound rate limiting (default: false)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - TRUSTED_PROXIES: Comma-separated trusted proxy IPs/CIDRs

Caching (CacheConfig):
  - CACHE_ENABLED: Enable response caching (default: true)
  - CACHE_STORE: memory or badger (default: memory)
  - CACHE_PATH: BadgerDB directory (required for badger)
  - CACHE_TTL: Cache time-to-live (default: 30s)

Monitor (MonitorConfig):
  - MONITOR_ENABLED: Enable the live-stream monitor (default: false)
  - MONITOR_CHANNELS: Comma-separated channel logins to watch
  - MONITOR_INTERVAL: Poll interval (default: 60s, minimum 15s)
  - MONITOR_BUFFER: Event buffer size per subscriber (default: 64)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage Example

Basic configuration loading:

	import "github.com/streamscope-io/streamscope/internal/config"

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	// Access configuration values
	fmt.Printf("Starting server on %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Helix base: %s\n", cfg.Twitch.APIBaseURL)

# Validation

The package performs comprehensive validation:

  - Required fields: TWITCH_CLIENT_ID, TWITCH_CLIENT_SECRET, JWT_SECRET (if AUTH_MODE=jwt)
  - String length: JWT_SECRET ≥32 chars, admin password policy (12+ chars, mixed classes)
  - Numeric ranges: HTTP_PORT (1-65535), RATE_LIMIT_REQUESTS (1-100000)
  - Duration ranges: TWITCH_TIMEOUT (1s-2m), MONITOR_INTERVAL (15s-1h), CACHE_TTL (1s-24h)
  - URL formats: TWITCH_TOKEN_URL, TWITCH_API_URL must be valid HTTP(S) URLs
  - Placeholder detection: credentials containing CHANGEME, EXAMPLE, etc. are rejected
  - Production rules: AUTH_MODE=none and wildcard CORS with auth are refused in production

# Security Best Practices

When configuring authentication:

 1. Use strong JWT secrets: Minimum 32 characters, cryptographically random
    Generate with: openssl rand -base64 48

 2. Use strong admin passwords: the default policy requires 12+ characters with
    mixed case, digits, and symbols

 3. Configure trusted proxies: Only allow known reverse proxy IPs
    Example: TRUSTED_PROXIES=127.0.0.1,10.0.0.0/8

# Docker Deployment

For Docker deployments, use environment variables or docker-compose.yml:

	services:
	  streamscope:
	    image: ghcr.io/streamscope-io/streamscope:latest
	    environment:
	      TWITCH_CLIENT_ID: ${TWITCH_CLIENT_ID}
	      TWITCH_CLIENT_SECRET: ${TWITCH_CLIENT_SECRET}
	      AUTH_MODE: jwt
	      JWT_SECRET: ${JWT_SECRET}
	      ADMIN_USERNAME: admin
	      ADMIN_PASSWORD: ${ADMIN_PASSWORD}
	      ENVIRONMENT: production
	    ports:
	      - "8000:8000"

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for concurrent
access from multiple goroutines without synchronization.
*/
package config
