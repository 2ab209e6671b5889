// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package main is the entry point for the StreamScope server application.
//
// StreamScope is a self-hosted analytics proxy for the Twitch Helix API that
// manages OAuth2 app credentials server-side, caches analytics lookups, and
// watches configured channels for live status changes broadcast over
// WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Twitch Client: Helix client with managed token lifecycle behind a circuit breaker
//  3. Response Cache: In-memory TTL map or persistent BadgerDB store
//  4. Authentication: Configure JWT, Basic Auth, or no-auth mode
//  5. WebSocket Hub: Enable real-time updates to connected clients
//  6. Stream Monitor: Poll watched channels for live status changes (optional)
//  7. HTTP Server: REST API with Swagger documentation
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Twitch credentials are always required:
//   - TWITCH_CLIENT_ID: Application client ID from the Twitch developer console
//   - TWITCH_CLIENT_SECRET: Application client secret
//
// For JWT authentication (optional):
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME: Admin username
//   - ADMIN_PASSWORD: Admin password (8+ characters)
//
// For live stream monitoring (optional):
//   - MONITOR_ENABLED=true
//   - MONITOR_CHANNELS: Comma-separated channel logins to watch
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the monitor poll loop and disconnects WebSocket clients
//   - Closes the response cache and the Twitch client
//
// # Example Usage
//
// Development (no auth):
//
//	export TWITCH_CLIENT_ID=xxx
//	export TWITCH_CLIENT_SECRET=xxx
//	export AUTH_MODE=none
//	./streamscope
//
// Production with JWT and monitoring:
//
//	export TWITCH_CLIENT_ID=xxx
//	export TWITCH_CLIENT_SECRET=xxx
//	export AUTH_MODE=jwt
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=secure-password
//	export MONITOR_ENABLED=true
//	export MONITOR_CHANNELS=twitchdev,gamesdonequick
//	./streamscope
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/streamscope-io/streamscope/docs" // Import generated swagger docs
	"github.com/streamscope-io/streamscope/internal/api"
	"github.com/streamscope-io/streamscope/internal/auth"
	"github.com/streamscope-io/streamscope/internal/cache"
	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/monitor"
	"github.com/streamscope-io/streamscope/internal/supervisor"
	"github.com/streamscope-io/streamscope/internal/supervisor/services"
	"github.com/streamscope-io/streamscope/internal/twitch"
	ws "github.com/streamscope-io/streamscope/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting StreamScope with supervisor tree")

	logging.Info().
		Str("api_base_url", cfg.Twitch.APIBaseURL).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Bool("monitor_enabled", cfg.Monitor.Enabled).
		Msg("Configuration loaded")

	// Initialize the Twitch client behind a circuit breaker for fault
	// tolerance. A failed startup ping is not fatal: the client exchanges
	// credentials for a fresh token on demand, so upstream can come back
	// without a restart.
	client := twitch.NewCircuitBreakerClient(&cfg.Twitch)
	if err := client.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to connect to Twitch (will retry on demand)")
	} else {
		logging.Info().Msg("Connected to Twitch successfully")
	}
	defer func() {
		if err := client.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing Twitch client")
		}
	}()

	// Response cache for analytics lookups
	var store cache.Store
	if cfg.Cache.Enabled {
		store, err = cache.NewStore(&cfg.Cache)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize response cache")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing response cache")
			}
		}()
		logging.Info().
			Str("store", cfg.Cache.Store).
			Dur("ttl", cfg.Cache.TTL).
			Msg("Response cache initialized")
	} else {
		logging.Info().Msg("Response caching disabled (CACHE_ENABLED=false)")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jwtManager *auth.JWTManager
	var basicAuthManager *auth.BasicAuthManager

	if cfg.Security.AuthMode == auth.ModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	} else if cfg.Security.AuthMode == auth.ModeBasic {
		basicAuthManager, err = auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
		logging.Info().Msg("Basic authentication enabled")
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
	} else if cfg.Security.AuthMode == auth.ModeNone {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("    - CI/CD testing environments")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	middleware, err := auth.NewMiddleware(&cfg.Security, jwtManager, basicAuthManager)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize auth middleware")
	}
	defer middleware.Stop()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for CI/CD testing!")
	}

	// Warn about wildcard CORS when authentication is enabled
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  This allows ANY website to make cross-origin requests to your API.")
		logging.Warn().Msg("  With authentication enabled, this creates a security vulnerability:")
		logging.Warn().Msg("  attackers can steal credentials via malicious websites.")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
		logging.Warn().Msg("============================================================")
	}

	// Create WebSocket hub for real-time updates. The hub must exist before
	// the monitor, which broadcasts stream events through it.
	wsHub := ws.NewHub()

	// Create the stream monitor (not started here - supervisor will start it)
	var mon *monitor.Monitor
	if cfg.Monitor.Enabled {
		mon = monitor.New(client, wsHub, &cfg.Monitor)
		logging.Info().
			Strs("channels", cfg.Monitor.Channels).
			Dur("interval", cfg.Monitor.Interval).
			Msg("Stream monitor enabled")
	} else {
		logging.Info().Msg("Stream monitor disabled (MONITOR_ENABLED=false)")
	}

	handler := api.NewHandler(client, cfg, jwtManager, basicAuthManager, store, mon, wsHub)
	router := api.NewRouter(handler, middleware, &cfg.Security)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter.
	// This bridges zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	logging.Info().Msg("WebSocket hub added to supervisor tree")
	if mon != nil {
		tree.AddMessagingService(services.NewMonitorService(mon))
		logging.Info().Msg("Stream monitor added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
