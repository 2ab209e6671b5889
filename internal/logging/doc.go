// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package logging provides centralized zerolog-based structured logging for StreamScope.
//
// This package implements a unified logging layer using zerolog, providing
// zero-allocation structured JSON logging for production and human-readable
// console output for development.
//
// # Overview
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with correlation ID propagation
//   - slog adapter for Suture v4 integration
//   - Security-focused logging with sensitive data filtering
//   - Event logging for the monitor/hub pipeline
//
// # Quick Start
//
//	import "github.com/streamscope-io/streamscope/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Caller: false,
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("login", "twitchdev").Msg("User lookup")
//	logging.Error().Err(err).Int("status", 502).Msg("Provider call failed")
//
//	// Context-aware logging
//	logging.Ctx(ctx).Info().Msg("Processing request")
//
// # Configuration
//
// Logging is configured through the application config (see internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Component Loggers
//
// Create component-specific loggers with default fields:
//
//	twitchLogger := logging.WithComponent("twitch")
//	twitchLogger.Info().Msg("Client initialized")
//
// # Security Logging
//
// Credentials must never reach log output. The SecurityLogger sanitizes
// usernames, tokens, and error strings before emitting; the Sanitize*
// helpers are available for ad-hoc use:
//
//	logging.Debug().
//	    Str("token", logging.SanitizeToken(tok)).
//	    Msg("Token refreshed")
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
//
// # Testing
//
// Create test loggers that capture output:
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//	logger.Info().Msg("test message")
//	output := buf.String()
//
// # See Also
//
//   - github.com/rs/zerolog: Underlying logging library
//   - internal/api: Request ID middleware for correlation
package logging
