// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package supervisor provides process supervision for StreamScope using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of all long-running services in the application, with automatic
restart, failure isolation, and graceful shutdown in the Erlang/OTP style.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("streamscope")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── MonitorService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A crashing monitor poll loop restarts without dropping WebSocket clients
  - Hub or monitor failures don't impact API availability
  - Each layer has independent failure counting and backoff

# Usage Example

Basic setup in main.go:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(services.NewMonitorService(mon))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errChan := tree.ServeBackground(ctx)
	if err := <-errChan; err != nil {
	    log.Printf("Supervisor stopped: %v", err)
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Zero values fall back to suture's production defaults (5 / 30 / 15s / 10s).

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: service stopped cleanly, will not be restarted
  - Return error: service crashed, will be restarted with backoff
  - Context canceled: shutdown requested, return promptly

# What Is NOT Supervised

The Twitch client is intentionally not supervised: it is a request/response
library, not a long-running loop. Its failure handling lives in the circuit
breaker, and the monitor that calls it is supervised instead.

# Debugging Shutdown Issues

If services don't stop within the timeout:

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}

Common causes are goroutines ignoring context cancellation and blocked
network I/O without deadlines.

# See Also

  - internal/supervisor/services: Service wrappers
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
