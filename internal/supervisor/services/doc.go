// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

/*
Package services provides suture.Service wrappers for StreamScope components.

This package adapts application components to the suture v4 supervision
model, translating their lifecycle patterns (ListenAndServe, Run) into
suture's context-aware Serve pattern.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

WebSocket Hub (WebSocketHubService):
  - Wraps websocket.Hub's RunWithContext
  - Closes all connected clients on shutdown

Live Stream Monitor (MonitorService):
  - Wraps monitor.Monitor's Run poll loop
  - A crash restarts polling with the watch list intact

# Error Handling

Return values determine supervisor behavior:

	nil       -> Service stopped cleanly, will not restart
	error     -> Service crashed, supervisor will restart
	ctx.Err() -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer; suture uses the name in its event log:

	INFO http-server: starting
	ERROR stream-monitor: restarting after failure

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
*/
package services
