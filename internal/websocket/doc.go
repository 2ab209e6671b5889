// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package websocket implements the real-time event push channel.
//
// A single Hub owns the set of connected clients and fans out messages to
// them. The live-stream monitor feeds it stream.online and stream.offline
// events; the API layer upgrades GET /api/v1/ws connections and registers
// the resulting Client with the hub.
//
// # Message Format
//
// Every frame is a JSON envelope:
//
//	{
//	    "type": "stream.online",
//	    "data": { ...stream record... },
//	    "timestamp": "2026-01-15T10:30:00Z"
//	}
//
// Clients may send {"type": "ping"} and will receive {"type": "pong"};
// everything else inbound is ignored. Protocol-level ping/pong keeps idle
// connections open, with a 60s pong deadline.
//
// # Delivery Semantics
//
// Broadcasts are best-effort. Each client has a 256-message buffer; a
// client that cannot drain it is disconnected rather than allowed to
// stall delivery to others. The hub's own broadcast queue also drops
// messages when full, so consumers must treat the stream as lossy and
// use the REST API for authoritative state.
//
// # Lifecycle
//
// RunWithContext runs the hub loop until the context is canceled, closing
// all clients on the way out. It is designed to run under the supervision
// tree so a crashed hub restarts cleanly.
package websocket
