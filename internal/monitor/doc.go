// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

// Package monitor watches a configured list of channels and converts
// live-state changes into WebSocket broadcasts.
//
// # Polling Model
//
// The monitor fetches the live subset of the watch list once per interval
// (MONITOR_INTERVAL, default 60s, floor 15s) and diffs it against the
// previous tick:
//
//   - a channel present now but not before broadcasts stream.online
//   - a channel present before but not now broadcasts stream.offline,
//     carrying the last stream record seen while it was live
//   - a channel live in both ticks under a new stream ID broadcasts an
//     offline/online pair (the broadcast restarted between polls)
//
// The first poll runs at startup against an empty previous set, so every
// channel already live produces a stream.online event. Transitions
// shorter than one interval are invisible.
//
// # Failure Handling
//
// A failed poll leaves the live set untouched: an unreachable provider
// means state is unknown, not that every channel went offline. Failures
// are counted and surfaced through Snapshot for the health endpoint, and
// the next tick retries. Polls go through the circuit-breaker-wrapped
// client, so sustained provider outages trip the breaker and poll
// attempts fail fast until it recovers.
package monitor
