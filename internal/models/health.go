// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package models

// HealthStatus is the aggregate health report served by /api/v1/health.
// Status is "healthy" when Twitch is reachable and "degraded" otherwise.
// Monitor carries the stream monitor snapshot when monitoring is enabled;
// it is left untyped here so the report can embed it without this package
// depending on the monitor.
type HealthStatus struct {
	Status          string      `json:"status"`
	Version         string      `json:"version"`
	TwitchConnected bool        `json:"twitch_connected"`
	Monitor         interface{} `json:"monitor,omitempty"`
	Uptime          float64     `json:"uptime_seconds"`
}
