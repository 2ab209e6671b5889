// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package services

import (
	"context"
)

// Poller matches *monitor.Monitor's Run method without importing the
// monitor package.
type Poller interface {
	Run(ctx context.Context) error
}

// MonitorService wraps the live stream monitor as a supervised service.
//
// The monitor's Run method polls until its context is canceled, so it
// already fits the suture.Service pattern. Supervision matters here
// because the poll loop talks to the network every tick: a panic in the
// diffing or broadcast path restarts the monitor with its watch list
// intact instead of silently ending live-status updates.
//
// Example usage:
//
//	mon := monitor.New(client, hub, &cfg.Monitor)
//	svc := services.NewMonitorService(mon)
//	tree.AddMessagingService(svc)
type MonitorService struct {
	poller Poller
	name   string
}

// NewMonitorService creates a new monitor service wrapper.
func NewMonitorService(poller Poller) *MonitorService {
	return &MonitorService{
		poller: poller,
		name:   "stream-monitor",
	}
}

// Serve implements suture.Service. It delegates to the monitor's Run,
// which returns ctx.Err() on normal shutdown.
func (m *MonitorService) Serve(ctx context.Context) error {
	return m.poller.Run(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (m *MonitorService) String() string {
	return m.name
}
