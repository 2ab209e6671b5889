// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package monitor

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
	"github.com/streamscope-io/streamscope/internal/models"
	"github.com/streamscope-io/streamscope/internal/twitch"
	"github.com/streamscope-io/streamscope/internal/websocket"
)

const (
	defaultInterval = 60 * time.Second
	minInterval     = 15 * time.Second // Helix rate limit budget: don't poll faster

	// failureWarnThreshold is the consecutive-failure count at which the
	// monitor escalates from per-poll error logs to a warning about the
	// poll loop itself.
	failureWarnThreshold = 3
)

// Broadcaster receives stream state transitions detected by the monitor.
// *websocket.Hub satisfies it; tests substitute a recorder.
type Broadcaster interface {
	BroadcastStreamOnline(stream *models.TwitchStream)
	BroadcastStreamOffline(stream *models.TwitchStream)
	BroadcastMonitorSnapshot(data interface{})
}

// Snapshot is the monitor state exposed by the health endpoint and pushed
// to subscribers after polls that changed the live set.
//
// LastPollTime is the most recent poll attempt, successful or not.
// LastError is empty after a successful poll.
type Snapshot struct {
	WatchedChannels     int       `json:"watched_channels"`
	LiveChannels        []string  `json:"live_channels"`
	LastPollTime        time.Time `json:"last_poll_time"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

// Monitor polls the streams endpoint for a watched channel list and turns
// live-set changes into stream.online / stream.offline broadcasts.
//
// Polling goes through the same circuit-breaker-wrapped client as the REST
// handlers, so token refresh, rate-limit waits, and breaker trips apply to
// the monitor automatically.
type Monitor struct {
	client   twitch.ClientInterface
	hub      Broadcaster
	events   *logging.EventLogger
	channels []string
	interval time.Duration

	mu       sync.RWMutex
	live     map[string]models.TwitchStream
	lastPoll time.Time
	lastErr  error
	failures int
}

// New creates a monitor for the configured watch list. The interval
// defaults to 60s and is floored at 15s regardless of configuration.
func New(client twitch.ClientInterface, hub Broadcaster, cfg *config.MonitorConfig) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	if interval < minInterval {
		logging.Warn().
			Dur("requested", interval).
			Dur("floor", minInterval).
			Msg("Monitor interval below floor, clamping")
		interval = minInterval
	}

	channels := normalizeChannels(cfg.Channels)
	metrics.MonitorWatchedChannels.Set(float64(len(channels)))

	return &Monitor{
		client:   client,
		hub:      hub,
		events:   logging.NewEventLogger(),
		channels: channels,
		interval: interval,
		live:     make(map[string]models.TwitchStream),
	}
}

// normalizeChannels lowercases, trims, and dedupes the watch list. Helix
// reports user_login in lowercase, so the diff keys must match.
func normalizeChannels(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := make([]string, 0, len(channels))
	for i := 0; i < len(channels); i++ {
		login := strings.ToLower(strings.TrimSpace(channels[i]))
		if login == "" {
			continue
		}
		if _, dup := seen[login]; dup {
			continue
		}
		seen[login] = struct{}{}
		out = append(out, login)
	}
	return out
}

// Run polls until ctx is canceled and returns ctx.Err(), which the
// supervisor records as a normal stop rather than a service failure.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Info().
		Int("channels", len(m.channels)).
		Dur("interval", m.interval).
		Msg("Starting live stream monitor")

	// Poll immediately so health and subscribers are not blind for a full
	// interval after startup.
	m.poll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().
				Int("live", m.liveCount()).
				Msg("Live stream monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll fetches the current live set, broadcasts the transitions since the
// previous tick, and records the outcome.
func (m *Monitor) poll(ctx context.Context) {
	start := time.Now()
	streams, err := m.client.GetStreams(ctx, nil, m.channels)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordMonitorPoll(duration, 0, err)
		m.events.LogPollFailed(ctx, err)
		m.recordFailure(err)
		return
	}

	current := make(map[string]models.TwitchStream, len(streams))
	for i := 0; i < len(streams); i++ {
		current[strings.ToLower(streams[i].UserLogin)] = streams[i]
	}

	changes := m.broadcastDiff(ctx, current)

	m.mu.Lock()
	m.live = current
	m.lastPoll = time.Now()
	m.lastErr = nil
	m.failures = 0
	m.mu.Unlock()

	metrics.RecordMonitorPoll(duration, len(current), nil)
	m.events.LogPollCompleted(ctx, len(m.channels), len(current), duration.Milliseconds())

	if changes > 0 {
		m.hub.BroadcastMonitorSnapshot(m.Snapshot())
	}
}

// broadcastDiff emits events for every channel whose state changed since
// the previous tick and returns the number of events emitted. A channel
// that restarted its broadcast between polls (same login, new stream ID)
// produces an offline/online pair so subscribers see both records.
func (m *Monitor) broadcastDiff(ctx context.Context, current map[string]models.TwitchStream) int {
	m.mu.RLock()
	prev := m.live
	m.mu.RUnlock()

	changes := 0

	for login := range current {
		stream := current[login]
		old, wasLive := prev[login]
		switch {
		case !wasLive:
			m.broadcastOnline(ctx, &stream)
			changes++
		case old.ID != stream.ID:
			m.broadcastOffline(ctx, &old)
			m.broadcastOnline(ctx, &stream)
			changes += 2
		}
	}

	for login := range prev {
		if _, stillLive := current[login]; !stillLive {
			// The offline event carries the last record seen while live,
			// so subscribers know which broadcast ended.
			old := prev[login]
			m.broadcastOffline(ctx, &old)
			changes++
		}
	}

	return changes
}

func (m *Monitor) broadcastOnline(ctx context.Context, stream *models.TwitchStream) {
	m.hub.BroadcastStreamOnline(stream)
	metrics.RecordStreamEvent(websocket.MessageTypeStreamOnline)
	m.events.LogStreamOnline(ctx, stream.UserLogin, stream.ViewerCount)
}

func (m *Monitor) broadcastOffline(ctx context.Context, stream *models.TwitchStream) {
	m.hub.BroadcastStreamOffline(stream)
	metrics.RecordStreamEvent(websocket.MessageTypeStreamOffline)
	m.events.LogStreamOffline(ctx, stream.UserLogin)
}

// recordFailure counts the failed attempt without touching the live set: a
// failed poll means unknown, not offline, and must not fan out spurious
// offline events.
func (m *Monitor) recordFailure(err error) {
	m.mu.Lock()
	m.lastPoll = time.Now()
	m.lastErr = err
	m.failures++
	failures := m.failures
	m.mu.Unlock()

	if failures >= failureWarnThreshold {
		logging.Warn().
			Err(err).
			Int("consecutive_failures", failures).
			Msg("Monitor polls failing repeatedly")
	}
}

// Snapshot returns the current monitor state for the health endpoint.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	live := make([]string, 0, len(m.live))
	for login := range m.live {
		live = append(live, login)
	}
	sort.Strings(live)

	snap := Snapshot{
		WatchedChannels:     len(m.channels),
		LiveChannels:        live,
		LastPollTime:        m.lastPoll,
		ConsecutiveFailures: m.failures,
	}
	if m.lastErr != nil {
		snap.LastError = m.lastErr.Error()
	}
	return snap
}

func (m *Monitor) liveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}
