// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package monitor

import (
	"context"
	"errors"
	"io"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/models"
	"github.com/streamscope-io/streamscope/internal/twitch"
)

//nolint:gochecknoinits // quiet logger for the whole test binary
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// fakeStreamClient satisfies twitch.ClientInterface with canned streams.
type fakeStreamClient struct {
	mu         sync.Mutex
	streams    []models.TwitchStream
	err        error
	calls      int
	lastIDs    []string
	lastLogins []string
}

var _ twitch.ClientInterface = (*fakeStreamClient)(nil)

func (f *fakeStreamClient) GetStreams(ctx context.Context, userIDs, userLogins []string) ([]models.TwitchStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastIDs = userIDs
	f.lastLogins = userLogins
	if f.err != nil {
		return nil, f.err
	}
	return f.streams, nil
}

func (f *fakeStreamClient) GetUsers(ctx context.Context, ids, logins []string) ([]models.TwitchUser, error) {
	return nil, nil
}

func (f *fakeStreamClient) Ping(ctx context.Context) error { return nil }
func (f *fakeStreamClient) Close() error                   { return nil }

func (f *fakeStreamClient) setStreams(streams []models.TwitchStream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streams = streams
	f.err = nil
}

func (f *fakeStreamClient) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStreamClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingBroadcaster captures events instead of fanning them out.
type recordingBroadcaster struct {
	mu        sync.Mutex
	online    []models.TwitchStream
	offline   []models.TwitchStream
	snapshots int
}

func (r *recordingBroadcaster) BroadcastStreamOnline(stream *models.TwitchStream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online = append(r.online, *stream)
}

func (r *recordingBroadcaster) BroadcastStreamOffline(stream *models.TwitchStream) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offline = append(r.offline, *stream)
}

func (r *recordingBroadcaster) BroadcastMonitorSnapshot(data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots++
}

func (r *recordingBroadcaster) counts() (online, offline, snapshots int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.online), len(r.offline), r.snapshots
}

func makeStream(login, id string, viewers int) models.TwitchStream {
	return models.TwitchStream{
		ID:          id,
		UserID:      "u-" + login,
		UserLogin:   login,
		UserName:    login,
		GameID:      "32982",
		GameName:    "Grand Theft Auto V",
		Type:        "live",
		Title:       login + " goes live",
		ViewerCount: viewers,
		StartedAt:   time.Now().Add(-30 * time.Minute),
		Language:    "en",
	}
}

func newTestMonitor(client twitch.ClientInterface, hub Broadcaster, channels ...string) *Monitor {
	return New(client, hub, &config.MonitorConfig{
		Enabled:  true,
		Channels: channels,
		Interval: time.Minute,
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cfg          config.MonitorConfig
		wantInterval time.Duration
		wantChannels []string
	}{
		{
			name:         "zero interval defaults to 60s",
			cfg:          config.MonitorConfig{Channels: []string{"sandgrape"}},
			wantInterval: 60 * time.Second,
			wantChannels: []string{"sandgrape"},
		},
		{
			name:         "interval below floor is clamped",
			cfg:          config.MonitorConfig{Channels: []string{"sandgrape"}, Interval: 5 * time.Second},
			wantInterval: 15 * time.Second,
			wantChannels: []string{"sandgrape"},
		},
		{
			name:         "valid interval passes through",
			cfg:          config.MonitorConfig{Channels: []string{"sandgrape"}, Interval: 30 * time.Second},
			wantInterval: 30 * time.Second,
			wantChannels: []string{"sandgrape"},
		},
		{
			name:         "channels lowercased trimmed and deduped",
			cfg:          config.MonitorConfig{Channels: []string{"SandGrape", " ninja ", "sandgrape", ""}, Interval: time.Minute},
			wantInterval: time.Minute,
			wantChannels: []string{"sandgrape", "ninja"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := New(&fakeStreamClient{}, &recordingBroadcaster{}, &tt.cfg)
			if m.interval != tt.wantInterval {
				t.Errorf("interval = %v, want %v", m.interval, tt.wantInterval)
			}
			if !reflect.DeepEqual(m.channels, tt.wantChannels) {
				t.Errorf("channels = %v, want %v", m.channels, tt.wantChannels)
			}
		})
	}
}

func TestMonitor_PollQueriesWatchedChannels(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{}
	m := newTestMonitor(client, &recordingBroadcaster{}, "Alpha", "beta")

	m.poll(context.Background())

	if client.lastIDs != nil {
		t.Errorf("expected nil user IDs, got %v", client.lastIDs)
	}
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(client.lastLogins, want) {
		t.Errorf("logins = %v, want %v", client.lastLogins, want)
	}
}

func TestMonitor_FirstPollBroadcastsLiveChannels(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: []models.TwitchStream{
		makeStream("alpha", "s-1", 120),
		makeStream("beta", "s-2", 45),
	}}
	hub := &recordingBroadcaster{}
	m := newTestMonitor(client, hub, "alpha", "beta", "gamma")

	m.poll(context.Background())

	online, offline, snapshots := hub.counts()
	if online != 2 {
		t.Errorf("online events = %d, want 2", online)
	}
	if offline != 0 {
		t.Errorf("offline events = %d, want 0", offline)
	}
	if snapshots != 1 {
		t.Errorf("snapshot broadcasts = %d, want 1", snapshots)
	}

	snap := m.Snapshot()
	if snap.WatchedChannels != 3 {
		t.Errorf("watched channels = %d, want 3", snap.WatchedChannels)
	}
	if !reflect.DeepEqual(snap.LiveChannels, []string{"alpha", "beta"}) {
		t.Errorf("live channels = %v, want [alpha beta]", snap.LiveChannels)
	}
	if snap.LastPollTime.IsZero() {
		t.Error("expected last poll time to be set")
	}
	if snap.LastError != "" {
		t.Errorf("unexpected last error %q", snap.LastError)
	}
}

func TestMonitor_PollDetectsOffline(t *testing.T) {
	t.Parallel()

	first := makeStream("alpha", "s-1", 120)
	second := makeStream("beta", "s-2", 45)
	client := &fakeStreamClient{streams: []models.TwitchStream{first, second}}
	hub := &recordingBroadcaster{}
	m := newTestMonitor(client, hub, "alpha", "beta")

	m.poll(context.Background())

	client.setStreams([]models.TwitchStream{first})
	m.poll(context.Background())

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.offline) != 1 {
		t.Fatalf("offline events = %d, want 1", len(hub.offline))
	}
	// The offline payload is the last record seen while the channel was live.
	if hub.offline[0].UserLogin != "beta" || hub.offline[0].ID != "s-2" {
		t.Errorf("offline event = %s/%s, want beta/s-2", hub.offline[0].UserLogin, hub.offline[0].ID)
	}
	if hub.offline[0].Title != second.Title {
		t.Errorf("offline title = %q, want %q", hub.offline[0].Title, second.Title)
	}
}

func TestMonitor_PollDetectsRestartedBroadcast(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: []models.TwitchStream{makeStream("alpha", "s-1", 120)}}
	hub := &recordingBroadcaster{}
	m := newTestMonitor(client, hub, "alpha")

	m.poll(context.Background())

	// Same channel, new stream ID: the broadcast restarted between ticks.
	client.setStreams([]models.TwitchStream{makeStream("alpha", "s-9", 10)})
	m.poll(context.Background())

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.offline) != 1 || hub.offline[0].ID != "s-1" {
		t.Fatalf("expected one offline event for s-1, got %+v", hub.offline)
	}
	if len(hub.online) != 2 || hub.online[1].ID != "s-9" {
		t.Fatalf("expected second online event for s-9, got %+v", hub.online)
	}
}

func TestMonitor_PollNoChangesNoEvents(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: []models.TwitchStream{makeStream("alpha", "s-1", 120)}}
	hub := &recordingBroadcaster{}
	m := newTestMonitor(client, hub, "alpha")

	m.poll(context.Background())
	m.poll(context.Background())

	online, offline, snapshots := hub.counts()
	if online != 1 {
		t.Errorf("online events = %d, want 1", online)
	}
	if offline != 0 {
		t.Errorf("offline events = %d, want 0", offline)
	}
	// Snapshots go out only when the live set changed.
	if snapshots != 1 {
		t.Errorf("snapshot broadcasts = %d, want 1", snapshots)
	}
}

func TestMonitor_PollFailureKeepsLiveState(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{streams: []models.TwitchStream{makeStream("alpha", "s-1", 120)}}
	hub := &recordingBroadcaster{}
	m := newTestMonitor(client, hub, "alpha")

	m.poll(context.Background())

	client.setError(errors.New("rate limit exceeded"))
	m.poll(context.Background())

	snap := m.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Errorf("consecutive failures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.LastError == "" {
		t.Error("expected last error to be set")
	}
	// A failed poll means unknown, not offline.
	if !reflect.DeepEqual(snap.LiveChannels, []string{"alpha"}) {
		t.Errorf("live channels = %v, want [alpha]", snap.LiveChannels)
	}
	_, offline, _ := hub.counts()
	if offline != 0 {
		t.Errorf("offline events after failed poll = %d, want 0", offline)
	}

	// Recovery clears the failure state.
	client.setStreams([]models.TwitchStream{makeStream("alpha", "s-1", 120)})
	m.poll(context.Background())

	snap = m.Snapshot()
	if snap.ConsecutiveFailures != 0 {
		t.Errorf("consecutive failures after recovery = %d, want 0", snap.ConsecutiveFailures)
	}
	if snap.LastError != "" {
		t.Errorf("last error after recovery = %q, want empty", snap.LastError)
	}
}

func TestMonitor_ConsecutiveFailuresAccumulate(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{err: errors.New("connection refused")}
	m := newTestMonitor(client, &recordingBroadcaster{}, "alpha")

	for i := 0; i < 4; i++ {
		m.poll(context.Background())
	}

	snap := m.Snapshot()
	if snap.ConsecutiveFailures != 4 {
		t.Errorf("consecutive failures = %d, want 4", snap.ConsecutiveFailures)
	}
}

func TestMonitor_SnapshotBeforeFirstPoll(t *testing.T) {
	t.Parallel()

	m := newTestMonitor(&fakeStreamClient{}, &recordingBroadcaster{}, "alpha", "beta")

	snap := m.Snapshot()
	if snap.WatchedChannels != 2 {
		t.Errorf("watched channels = %d, want 2", snap.WatchedChannels)
	}
	if len(snap.LiveChannels) != 0 {
		t.Errorf("live channels = %v, want empty", snap.LiveChannels)
	}
	if !snap.LastPollTime.IsZero() {
		t.Error("expected zero last poll time before first poll")
	}
	if snap.ConsecutiveFailures != 0 {
		t.Errorf("consecutive failures = %d, want 0", snap.ConsecutiveFailures)
	}
}

func TestMonitor_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	client := &fakeStreamClient{}
	m := newTestMonitor(client, &recordingBroadcaster{}, "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Run(ctx)
	}()

	// Wait for the startup poll, then cancel.
	deadline := time.Now().Add(2 * time.Second)
	for client.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for initial poll")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
