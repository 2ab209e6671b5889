// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockHub implements ContextHub for testing.
type mockHub struct {
	running atomic.Bool
	err     error
}

func (m *mockHub) RunWithContext(ctx context.Context) error {
	m.running.Store(true)
	defer m.running.Store(false)
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService_RunsUntilCanceled(t *testing.T) {
	hub := &mockHub{}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	if !hub.running.Load() {
		t.Error("hub was not running")
	}

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("service did not stop in time")
	}
}

func TestWebSocketHubService_PropagatesHubError(t *testing.T) {
	hubErr := errors.New("broadcast channel wedged")
	svc := NewWebSocketHubService(&mockHub{err: hubErr})

	if err := svc.Serve(context.Background()); !errors.Is(err, hubErr) {
		t.Errorf("expected hub error, got %v", err)
	}
}

func TestWebSocketHubService_String(t *testing.T) {
	svc := NewWebSocketHubService(&mockHub{})

	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", svc.String())
	}
}
