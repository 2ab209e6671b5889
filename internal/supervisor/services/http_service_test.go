// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// mockHTTPServer implements HTTPServer for testing.
type mockHTTPServer struct {
	started    atomic.Bool
	shutdown   atomic.Bool
	serveErr   error
	releaseCh  chan struct{}
	shutdownFn func(ctx context.Context) error
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{releaseCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.started.Store(true)
	if m.serveErr != nil {
		return m.serveErr
	}
	<-m.releaseCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdown.Store(true)
	close(m.releaseCh)
	if m.shutdownFn != nil {
		return m.shutdownFn(ctx)
	}
	return nil
}

func TestHTTPServerService_GracefulShutdown(t *testing.T) {
	mock := newMockHTTPServer()
	svc := NewHTTPServerService(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	// Let the server start, then request shutdown
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop in time")
	}

	if !mock.started.Load() {
		t.Error("server was not started")
	}
	if !mock.shutdown.Load() {
		t.Error("server was not shut down")
	}
}

func TestHTTPServerService_StartupFailure(t *testing.T) {
	mock := newMockHTTPServer()
	mock.serveErr = errors.New("address already in use")
	svc := NewHTTPServerService(mock, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected an error for failed startup")
	}
	if !errors.Is(err, mock.serveErr) {
		t.Errorf("expected wrapped serve error, got %v", err)
	}
}

func TestHTTPServerService_ShutdownFailure(t *testing.T) {
	mock := newMockHTTPServer()
	shutdownErr := errors.New("connections still draining")
	mock.shutdownFn = func(ctx context.Context) error { return shutdownErr }
	svc := NewHTTPServerService(mock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, shutdownErr) {
			t.Errorf("expected wrapped shutdown error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop in time")
	}
}

func TestHTTPServerService_DefaultsShutdownTimeout(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), 0)

	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", svc.shutdownTimeout)
	}
}

func TestHTTPServerService_String(t *testing.T) {
	svc := NewHTTPServerService(newMockHTTPServer(), time.Second)

	if svc.String() != "http-server" {
		t.Errorf("String() = %q, want http-server", svc.String())
	}
}
