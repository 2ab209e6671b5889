// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/streamscope-io/streamscope/internal/models"
)

// fakeClient is a scriptable ClientInterface for exercising the breaker
// without network traffic.
type fakeClient struct {
	mu          sync.Mutex
	usersErr    error
	pingErr     error
	users       []models.TwitchUser
	streams     []models.TwitchStream
	userCalls   int
	streamCalls int
	pingCalls   int
	closeCalls  int
}

var _ ClientInterface = (*fakeClient)(nil)

func (f *fakeClient) GetUsers(ctx context.Context, ids, logins []string) ([]models.TwitchUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return f.users, nil
}

func (f *fakeClient) GetStreams(ctx context.Context, userIDs, userLogins []string) ([]models.TwitchStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamCalls++
	return f.streams, nil
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeClient) setUsersErr(err error) {
	f.mu.Lock()
	f.usersErr = err
	f.mu.Unlock()
}

func (f *fakeClient) userCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}

// ============================================================================
// Pass-Through Tests
// ============================================================================

func TestCircuitBreaker_PassesResultsThrough(t *testing.T) {
	fake := &fakeClient{
		users: []models.TwitchUser{{ID: "1", Login: "one"}, {ID: "2", Login: "two"}},
	}
	cb := newBreakerFor(fake)

	users, err := cb.GetUsers(context.Background(), []string{"1", "2"}, nil)
	if err != nil {
		t.Fatalf("GetUsers error: %v", err)
	}
	if len(users) != 2 || users[0].Login != "one" {
		t.Errorf("unexpected users: %+v", users)
	}
	if fake.userCallCount() != 1 {
		t.Errorf("user calls = %d, want 1", fake.userCallCount())
	}
}

func TestCircuitBreaker_PassesStreamsThrough(t *testing.T) {
	fake := &fakeClient{
		streams: []models.TwitchStream{{ID: "s1", UserLogin: "one", ViewerCount: 42}},
	}
	cb := newBreakerFor(fake)

	streams, err := cb.GetStreams(context.Background(), nil, []string{"one"})
	if err != nil {
		t.Fatalf("GetStreams error: %v", err)
	}
	if len(streams) != 1 || streams[0].ViewerCount != 42 {
		t.Errorf("unexpected streams: %+v", streams)
	}
}

func TestCircuitBreaker_PassesErrorsThrough(t *testing.T) {
	fake := &fakeClient{usersErr: fmt.Errorf("get users: %w", ErrProvider)}
	cb := newBreakerFor(fake)

	_, err := cb.GetUsers(context.Background(), []string{"1"}, nil)
	if !errors.Is(err, ErrProvider) {
		t.Fatalf("expected ErrProvider, got %v", err)
	}
	if errors.Is(err, ErrCircuitOpen) {
		t.Error("a single failure must not open the circuit")
	}
}

// ============================================================================
// Tripping Tests
// ============================================================================

func TestCircuitBreaker_OpensAfterSustainedFailures(t *testing.T) {
	fake := &fakeClient{usersErr: fmt.Errorf("get users: %w", ErrProvider)}
	cb := newBreakerFor(fake)

	for i := 0; i < 10; i++ {
		if _, err := cb.GetUsers(context.Background(), []string{"1"}, nil); !errors.Is(err, ErrProvider) {
			t.Fatalf("call %d: expected ErrProvider, got %v", i, err)
		}
	}

	_, err := cb.GetUsers(context.Background(), []string{"1"}, nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after ten failures, got %v", err)
	}
	if fake.userCallCount() != 10 {
		t.Errorf("user calls = %d, want 10 (open circuit must not reach upstream)", fake.userCallCount())
	}
}

func TestCircuitBreaker_IgnoresNotFound(t *testing.T) {
	fake := &fakeClient{usersErr: fmt.Errorf("get users: %w", ErrNotFound)}
	cb := newBreakerFor(fake)

	for i := 0; i < 20; i++ {
		_, err := cb.GetUsers(context.Background(), []string{"1"}, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: expected ErrNotFound, got %v", i, err)
		}
		if errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: 404s must not open the circuit", i)
		}
	}

	fake.setUsersErr(nil)
	if _, err := cb.GetUsers(context.Background(), []string{"1"}, nil); err != nil {
		t.Fatalf("circuit should still be closed, got %v", err)
	}
}

func TestCircuitBreaker_IgnoresInvalidArgument(t *testing.T) {
	fake := &fakeClient{usersErr: fmt.Errorf("%w: at least one user id or login is required", ErrInvalidArgument)}
	cb := newBreakerFor(fake)

	for i := 0; i < 20; i++ {
		_, err := cb.GetUsers(context.Background(), nil, nil)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("call %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}

	fake.setUsersErr(nil)
	if _, err := cb.GetUsers(context.Background(), []string{"1"}, nil); err != nil {
		t.Fatalf("circuit should still be closed, got %v", err)
	}
}

func TestCircuitBreaker_SharedAcrossMethods(t *testing.T) {
	fake := &fakeClient{pingErr: fmt.Errorf("ping: %w", ErrAuthentication)}
	cb := newBreakerFor(fake)

	for i := 0; i < 10; i++ {
		if err := cb.Ping(context.Background()); !errors.Is(err, ErrAuthentication) {
			t.Fatalf("ping %d: %v", i, err)
		}
	}

	_, err := cb.GetUsers(context.Background(), []string{"1"}, nil)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen (one circuit guards all upstream calls), got %v", err)
	}
	if fake.userCallCount() != 0 {
		t.Errorf("user calls = %d, want 0", fake.userCallCount())
	}
}

func TestCircuitBreaker_CloseBypassesCircuit(t *testing.T) {
	fake := &fakeClient{usersErr: fmt.Errorf("get users: %w", ErrTransport)}
	cb := newBreakerFor(fake)

	for i := 0; i < 10; i++ {
		cb.GetUsers(context.Background(), []string{"1"}, nil) //nolint:errcheck
	}

	if err := cb.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if fake.closeCalls != 1 {
		t.Errorf("close calls = %d, want 1 (Close must work while open)", fake.closeCalls)
	}
}

// ============================================================================
// Result Narrowing Tests
// ============================================================================

func TestCastResult(t *testing.T) {
	t.Run("typed value", func(t *testing.T) {
		want := []models.TwitchUser{{ID: "1"}}
		got, err := castResult[[]models.TwitchUser](interface{}(want), nil)
		if err != nil {
			t.Fatalf("castResult error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("nil result", func(t *testing.T) {
		got, err := castResult[[]models.TwitchUser](nil, nil)
		if err != nil {
			t.Fatalf("castResult error: %v", err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("error passthrough", func(t *testing.T) {
		_, err := castResult[[]models.TwitchUser](nil, ErrProvider)
		if !errors.Is(err, ErrProvider) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := castResult[[]models.TwitchUser]("not a slice", nil)
		if err == nil {
			t.Fatal("expected error for mismatched type")
		}
	})
}
