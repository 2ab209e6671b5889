// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestBadgerStore(t *testing.T, ttl time.Duration) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore(t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("NewBadgerStore error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================================
// Round-Trip Tests
// ============================================================================

func TestBadgerStore_SetGet(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)
	ctx := context.Background()

	in := testPayload{Login: "somestreamer", ViewerCount: 1490}
	if err := s.Set(ctx, "user:login:somestreamer", in); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	var out testPayload
	hit, err := s.Get(ctx, "user:login:somestreamer", &out)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected a hit")
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)

	var out testPayload
	hit, err := s.Get(context.Background(), "user:id:0", &out)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected a miss for an absent key")
	}
}

func TestBadgerStore_Overwrite(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)
	ctx := context.Background()

	s.Set(ctx, "k", testPayload{Login: "old"})   //nolint:errcheck
	s.Set(ctx, "k", testPayload{Login: "fresh"}) //nolint:errcheck

	var out testPayload
	if hit, _ := s.Get(ctx, "k", &out); !hit || out.Login != "fresh" {
		t.Errorf("hit=%v out=%+v, want the latest value", hit, out)
	}
	if n := s.Stats().Entries; n != 1 {
		t.Errorf("Entries = %d, want 1", n)
	}
}

// ============================================================================
// TTL Tests
// ============================================================================

func TestBadgerStore_TTLExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("badger TTLs have one-second granularity")
	}

	s := newTestBadgerStore(t, time.Second)
	ctx := context.Background()

	s.Set(ctx, "k", testPayload{Login: "gone"}) //nolint:errcheck

	var out testPayload
	if hit, _ := s.Get(ctx, "k", &out); !hit {
		t.Fatal("expected a hit before expiry")
	}

	time.Sleep(2100 * time.Millisecond)

	hit, err := s.Get(ctx, "k", &out)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected a miss after the TTL passed")
	}
}

// ============================================================================
// Mutation Tests
// ============================================================================

func TestBadgerStore_Delete(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)
	ctx := context.Background()

	s.Set(ctx, "k", testPayload{}) //nolint:errcheck

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("deleting an absent key should be a no-op, got %v", err)
	}

	var out testPayload
	if hit, _ := s.Get(ctx, "k", &out); hit {
		t.Error("expected a miss after Delete")
	}
}

func TestBadgerStore_Clear(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s.Set(ctx, fmt.Sprintf("k%d", i), testPayload{ViewerCount: i}) //nolint:errcheck
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	if n := s.Stats().Entries; n != 0 {
		t.Errorf("Entries = %d, want 0", n)
	}

	var out testPayload
	if hit, _ := s.Get(ctx, "k0", &out); hit {
		t.Error("expected a miss after Clear")
	}
}

// ============================================================================
// Persistence Tests
// ============================================================================

func TestBadgerStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewBadgerStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, "k", testPayload{Login: "persisted"}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	second, err := NewBadgerStore(dir, time.Hour)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	var out testPayload
	hit, err := second.Get(ctx, "k", &out)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || out.Login != "persisted" {
		t.Errorf("hit=%v out=%+v, want the entry to survive a restart", hit, out)
	}
}

// ============================================================================
// Stats Tests
// ============================================================================

func TestBadgerStore_StatsCounts(t *testing.T) {
	s := newTestBadgerStore(t, time.Hour)
	ctx := context.Background()

	s.Set(ctx, "k", testPayload{Login: "x"}) //nolint:errcheck

	var out testPayload
	s.Get(ctx, "k", &out)       //nolint:errcheck
	s.Get(ctx, "k", &out)       //nolint:errcheck
	s.Get(ctx, "missing", &out) //nolint:errcheck

	stats := s.Stats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}
