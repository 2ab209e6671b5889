// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub creates and starts a new hub for testing
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)
	return hub
}

// createTestClient creates a mock client for testing
func createTestClient(hub *Hub) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, conn: nil, send: make(chan Message, 256)}
}

// registerClient registers a client and waits for registration to complete
func registerClient(hub *Hub, client *Client) {
	hub.Register <- client
	time.Sleep(20 * time.Millisecond)
}

// createTestStream creates a test stream record
func createTestStream() *models.TwitchStream {
	return &models.TwitchStream{
		ID: "40952121085", UserID: "101051819", UserLogin: "sandgrape", UserName: "Sandgrape",
		GameID: "32982", GameName: "Grand Theft Auto V", Type: "live",
		Title: "day 3", ViewerCount: 1490, StartedAt: time.Now().Add(-2 * time.Hour),
		Language: "en",
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.errMsg)
		}
	}
}

func TestHub_GetClientCount(t *testing.T) {
	hub := NewHub()

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients initially, got %d", hub.GetClientCount())
	}

	for i := 0; i < 5; i++ {
		hub.clients[createTestClient(hub)] = true
	}

	if hub.GetClientCount() != 5 {
		t.Errorf("Expected 5 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastMethodsWithoutClients(t *testing.T) {
	t.Run("BroadcastStreamOnline", func(t *testing.T) {
		hub := setupHub(t)
		hub.BroadcastStreamOnline(createTestStream())
		time.Sleep(10 * time.Millisecond)
	})

	t.Run("BroadcastStreamOffline", func(t *testing.T) {
		hub := setupHub(t)
		hub.BroadcastStreamOffline(createTestStream())
		time.Sleep(10 * time.Millisecond)
	})

	t.Run("BroadcastMonitorSnapshot", func(t *testing.T) {
		hub := setupHub(t)
		hub.BroadcastMonitorSnapshot(map[string]interface{}{"live_channels": []string{"sandgrape"}})
		time.Sleep(10 * time.Millisecond)
	})

	t.Run("BroadcastJSON", func(t *testing.T) {
		hub := setupHub(t)
		hub.BroadcastJSON("test_type", map[string]interface{}{"test_key": "test_value", "count": 42})
		time.Sleep(10 * time.Millisecond)
	})
}

func TestHub_ClientRegistration(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)
	registerClient(hub, client)

	if hub.GetClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.GetClientCount())
	}

	hub.mu.RLock()
	if !hub.clients[client] {
		t.Error("Client should be registered")
	}
	hub.mu.RUnlock()

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients after unregister, got %d", hub.GetClientCount())
	}
}

func TestHub_UnregisterNonExistentClient(t *testing.T) {
	hub := setupHub(t)
	client := createTestClient(hub)

	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	if hub.GetClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetClientCount())
	}
}

func TestHub_BroadcastToClients(t *testing.T) {
	hub := setupHub(t)

	const numClients = 3
	clients := make([]*Client, numClients)
	var mu sync.Mutex
	received := make([]bool, numClients)
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		clients[i] = createTestClient(hub)
		registerClient(hub, clients[i])
	}

	if hub.GetClientCount() != numClients {
		t.Fatalf("Expected %d clients, got %d", numClients, hub.GetClientCount())
	}

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(idx int, c *Client) {
			defer wg.Done()
			select {
			case msg := <-c.send:
				if msg.Type == "test_broadcast" {
					mu.Lock()
					received[idx] = true
					mu.Unlock()
				}
			case <-time.After(500 * time.Millisecond):
			}
		}(i, clients[i])
	}

	time.Sleep(20 * time.Millisecond)
	hub.BroadcastJSON("test_broadcast", map[string]string{"message": "hello"})
	wg.Wait()

	mu.Lock()
	for i, r := range received {
		if !r {
			t.Errorf("Client %d did not receive broadcast", i)
		}
	}
	mu.Unlock()
}

func TestHub_BroadcastWithClients(t *testing.T) {
	tests := []struct {
		name        string
		broadcast   func(*Hub)
		wantType    string
		validateMsg func(*testing.T, Message)
	}{
		{
			name:      "BroadcastStreamOnline",
			broadcast: func(h *Hub) { h.BroadcastStreamOnline(createTestStream()) },
			wantType:  MessageTypeStreamOnline,
			validateMsg: func(t *testing.T, msg Message) {
				stream, ok := msg.Data.(*models.TwitchStream)
				if !ok {
					t.Fatalf("Expected *models.TwitchStream, got %T", msg.Data)
				}
				if stream.UserLogin != "sandgrape" || stream.ViewerCount != 1490 {
					t.Error("Invalid stream payload")
				}
			},
		},
		{
			name:      "BroadcastStreamOffline",
			broadcast: func(h *Hub) { h.BroadcastStreamOffline(createTestStream()) },
			wantType:  MessageTypeStreamOffline,
			validateMsg: func(t *testing.T, msg Message) {
				stream, ok := msg.Data.(*models.TwitchStream)
				if !ok {
					t.Fatalf("Expected *models.TwitchStream, got %T", msg.Data)
				}
				if stream.UserLogin != "sandgrape" {
					t.Error("Invalid stream payload")
				}
			},
		},
		{
			name:      "BroadcastMonitorSnapshot",
			broadcast: func(h *Hub) { h.BroadcastMonitorSnapshot(map[string]int{"live": 2}) },
			wantType:  MessageTypeMonitorSnapshot,
			validateMsg: func(t *testing.T, msg Message) {
				if msg.Data == nil {
					t.Error("Expected non-nil data")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := setupHub(t)
			client := createTestClient(hub)
			registerClient(hub, client)

			tt.broadcast(hub)

			select {
			case msg := <-client.send:
				if msg.Type != tt.wantType {
					t.Errorf("Type = %q, want %q", msg.Type, tt.wantType)
				}
				if msg.Timestamp == "" {
					t.Error("Expected timestamp on message envelope")
				}
				if _, err := time.Parse(time.RFC3339, msg.Timestamp); err != nil {
					t.Errorf("Timestamp %q is not RFC3339: %v", msg.Timestamp, err)
				}
				tt.validateMsg(t, msg)
			case <-time.After(100 * time.Millisecond):
				t.Error("Timeout waiting for message")
			}

			hub.Unregister <- client
		})
	}
}

func TestHub_ChannelFullBehavior(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.Disabled)
	defer zerolog.SetGlobalLevel(oldLevel)

	tests := []struct {
		name      string
		broadcast func(*Hub)
	}{
		{"BroadcastStreamOnline", func(h *Hub) { h.BroadcastStreamOnline(createTestStream()) }},
		{"BroadcastStreamOffline", func(h *Hub) { h.BroadcastStreamOffline(createTestStream()) }},
		{"BroadcastJSON", func(h *Hub) { h.BroadcastJSON("test", map[string]string{"test": "data"}) }},
		{"BroadcastMonitorSnapshot", func(h *Hub) { h.BroadcastMonitorSnapshot(map[string]int{"live": 1}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub() // Don't start Run() so channel fills

			for i := 0; i < 256; i++ {
				tt.broadcast(hub)
			}
			tt.broadcast(hub) // Should hit default case and not block
		})
	}
}

func TestHub_BroadcastToFullClient(t *testing.T) {
	hub := setupHub(t)

	// Client with a tiny buffer that will fill up.
	client := &Client{id: clientIDCounter.Add(1), hub: hub, conn: nil, send: make(chan Message, 1)}
	registerClient(hub, client)

	client.send <- Message{Type: "filler", Data: nil}

	// The broadcast should drop the stalled client instead of blocking.
	hub.BroadcastJSON("test_overflow", map[string]string{"overflow": "test"})

	var clientCount int
	for i := 0; i < 10; i++ {
		time.Sleep(20 * time.Millisecond)
		clientCount = hub.GetClientCount()
		if clientCount == 0 {
			break
		}
	}

	if clientCount != 0 {
		t.Errorf("Expected 0 clients after overflow handling, got %d", clientCount)
	}
}

func TestHub_RunWithContext(t *testing.T) {
	t.Run("shuts down on context cancellation", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- hub.RunWithContext(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("RunWithContext() = %v, want context.Canceled", err)
			}
		case <-time.After(1 * time.Second):
			t.Error("RunWithContext did not return after cancellation")
		}
	})

	t.Run("closes clients on shutdown", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- hub.RunWithContext(ctx)
		}()

		client := createTestClient(hub)
		registerClient(hub, client)

		if hub.GetClientCount() != 1 {
			t.Fatalf("Expected 1 client, got %d", hub.GetClientCount())
		}

		cancel()

		select {
		case <-errCh:
		case <-time.After(1 * time.Second):
			t.Fatal("RunWithContext did not return after cancellation")
		}

		if hub.GetClientCount() != 0 {
			t.Errorf("Expected 0 clients after shutdown, got %d", hub.GetClientCount())
		}

		// The send channel must be closed so a write pump drains out.
		select {
		case _, ok := <-client.send:
			if ok {
				t.Error("Expected closed send channel after shutdown")
			}
		default:
			t.Error("Expected closed send channel, got open empty channel")
		}
	})

	t.Run("delivers broadcasts before shutdown", func(t *testing.T) {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errCh := make(chan error, 1)
		go func() {
			errCh <- hub.RunWithContext(ctx)
		}()

		client := createTestClient(hub)
		registerClient(hub, client)

		hub.BroadcastStreamOnline(createTestStream())

		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeStreamOnline {
				t.Errorf("Type = %q, want %q", msg.Type, MessageTypeStreamOnline)
			}
		case <-time.After(500 * time.Millisecond):
			t.Error("Timeout waiting for broadcast")
		}
	})
}

func TestHub_ConcurrentOperations(t *testing.T) {
	hub := setupHub(t)
	done := make(chan bool)

	go func() {
		for i := 0; i < 10; i++ {
			registerClient(hub, createTestClient(hub))
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 20; i++ {
			hub.BroadcastJSON("test", map[string]int{"i": i})
			time.Sleep(2 * time.Millisecond)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 50; i++ {
			hub.GetClientCount()
			time.Sleep(1 * time.Millisecond)
		}
		done <- true
	}()

	for i := 0; i < 3; i++ {
		<-done
	}
	time.Sleep(100 * time.Millisecond)

	if hub.GetClientCount() != 10 {
		t.Errorf("Expected 10 clients, got %d", hub.GetClientCount())
	}
}

func TestMarshalMessage(t *testing.T) {
	tests := []struct {
		name    string
		message Message
	}{
		{"simple message", Message{Type: "ping", Data: nil}},
		{"string data", Message{Type: "test", Data: "hello world"}},
		{"map data", Message{Type: "monitor.snapshot", Data: map[string]interface{}{"live": 2}}},
		{"struct data", Message{Type: "stream.online", Data: createTestStream()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalMessage(tt.message)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(data) == 0 || data[0] != '{' || data[len(data)-1] != '}' {
				t.Error("Invalid JSON output")
			}
		})
	}
}

func TestHub_MessageTypes(t *testing.T) {
	expected := map[string]string{
		MessageTypeStreamOnline:    "stream.online",
		MessageTypeStreamOffline:   "stream.offline",
		MessageTypeMonitorSnapshot: "monitor.snapshot",
		MessageTypePing:            "ping",
		MessageTypePong:            "pong",
	}

	for got, want := range expected {
		if got != want {
			t.Errorf("Message type = %q, want %q", got, want)
		}
	}
}

func TestGetShutdownReason(t *testing.T) {
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
			t.Errorf("getShutdownReason() = %q, want %q", got, ShutdownReasonContextCanceled)
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()
		if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
			t.Errorf("getShutdownReason() = %q, want %q", got, ShutdownReasonContextDeadline)
		}
	})
}
