// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
	"github.com/streamscope-io/streamscope/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path
	// (e.g. SIGTERM propagated through the supervisor).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was
	// exceeded, which may point at a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types pushed to WebSocket clients.
const (
	MessageTypeStreamOnline    = "stream.online"
	MessageTypeStreamOffline   = "stream.offline"
	MessageTypeMonitorSnapshot = "monitor.snapshot"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
)

// Message is the envelope for every WebSocket frame.
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// newMessage stamps the envelope with the current UTC time.
func newMessage(messageType string, data interface{}) Message {
	return Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Hub maintains the set of active clients and broadcasts stream events to
// them. Register and Unregister are exported so the HTTP upgrade handler
// can hand over accepted connections.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run starts the hub event loop and blocks forever.
//
// Deprecated: Use RunWithContext for supervised operation.
func (h *Hub) Run() {
	for {
		// Lifecycle events are drained before broadcasts so client state
		// is consistent when a message fans out. Go's select picks
		// randomly among ready channels, which would otherwise interleave
		// registration and delivery unpredictably.
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// RunWithContext starts the hub with context support for graceful
// shutdown. When the context is canceled all connected clients are closed
// and the method returns ctx.Err(), letting a supervisor restart the hub
// without leaving orphaned connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Shutdown has the highest priority, then lifecycle events, then
		// broadcasts. See Run for why the checks are ordered.
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.addClient(client)

		case client := <-h.Unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("WebSocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("WebSocket client disconnected")
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is not logged as an error because cancellation
// is expected during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("WebSocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// broadcastToClients fans a message out to every connected client in
// client-ID order. Iterating the map directly would deliver in a
// different order each time, which makes test failures unreproducible.
// Clients whose send buffer is full are dropped rather than allowed to
// stall delivery to everyone else.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("Dropped slow WebSocket client")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

// closeAllClients closes every connected client in ID order. Called
// during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// BroadcastStreamOnline notifies all clients that a watched channel went
// live. The payload is the full stream record.
func (h *Hub) BroadcastStreamOnline(stream *models.TwitchStream) {
	message := newMessage(MessageTypeStreamOnline, stream)

	select {
	case h.broadcast <- message:
		logging.Info().
			Str("user_login", stream.UserLogin).
			Int("viewer_count", stream.ViewerCount).
			Msg("Broadcast stream.online")
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("user_login", stream.UserLogin).Msg("Broadcast channel full, dropping stream.online")
	}
}

// BroadcastStreamOffline notifies all clients that a watched channel
// stopped streaming. The payload is the last stream record seen while the
// channel was live, so clients know which broadcast ended.
func (h *Hub) BroadcastStreamOffline(stream *models.TwitchStream) {
	message := newMessage(MessageTypeStreamOffline, stream)

	select {
	case h.broadcast <- message:
		logging.Info().
			Str("user_login", stream.UserLogin).
			Msg("Broadcast stream.offline")
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("user_login", stream.UserLogin).Msg("Broadcast channel full, dropping stream.offline")
	}
}

// BroadcastMonitorSnapshot pushes the monitor's current live-channel view
// to all clients, typically right after a client connects or a poll
// completes.
func (h *Hub) BroadcastMonitorSnapshot(data interface{}) {
	h.BroadcastJSON(MessageTypeMonitorSnapshot, data)
}

// BroadcastJSON sends an arbitrary message to all connected clients.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	message := newMessage(messageType, data)

	select {
	case h.broadcast <- message:
	default:
		metrics.WSErrors.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("message_type", messageType).Msg("Broadcast channel full, dropping message")
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
