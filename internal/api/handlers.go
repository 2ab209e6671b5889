// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/streamscope-io/streamscope/internal/auth"
	"github.com/streamscope-io/streamscope/internal/cache"
	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/monitor"
	"github.com/streamscope-io/streamscope/internal/twitch"
	ws "github.com/streamscope-io/streamscope/internal/websocket"
)

// appVersion is reported by the health endpoint and the Swagger spec.
const appVersion = "1.0.0"

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, root route, WebSocket upgrade
//   - handlers_helpers.go: response envelope and error mapping helpers
//   - handlers_analytics.go: analytics proxy endpoints
//   - handlers_health.go: health and probe endpoints
//   - handlers_auth.go: JWT login endpoint
type Handler struct {
	client     twitch.ClientInterface
	config     *config.Config
	jwtManager *auth.JWTManager
	basicAuth  *auth.BasicAuthManager
	store      cache.Store
	monitor    *monitor.Monitor
	wsHub      *ws.Hub
	secLog     *logging.SecurityLogger
	startTime  time.Time
}

// NewHandler creates an API handler.
//
// jwtManager and basicAuth may be nil when the corresponding auth mode is
// not configured; store is nil when the response cache is disabled; monitor
// is nil when the live-stream monitor is disabled. Handlers degrade
// gracefully around absent dependencies.
func NewHandler(client twitch.ClientInterface, cfg *config.Config, jwtManager *auth.JWTManager, basicAuth *auth.BasicAuthManager, store cache.Store, mon *monitor.Monitor, wsHub *ws.Hub) *Handler {
	return &Handler{
		client:     client,
		config:     cfg,
		jwtManager: jwtManager,
		basicAuth:  basicAuth,
		store:      store,
		monitor:    mon,
		wsHub:      wsHub,
		secLog:     logging.NewSecurityLogger(),
		startTime:  time.Now(),
	}
}

// Welcome handles the API root route
//
// @Summary API welcome message
// @Description Returns a welcome message pointing at the Swagger documentation
// @Tags Core
// @Produce json
// @Success 200 {object} map[string]string "Welcome message"
// @Router / [get]
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	// The one endpoint outside the APIResponse envelope: the original root
	// route returns this flat object and clients probe it for liveness.
	respondRaw(w, http.StatusOK, map[string]string{
		"message": "Welcome to the StreamScope API. Visit /swagger/index.html for API documentation.",
	})
}

// getUpgrader returns a WebSocket upgrader with origin validation.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Legitimate browser WebSockets always include Origin; allowing empty
	// Origin would bypass CORS entirely.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// Fail open without config (tests, development).
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades the connection and registers it with the hub
//
// @Summary Real-time stream event feed
// @Description Upgrades to a WebSocket connection receiving stream.online, stream.offline, and monitor.snapshot events for the watched channels
// @Tags Realtime
// @Success 101 "Switching Protocols"
// @Failure 503 {object} models.APIResponse "Event feed not available"
// @Router /ws [get]
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, "WEBSOCKET_UNAVAILABLE", "Event feed is not available", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()

	logging.Debug().
		Uint64("client_id", client.ID()).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket client connected")
}

// requireMethod validates the HTTP method and reports whether the request
// may proceed. Chi already routes by method; this guards direct handler use.
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return false
	}
	return true
}
