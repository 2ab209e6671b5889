// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/models"
)

const (
	defaultTokenURL   = "https://id.twitch.tv/oauth2/token"
	defaultAPIBaseURL = "https://api.twitch.tv/helix"
	defaultTimeout    = 10 * time.Second
)

// ClientInterface is the Helix surface consumed by the API handlers and the
// stream monitor. CircuitBreakerClient wraps any implementation with failure
// isolation, and tests substitute fakes.
type ClientInterface interface {
	GetUsers(ctx context.Context, ids, logins []string) ([]models.TwitchUser, error)
	GetStreams(ctx context.Context, userIDs, userLogins []string) ([]models.TwitchStream, error)
	Ping(ctx context.Context) error
	Close() error
}

// Client talks to the Twitch Helix API using an app access token. All
// requests on one client share the token cache and the rate-limit tracker,
// which matches how Twitch accounts limits: per token, not per call site.
type Client struct {
	clientID   string
	apiBaseURL string
	httpClient *http.Client
	tokens     *tokenManager
	rateLimits *rateLimitTracker
}

var _ ClientInterface = (*Client)(nil)

// NewClient builds a Helix client from configuration. Empty URL and timeout
// fields fall back to production defaults, so a TwitchConfig carrying only
// credentials is usable directly. No network traffic happens here; the first
// request triggers the token exchange.
func NewClient(cfg *config.TwitchConfig) *Client {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	apiBaseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}

	return &Client{
		clientID:   cfg.ClientID,
		apiBaseURL: apiBaseURL,
		httpClient: httpClient,
		tokens:     newTokenManager(cfg.ClientID, cfg.ClientSecret, tokenURL, httpClient),
		rateLimits: &rateLimitTracker{},
	}
}

// GetUsers fetches user records by id and/or login. At least one identifier
// must be supplied: an unfiltered /users call resolves the bearer token's own
// identity, which an app access token does not have.
func (c *Client) GetUsers(ctx context.Context, ids, logins []string) ([]models.TwitchUser, error) {
	if len(ids) == 0 && len(logins) == 0 {
		return nil, fmt.Errorf("%w: at least one user id or login is required", ErrInvalidArgument)
	}

	query := url.Values{}
	for _, id := range ids {
		query.Add("id", id)
	}
	for _, login := range logins {
		query.Add("login", login)
	}

	var envelope models.UsersEnvelope
	if err := c.doRequest(ctx, "users", query, &envelope); err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}

	return envelope.Data, nil
}

// GetStreams fetches live streams filtered by user id and/or login. An
// unfiltered call is valid Helix usage (top streams by viewers), so no
// pre-flight check applies.
func (c *Client) GetStreams(ctx context.Context, userIDs, userLogins []string) ([]models.TwitchStream, error) {
	query := url.Values{}
	for _, id := range userIDs {
		query.Add("user_id", id)
	}
	for _, login := range userLogins {
		query.Add("user_login", login)
	}

	var envelope models.StreamsEnvelope
	if err := c.doRequest(ctx, "streams", query, &envelope); err != nil {
		return nil, fmt.Errorf("get streams: %w", err)
	}

	return envelope.Data, nil
}

// Ping verifies upstream credentials by ensuring a valid app token exists,
// exchanging one if needed. The readiness probe calls this.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.tokens.token(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle connections. The client stays usable afterwards, so
// calling Close more than once is harmless.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
