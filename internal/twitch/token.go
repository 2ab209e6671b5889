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
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
	"github.com/streamscope-io/streamscope/internal/models"
)

// tokenExpiryMargin is subtracted from the provider-reported lifetime so a
// token is refreshed before it can expire mid-request.
const tokenExpiryMargin = 300 * time.Second

// credential is an immutable access token snapshot. The manager swaps whole
// values under its lock; callers never see a partially updated credential.
type credential struct {
	accessToken string
	expiresAt   time.Time
}

// valid reports whether the credential can still be used at the given time.
func (c *credential) valid(now time.Time) bool {
	return c != nil && c.accessToken != "" && now.Before(c.expiresAt)
}

// tokenManager owns the app access token lifecycle: lazy acquisition via the
// OAuth2 client-credentials exchange, wall-clock validity checks at the point
// of use, and reactive invalidation after upstream 401s. There is no
// background refresher; the first caller that finds the credential missing or
// expired performs the exchange.
type tokenManager struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	security     *logging.SecurityLogger

	mu   sync.RWMutex
	cred *credential
}

func newTokenManager(clientID, clientSecret, tokenURL string, httpClient *http.Client) *tokenManager {
	return &tokenManager{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   httpClient,
		security:     logging.NewSecurityLogger(),
	}
}

// token returns a valid access token, performing the exchange if the cached
// credential is missing or expired. Safe for concurrent use; concurrent
// refreshes are serialized by the write lock and the second caller reuses the
// first caller's result.
func (tm *tokenManager) token(ctx context.Context) (string, error) {
	tm.mu.RLock()
	cred := tm.cred
	tm.mu.RUnlock()

	if cred.valid(time.Now()) {
		return cred.accessToken, nil
	}

	return tm.refresh(ctx)
}

// refresh performs the client-credentials exchange and installs the new
// credential. Double-checks validity under the write lock so a caller that
// lost the race does not trigger a second exchange.
func (tm *tokenManager) refresh(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.cred.valid(time.Now()) {
		return tm.cred.accessToken, nil
	}

	start := time.Now()
	tokenResp, err := tm.exchange(ctx)
	metrics.RecordTokenRefresh(time.Since(start), err)

	if err != nil {
		tm.security.LogTokenExchange("twitch", false, logging.SanitizeError(err.Error()))
		return "", err
	}

	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryMargin)
	tm.cred = &credential{
		accessToken: tokenResp.AccessToken,
		expiresAt:   expiresAt,
	}

	metrics.TokenExpirySeconds.Set(time.Until(expiresAt).Seconds())
	tm.security.LogTokenExchange("twitch", true, "")
	logging.Debug().
		Time("expires_at", expiresAt).
		Int64("expires_in", tokenResp.ExpiresIn).
		Msg("App access token acquired")

	return tokenResp.AccessToken, nil
}

// exchange performs one POST to the token endpoint. Credentials travel as
// query parameters with an empty body, which is the form the Twitch token
// endpoint documents for the client_credentials grant.
func (tm *tokenManager) exchange(ctx context.Context) (*models.TokenResponse, error) {
	query := url.Values{}
	query.Set("client_id", tm.clientID)
	query.Set("client_secret", tm.clientSecret)
	query.Set("grant_type", "client_credentials")

	reqURL := fmt.Sprintf("%s?%s", tm.tokenURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create token request: %v", ErrAuthentication, err)
	}

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return nil, newAPIError(ErrAuthentication, resp.StatusCode, body)
	}

	var tokenResp models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %v", ErrAuthentication, err)
	}

	if tokenResp.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", ErrAuthentication)
	}

	return &tokenResp, nil
}

// invalidate discards the cached credential so the next call performs a fresh
// exchange. Called after an upstream 401 rejects the current token.
func (tm *tokenManager) invalidate() {
	tm.mu.Lock()
	tm.cred = nil
	tm.mu.Unlock()

	metrics.RecordTokenInvalidated()
	tm.security.LogTokenInvalidated("twitch", "rejected upstream")
}
