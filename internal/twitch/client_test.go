// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streamscope-io/streamscope/internal/config"
)

const usersPayload = `{"data":[{"id":"141981764","login":"twitchdev","display_name":"TwitchDev","type":"","broadcaster_type":"partner","description":"Supporting third-party developers","profile_image_url":"https://example.com/profile.png","offline_image_url":"","view_count":5980557,"created_at":"2016-12-14T20:32:28Z"}]}`

const streamsPayload = `{"data":[{"id":"40952121085","user_id":"101051819","user_login":"sandgrape","user_name":"SandGrape","game_id":"32982","game_name":"Grand Theft Auto V","type":"live","title":"Tuesday ranked grind","viewer_count":1490,"started_at":"2024-03-10T03:18:11Z","language":"en","thumbnail_url":"https://example.com/thumb.jpg","is_mature":false}],"pagination":{"cursor":"eyJiIjpudWxs"}}`

// helixFixture wires a Client against one httptest server that answers both
// the token exchange and the Helix resources. Tokens are numbered token-1,
// token-2, ... so tests can tell refreshed credentials apart.
type helixFixture struct {
	server      *httptest.Server
	client      *Client
	tokenCalls  atomic.Int32
	userCalls   atomic.Int32
	streamCalls atomic.Int32
}

func newFixture(t *testing.T, users, streams http.HandlerFunc) *helixFixture {
	t.Helper()
	f := &helixFixture{}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":3600,"token_type":"bearer"}`, n)
	})
	if users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			f.userCalls.Add(1)
			users(w, r)
		})
	}
	if streams != nil {
		mux.HandleFunc("/streams", func(w http.ResponseWriter, r *http.Request) {
			f.streamCalls.Add(1)
			streams(w, r)
		})
	}

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	httpClient := f.server.Client()
	f.client = &Client{
		clientID:   "test-client-id",
		apiBaseURL: f.server.URL,
		httpClient: httpClient,
		tokens:     newTokenManager("test-client-id", "test-secret", f.server.URL+"/oauth2/token", httpClient),
		rateLimits: &rateLimitTracker{},
	}
	return f
}

// pastReset stamps a Ratelimit-Reset already behind us so retry tests do not
// spend real time waiting out a window.
func pastReset(w http.ResponseWriter) {
	w.Header().Set("Ratelimit-Reset", strconv.FormatInt(time.Now().Add(-2*time.Second).Unix(), 10))
}

func serveUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, usersPayload)
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&config.TwitchConfig{ClientID: "id", ClientSecret: "secret"})

	if c.apiBaseURL != defaultAPIBaseURL {
		t.Errorf("apiBaseURL = %q, want %q", c.apiBaseURL, defaultAPIBaseURL)
	}
	if c.tokens.tokenURL != defaultTokenURL {
		t.Errorf("tokenURL = %q, want %q", c.tokens.tokenURL, defaultTokenURL)
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", c.httpClient.Timeout, defaultTimeout)
	}
}

func TestNewClient_Overrides(t *testing.T) {
	c := NewClient(&config.TwitchConfig{
		ClientID:   "id",
		TokenURL:   "http://localhost:9000/token",
		APIBaseURL: "http://localhost:9000/helix/",
		Timeout:    3 * time.Second,
	})

	if c.apiBaseURL != "http://localhost:9000/helix" {
		t.Errorf("apiBaseURL = %q, want trailing slash trimmed", c.apiBaseURL)
	}
	if c.tokens.tokenURL != "http://localhost:9000/token" {
		t.Errorf("tokenURL = %q", c.tokens.tokenURL)
	}
	if c.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", c.httpClient.Timeout)
	}
}

// ============================================================================
// GetUsers Tests
// ============================================================================

func TestGetUsers_RequiresIdentifier(t *testing.T) {
	f := newFixture(t, serveUsers, nil)

	for _, args := range [][2][]string{
		{nil, nil},
		{{}, {}},
	} {
		_, err := f.client.GetUsers(context.Background(), args[0], args[1])
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	}

	if n := f.tokenCalls.Load(); n != 0 {
		t.Errorf("token exchanges = %d, want 0 (rejection must precede network traffic)", n)
	}
	if n := f.userCalls.Load(); n != 0 {
		t.Errorf("user calls = %d, want 0", n)
	}
}

func TestGetUsers_Success(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q, want Bearer token-1", got)
		}
		if got := r.Header.Get("Client-Id"); got != "test-client-id" {
			t.Errorf("Client-Id = %q", got)
		}

		q := r.URL.Query()
		if got := q["id"]; !reflect.DeepEqual(got, []string{"123", "456"}) {
			t.Errorf("id params = %v", got)
		}
		if got := q["login"]; !reflect.DeepEqual(got, []string{"twitchdev"}) {
			t.Errorf("login params = %v", got)
		}

		serveUsers(w, r)
	}, nil)

	users, err := f.client.GetUsers(context.Background(), []string{"123", "456"}, []string{"twitchdev"})
	if err != nil {
		t.Fatalf("GetUsers error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(users))
	}

	u := users[0]
	if u.ID != "141981764" || u.Login != "twitchdev" || u.DisplayName != "TwitchDev" {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.ViewCount != 5980557 {
		t.Errorf("ViewCount = %d", u.ViewCount)
	}
	if u.CreatedAt.Year() != 2016 {
		t.Errorf("CreatedAt = %v", u.CreatedAt)
	}
}

func TestGetUsers_TokenAcquiredLazilyAndReused(t *testing.T) {
	f := newFixture(t, serveUsers, nil)

	for i := 0; i < 2; i++ {
		if _, err := f.client.GetUsers(context.Background(), []string{"123"}, nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	if n := f.tokenCalls.Load(); n != 1 {
		t.Errorf("token exchanges = %d, want 1", n)
	}
	if n := f.userCalls.Load(); n != 2 {
		t.Errorf("user calls = %d, want 2", n)
	}
}

func TestGetUsers_RetriesOnceOnUnauthorized(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"status":401,"message":"Invalid OAuth token"}`)
			return
		}
		serveUsers(w, r)
	}, nil)

	users, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	if err != nil {
		t.Fatalf("GetUsers error: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}

	if n := f.tokenCalls.Load(); n != 2 {
		t.Errorf("token exchanges = %d, want 2 (401 must force a refresh)", n)
	}
	if n := f.userCalls.Load(); n != 2 {
		t.Errorf("user calls = %d, want 2", n)
	}
}

func TestGetUsers_SecondUnauthorizedIsTerminal(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status":401,"message":"Invalid OAuth token"}`)
	}, nil)

	_, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}

	if n := f.userCalls.Load(); n != 2 {
		t.Errorf("user calls = %d, want 2 (exactly one auth retry)", n)
	}
}

func TestGetUsers_RetriesOn429(t *testing.T) {
	var hits atomic.Int32
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			pastReset(w)
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"status":429,"message":"Too Many Requests"}`)
			return
		}
		serveUsers(w, r)
	}, nil)

	start := time.Now()
	users, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("GetUsers error: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
	if n := f.userCalls.Load(); n != 2 {
		t.Errorf("user calls = %d, want 2", n)
	}
	if elapsed < 900*time.Millisecond {
		t.Errorf("retry returned after %v, expected the fixed pause first", elapsed)
	}
	if elapsed > 5*time.Second {
		t.Errorf("retry took %v", elapsed)
	}
}

func TestGetUsers_RateLimitBudgetExhausted(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		pastReset(w)
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"status":429,"message":"Too Many Requests"}`)
	}, nil)

	_, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected *APIError with status 429 in chain, got %v", err)
	}

	if n := f.userCalls.Load(); n != 3 {
		t.Errorf("user calls = %d, want 3 (initial attempt plus two retries)", n)
	}
}

func TestGetUsers_NotFound(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"status":404,"message":"Not Found"}`)
	}, nil)

	_, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n := f.userCalls.Load(); n != 1 {
		t.Errorf("user calls = %d, want 1 (404 must not retry)", n)
	}
}

func TestGetUsers_ProviderErrors(t *testing.T) {
	statuses := []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusServiceUnavailable}

	for _, status := range statuses {
		t.Run(strconv.Itoa(status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				fmt.Fprintf(w, `{"status":%d,"message":"upstream unhappy"}`, status)
			}, nil)

			_, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
			if !errors.Is(err, ErrProvider) {
				t.Fatalf("status %d: expected ErrProvider, got %v", status, err)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatal("expected *APIError in chain")
			}
			if apiErr.StatusCode != status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, status)
			}
			if apiErr.Message != "upstream unhappy" {
				t.Errorf("Message = %q", apiErr.Message)
			}
			if n := f.userCalls.Load(); n != 1 {
				t.Errorf("user calls = %d, want 1 (provider errors must not retry)", n)
			}
		})
	}
}

func TestGetUsers_TransportError(t *testing.T) {
	tokenServer, _ := newTokenServer(t, "tok", 3600)

	httpClient := &http.Client{Timeout: 2 * time.Second}
	c := &Client{
		clientID:   "id",
		apiBaseURL: "http://127.0.0.1:1", // nothing listens here
		httpClient: httpClient,
		tokens:     newTokenManager("id", "secret", tokenServer.URL, httpClient),
		rateLimits: &rateLimitTracker{},
	}

	_, err := c.GetUsers(context.Background(), []string{"123"}, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestGetUsers_MalformedEnvelope(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}, nil)

	_, err := f.client.GetUsers(context.Background(), []string{"123"}, nil)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport for undecodable body, got %v", err)
	}
}

func TestGetUsers_ContextCanceledDuringRetryPause(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		pastReset(w)
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.client.GetUsers(ctx, []string{"123"}, nil)

	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call held for %v after context expiry", elapsed)
	}
}

// ============================================================================
// Rate Limit Header Tracking Tests
// ============================================================================

func TestRateLimitHeaderTrackedOnSuccess(t *testing.T) {
	future := time.Now().Add(45 * time.Second)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Ratelimit-Reset", strconv.FormatInt(future.Unix(), 10))
		w.Header().Set("Ratelimit-Remaining", "799")
		serveUsers(w, r)
	}, nil)

	if _, err := f.client.GetUsers(context.Background(), []string{"123"}, nil); err != nil {
		t.Fatalf("GetUsers error: %v", err)
	}

	if got := f.client.rateLimits.deadline(); got.Unix() != future.Unix() {
		t.Errorf("tracked deadline = %v, want %v (headers observed on success too)", got, future)
	}
}

// ============================================================================
// GetStreams Tests
// ============================================================================

func TestGetStreams_Success(t *testing.T) {
	f := newFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q["user_id"]; !reflect.DeepEqual(got, []string{"101051819"}) {
			t.Errorf("user_id params = %v", got)
		}
		if got := q["user_login"]; !reflect.DeepEqual(got, []string{"sandgrape"}) {
			t.Errorf("user_login params = %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, streamsPayload)
	})

	streams, err := f.client.GetStreams(context.Background(), []string{"101051819"}, []string{"sandgrape"})
	if err != nil {
		t.Fatalf("GetStreams error: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("len(streams) = %d, want 1", len(streams))
	}

	s := streams[0]
	if s.UserLogin != "sandgrape" || s.Type != "live" {
		t.Errorf("unexpected stream: %+v", s)
	}
	if s.ViewerCount != 1490 {
		t.Errorf("ViewerCount = %d", s.ViewerCount)
	}
	if s.GameName != "Grand Theft Auto V" {
		t.Errorf("GameName = %q", s.GameName)
	}
}

func TestGetStreams_NoFiltersIsValid(t *testing.T) {
	f := newFixture(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("RawQuery = %q, want empty", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"data":[],"pagination":{}}`)
	})

	streams, err := f.client.GetStreams(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("GetStreams error: %v", err)
	}
	if len(streams) != 0 {
		t.Errorf("len(streams) = %d, want 0", len(streams))
	}
	if n := f.streamCalls.Load(); n != 1 {
		t.Errorf("stream calls = %d, want 1 (unfiltered query is legal)", n)
	}
}

// ============================================================================
// Ping and Close Tests
// ============================================================================

func TestPing_AcquiresAndReusesToken(t *testing.T) {
	f := newFixture(t, nil, nil)

	if err := f.client.Ping(context.Background()); err != nil {
		t.Fatalf("first Ping: %v", err)
	}
	if err := f.client.Ping(context.Background()); err != nil {
		t.Fatalf("second Ping: %v", err)
	}

	if n := f.tokenCalls.Load(); n != 1 {
		t.Errorf("token exchanges = %d, want 1", n)
	}
}

func TestPing_SurfacesAuthenticationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	httpClient := server.Client()
	c := &Client{
		clientID:   "id",
		apiBaseURL: server.URL,
		httpClient: httpClient,
		tokens:     newTokenManager("id", "secret", server.URL, httpClient),
		rateLimits: &rateLimitTracker{},
	}

	if err := c.Ping(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	f := newFixture(t, nil, nil)

	if err := f.client.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := f.client.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
