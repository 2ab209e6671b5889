// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
)

// Auth modes accepted by AUTH_MODE.
const (
	ModeNone  = "none"
	ModeJWT   = "jwt"
	ModeBasic = "basic"
)

// Login attempts are limited independently of the general API rate limit.
// A small burst with a slow refill keeps credential stuffing impractical
// without locking out a user who typos a password twice.
const (
	loginAttemptBurst      = 5
	loginAttemptWindow     = time.Minute
	limiterCleanupInterval = 5 * time.Minute
)

// staleLimiterAge is how long an IP's limiter survives without activity
// before the cleanup sweep drops it.
const staleLimiterAge = time.Hour

type contextKey string

// ClaimsContextKey is the request context key holding the authenticated
// user's Claims.
const ClaimsContextKey contextKey = "claims"

// Middleware enforces the configured authentication mode on protected
// endpoints and rate limits login attempts per client IP.
type Middleware struct {
	authMode         string
	jwtManager       *JWTManager
	basicAuthManager *BasicAuthManager
	loginLimiter     *RateLimiter
}

// NewMiddleware validates that the managers required by cfg.AuthMode are
// present and starts the login limiter's cleanup goroutine. Call Stop
// during shutdown to terminate it.
func NewMiddleware(cfg *config.SecurityConfig, jwtManager *JWTManager, basicAuthManager *BasicAuthManager) (*Middleware, error) {
	switch cfg.AuthMode {
	case ModeNone:
	case ModeJWT:
		if jwtManager == nil {
			return nil, errors.New("jwt auth mode requires a JWT manager")
		}
	case ModeBasic:
		if basicAuthManager == nil {
			return nil, errors.New("basic auth mode requires a basic auth manager")
		}
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.AuthMode)
	}

	m := &Middleware{
		authMode:         cfg.AuthMode,
		jwtManager:       jwtManager,
		basicAuthManager: basicAuthManager,
	}

	if !cfg.RateLimitDisabled {
		m.loginLimiter = NewRateLimiter(loginAttemptBurst, loginAttemptWindow)
		go m.loginLimiter.startCleanup(limiterCleanupInterval)
	}

	return m, nil
}

// AuthMode returns the configured authentication mode.
func (m *Middleware) AuthMode() string {
	return m.authMode
}

// Stop terminates the login limiter's cleanup goroutine.
func (m *Middleware) Stop() {
	if m.loginLimiter != nil {
		m.loginLimiter.Stop()
	}
}

// Authenticate enforces the configured auth mode. In "none" mode requests
// pass through untouched; otherwise the request must carry valid
// credentials and the resulting Claims are added to the request context.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch m.authMode {
		case ModeNone:
			next(w, r)
		case ModeJWT:
			m.authenticateJWT(w, r, next)
		case ModeBasic:
			m.authenticateBasic(w, r, next)
		default:
			logging.Error().Str("auth_mode", m.authMode).Msg("Unsupported auth mode")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	}
}

func (m *Middleware) authenticateJWT(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	tokenString := extractJWTToken(r)
	if tokenString == "" {
		http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
		return
	}

	claims, err := m.jwtManager.ValidateToken(tokenString)
	if err != nil {
		logging.Debug().Err(err).Str("ip", getClientIP(r)).Msg("JWT validation failed")
		http.Error(w, "Unauthorized: invalid or expired token", http.StatusUnauthorized)
		return
	}

	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	next(w, r.WithContext(ctx))
}

func (m *Middleware) authenticateBasic(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	username, err := m.basicAuthManager.ValidateCredentials(r.Header.Get("Authorization"))
	if err != nil {
		w.Header().Set("WWW-Authenticate", m.basicAuthManager.GetWWWAuthenticateHeader())
		http.Error(w, "Unauthorized: invalid credentials", http.StatusUnauthorized)
		return
	}

	// The single basic auth account is the admin account.
	claims := &Claims{Username: username, Role: "admin"}
	ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
	next(w, r.WithContext(ctx))
}

// extractJWTToken pulls the token from the Authorization header or, for
// browser clients, the "token" cookie.
func extractJWTToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie("token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireRole wraps Authenticate and additionally requires the claims to
// carry the given role. The admin role passes every role check.
func (m *Middleware) RequireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode == ModeNone {
			next(w, r)
			return
		}

		claims := GetClaims(r.Context())
		if claims == nil {
			http.Error(w, "Forbidden: invalid authentication", http.StatusForbidden)
			return
		}
		if claims.Role != role && claims.Role != "admin" {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}
		next(w, r)
	})
}

// LoginRateLimit guards the login endpoint against brute force attempts.
// It must wrap the login handler directly so failed attempts count even
// when credentials are wrong.
func (m *Middleware) LoginRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.loginLimiter == nil {
			next(w, r)
			return
		}

		ip := getClientIP(r)
		if !m.loginLimiter.Allow(ip) {
			metrics.APIRateLimitHits.WithLabelValues("login").Inc()
			logging.Warn().Str("ip", ip).Msg("Login attempt rate limited")
			http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// GetClaims retrieves the Claims from the request context, or nil when the
// request was not authenticated.
func GetClaims(ctx context.Context) *Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// getClientIP returns the client address without the port. The router's
// RealIP middleware has already resolved proxy headers by the time a
// request reaches here.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ============================================================================
// Per-IP Rate Limiter
// ============================================================================

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter tracks one token bucket per client IP. Each bucket allows a
// burst of reqs and then refills one permit per window.
type RateLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*rateLimiterEntry
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
	stopOnce  sync.Once
}

// NewRateLimiter creates a limiter allowing reqs requests per window from
// each IP.
func NewRateLimiter(reqs int, window time.Duration) *RateLimiter {
	if reqs <= 0 {
		reqs = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limiters:  make(map[string]*rateLimiterEntry),
		rate:      rate.Every(window),
		burst:     reqs,
		stopClean: make(chan struct{}),
	}
}

// Allow reports whether a request from the given IP may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	entry, ok := rl.limiters[ip]
	if !ok {
		entry = &rateLimiterEntry{
			limiter: rate.NewLimiter(rl.rate, rl.burst),
		}
		rl.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.Allow()
}

// startCleanup periodically drops limiters for IPs that have gone quiet,
// bounding memory use under churning client populations.
func (rl *RateLimiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopClean:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-staleLimiterAge)

	rl.mu.Lock()
	for ip, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, ip)
		}
	}
	rl.mu.Unlock()
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopClean)
	})
}
