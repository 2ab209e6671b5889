// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/streamscope-io/streamscope/internal/models"
)

// rememberMeTimeout is the token lifetime for remember-me logins. Standard
// sessions use the configured session timeout instead.
const rememberMeTimeout = 30 * 24 * time.Hour

// Login handles user authentication requests
//
// @Summary Authenticate user
// @Description Authenticates with username and password against the configured admin account, returns a JWT in the body and as an HTTP-only cookie. Setting remember_me extends the token lifetime to 30 days.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "Authentication successful"
// @Failure 400 {object} models.APIResponse "Invalid request body"
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 403 {object} models.APIResponse "Authentication disabled"
// @Failure 500 {object} models.APIResponse "Internal server error"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := h.parseAndValidateLoginRequest(w, r)
	if err != nil {
		return
	}

	if !h.validateAuthConfiguration(w) {
		return
	}

	if !h.authenticateCredentials(w, r, req) {
		return
	}

	h.generateAndSendToken(w, r, req)
}

// parseAndValidateLoginRequest parses and validates the login request body
func (h *Handler) parseAndValidateLoginRequest(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, error) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return nil, err
	}

	validationReq := LoginRequestValidation{
		Username:   req.Username,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	}
	if apiErr := validateRequest(&validationReq); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return nil, fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}

	return &req, nil
}

// validateAuthConfiguration checks that JWT authentication is enabled and wired
func (h *Handler) validateAuthConfiguration(w http.ResponseWriter) bool {
	if h.config == nil || h.config.Security.AuthMode != "jwt" {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled", nil)
		return false
	}

	if h.jwtManager == nil || h.basicAuth == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "JWT manager not initialized", nil)
		return false
	}

	return true
}

// authenticateCredentials verifies username and password against the stored
// bcrypt hash. The comparison runs in constant time either way, so a failed
// login leaks nothing about which field was wrong.
func (h *Handler) authenticateCredentials(w http.ResponseWriter, r *http.Request, req *models.LoginRequest) bool {
	if !h.basicAuth.Verify(req.Username, req.Password) {
		h.secLog.LogLoginFailure(req.Username, "local", clientIP(r), r.UserAgent(), "invalid credentials")
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return false
	}
	h.secLog.LogLoginSuccess(req.Username, "local", clientIP(r), r.UserAgent())
	return true
}

// generateAndSendToken signs the session token and sends the response
func (h *Handler) generateAndSendToken(w http.ResponseWriter, r *http.Request, req *models.LoginRequest) {
	role := models.RoleAdmin

	timeout := h.jwtManager.SessionTimeout()
	if req.RememberMe {
		timeout = rememberMeTimeout
	}

	token, err := h.jwtManager.GenerateTokenWithTimeout(req.Username, role, timeout)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	expiresAt := time.Now().Add(timeout)

	h.setAuthCookie(w, r, token, expiresAt)
	h.sendLoginResponse(w, token, expiresAt, req.Username, role)
}

// setAuthCookie sets the authentication cookie
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// sendLoginResponse sends the successful login envelope
func (h *Handler) sendLoginResponse(w http.ResponseWriter, token string, expiresAt time.Time, username, role string) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  username,
			Role:      role,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// clientIP returns the request address without the port. RealIP middleware
// has already substituted proxy headers by the time handlers run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
