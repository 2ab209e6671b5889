// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package api

import (
	"github.com/streamscope-io/streamscope/internal/auth"
	"github.com/streamscope-io/streamscope/internal/config"
)

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter wires the handler set to the auth middleware and builds the
// Chi middleware factories from the security configuration.
func NewRouter(handler *Handler, middleware *auth.Middleware, securityCfg *config.SecurityConfig) *Router {
	return &Router{
		handler:       handler,
		middleware:    middleware,
		chiMiddleware: NewChiMiddlewareFromConfig(securityCfg),
	}
}
