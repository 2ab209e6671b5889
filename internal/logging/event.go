// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// EventLogger provides specialized logging for the stream-event pipeline.
// The live-stream monitor and the WebSocket hub use it to report poll
// cycles, state transitions, and broadcast activity with consistent fields.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates a logger configured for event processing.
func NewEventLogger() *EventLogger {
	return &EventLogger{
		logger: With().Str("component", "events").Logger(),
	}
}

// NewEventLoggerWithLogger creates an EventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// WithFields returns a new EventLogger with additional default fields.
func (e *EventLogger) WithFields(fields map[string]interface{}) *EventLogger {
	ctx := e.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &EventLogger{logger: ctx.Logger()}
}

// Debug logs a debug message.
func (e *EventLogger) Debug(msg string, fields ...interface{}) {
	event := e.logger.Debug()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Info logs an info message.
func (e *EventLogger) Info(msg string, fields ...interface{}) {
	event := e.logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Warn logs a warning message.
func (e *EventLogger) Warn(msg string, fields ...interface{}) {
	event := e.logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Error logs an error message.
func (e *EventLogger) Error(msg string, fields ...interface{}) {
	event := e.logger.Error()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// InfoContext logs an info message with context fields.
func (e *EventLogger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// WarnContext logs a warning message with context fields.
func (e *EventLogger) WarnContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// loggerWithContext returns a logger with context fields added.
func (e *EventLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()

	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}

	return logCtx.Logger()
}

// ============================================================
// Domain-Specific Event Logging Methods
// ============================================================

// LogPollCompleted logs a completed monitor poll cycle.
func (e *EventLogger) LogPollCompleted(ctx context.Context, channels, live int, durationMs int64) {
	e.InfoContext(ctx, "poll cycle completed",
		"channels", channels,
		"live", live,
		"duration_ms", durationMs,
	)
}

// LogPollFailed logs a failed monitor poll cycle.
func (e *EventLogger) LogPollFailed(ctx context.Context, err error) {
	logger := e.loggerWithContext(ctx)
	logger.Error().
		Err(err).
		Msg("poll cycle failed")
}

// LogStreamOnline logs a watched channel going live.
func (e *EventLogger) LogStreamOnline(ctx context.Context, userLogin string, viewerCount int) {
	e.InfoContext(ctx, "stream online",
		"user_login", userLogin,
		"viewer_count", viewerCount,
	)
}

// LogStreamOffline logs a watched channel going offline.
func (e *EventLogger) LogStreamOffline(ctx context.Context, userLogin string) {
	e.InfoContext(ctx, "stream offline",
		"user_login", userLogin,
	)
}

// LogBroadcast logs a hub broadcast to connected subscribers.
func (e *EventLogger) LogBroadcast(eventType string, subscribers int) {
	e.Debug("event broadcast",
		"event_type", eventType,
		"subscribers", subscribers,
	)
}

// LogSubscriberJoined logs a new WebSocket subscriber.
func (e *EventLogger) LogSubscriberJoined(remoteAddr string, total int) {
	e.Debug("subscriber joined",
		"remote_addr", remoteAddr,
		"total", total,
	)
}

// LogSubscriberLeft logs a departed WebSocket subscriber.
func (e *EventLogger) LogSubscriberLeft(remoteAddr string, total int) {
	e.Debug("subscriber left",
		"remote_addr", remoteAddr,
		"total", total,
	)
}
