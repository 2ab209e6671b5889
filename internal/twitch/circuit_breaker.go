// StreamScope - Twitch Analytics Proxy and Live Stream Monitoring
// Copyright 2026 StreamScope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamscope-io/streamscope

package twitch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/streamscope-io/streamscope/internal/config"
	"github.com/streamscope-io/streamscope/internal/logging"
	"github.com/streamscope-io/streamscope/internal/metrics"
	"github.com/streamscope-io/streamscope/internal/models"
)

// breakerName labels metrics and log lines for the upstream breaker.
const breakerName = "twitch-api"

// CircuitBreakerClient wraps a Helix client with a circuit breaker so a
// failing upstream sheds load fast instead of tying up handlers in retry
// loops. The circuit opens when at least 60% of a 10+ request window fails,
// rejects calls for two minutes, then probes with up to three half-open
// requests.
//
// Caller mistakes do not count against the circuit: ErrInvalidArgument and
// ErrNotFound describe the request, not upstream health.
type CircuitBreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[interface{}]
}

var _ ClientInterface = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient builds a breaker-wrapped Helix client from
// configuration.
func NewCircuitBreakerClient(cfg *config.TwitchConfig) *CircuitBreakerClient {
	return newBreakerFor(NewClient(cfg))
}

// newBreakerFor wraps an existing client. Split from the constructor so tests
// can wrap fakes.
func newBreakerFor(client ClientInterface) *CircuitBreakerClient {
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := counts.Requests >= 10 && failureRate >= 0.6
			if shouldTrip {
				logging.Warn().
					Str("circuit_breaker", breakerName).
					Uint32("requests", counts.Requests).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRate).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("circuit_breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// execute runs fn through the breaker and records the outcome. Rejections
// while the circuit is open map to ErrCircuitOpen so callers never need to
// know which breaker library sits underneath.
func (c *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := c.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return result, nil
}

func (c *CircuitBreakerClient) GetUsers(ctx context.Context, ids, logins []string) ([]models.TwitchUser, error) {
	return castResult[[]models.TwitchUser](c.execute(func() (interface{}, error) {
		return c.client.GetUsers(ctx, ids, logins)
	}))
}

func (c *CircuitBreakerClient) GetStreams(ctx context.Context, userIDs, userLogins []string) ([]models.TwitchStream, error) {
	return castResult[[]models.TwitchStream](c.execute(func() (interface{}, error) {
		return c.client.GetStreams(ctx, userIDs, userLogins)
	}))
}

func (c *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx)
	})
	return err
}

// Close shuts down the wrapped client directly; releasing connections should
// work even while the circuit is open.
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}

// castResult narrows the breaker's interface{} result back to the concrete
// type. A type mismatch would be a programming error, surfaced rather than
// panicking.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker returned unexpected type %T", result)
	}
	return typed, nil
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
