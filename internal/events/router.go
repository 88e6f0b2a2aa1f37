// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
)

// Router consumes bus messages with panic recovery, retry with backoff and a
// poison topic for messages that keep failing.
type Router struct {
	router *message.Router
	bus    *Bus
	logger zerolog.Logger
}

// PoisonTopic returns the topic receiving messages that exhausted retries.
func PoisonTopic(topic string) string {
	return topic + ".poison"
}

// NewRouter creates a router reading from bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRouter(bus *Bus, logger zerolog.Logger) (*Router, error) {
	cfg := bus.Config()

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, bus.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outer to inner: recover panics, park poisoned messages, retry.
	wmRouter.AddMiddleware(middleware.Recoverer)

	poison, err := middleware.PoisonQueue(bus.publisher, PoisonTopic(cfg.Topic))
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	wmRouter.AddMiddleware(poison)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryCount,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     10 * cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          bus.wmLogger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{
		router: wmRouter,
		bus:    bus,
		logger: logger.With().Str("component", "event_router").Logger(),
	}, nil
}

// Handle registers a consumer for profile events. Handlers must be
// registered before Serve.
func (r *Router) Handle(name string, h EventHandler) {
	r.router.AddNoPublisherHandler(name, r.bus.Topic(), r.bus.subscriber, func(msg *message.Message) error {
		e, err := FromMessage(msg)
		if err != nil {
			// Undecodable payloads are dropped, retrying cannot fix them.
			r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed profile event")
			return nil
		}
		return h.HandleEvent(msg.Context(), e)
	})
}

// Serve runs the router until ctx is canceled. It satisfies suture.Service.
func (r *Router) Serve(ctx context.Context) error {
	r.logger.Info().Msg("event router starting")
	err := r.router.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("event router stopped: %w", err)
	}
	return ctx.Err()
}

// Running is closed once the router is consuming messages.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}

// String names the service in supervisor logs.
func (r *Router) String() string { return "event-router" }

// EventHandler consumes one profile event. Returning an error triggers retry.
type EventHandler interface {
	HandleEvent(ctx context.Context, e *ProfileEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, e *ProfileEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, e *ProfileEvent) error {
	return f(ctx, e)
}

// WaitRunning blocks until the router is consuming or timeout elapses.
func (r *Router) WaitRunning(timeout time.Duration) bool {
	select {
	case <-r.Running():
		return true
	case <-time.After(timeout):
		return false
	}
}
