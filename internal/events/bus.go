// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Bus backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("event bus is closed")

// Publisher publishes profile events.
type Publisher interface {
	Publish(ctx context.Context, e ProfileEvent) error
}

// Config configures the event bus and router.
type Config struct {
	Backend              string
	NATSURL              string
	Topic                string
	BufferSize           int
	RetryCount           int
	RetryInitialInterval time.Duration
	CloseTimeout         time.Duration

	// NATS connection settings
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns an in-process configuration.
func DefaultConfig() Config {
	return Config{
		Backend:              BackendGoChannel,
		NATSURL:              natsgo.DefaultURL,
		Topic:                DefaultTopic,
		BufferSize:           256,
		RetryCount:           3,
		RetryInitialInterval: 500 * time.Millisecond,
		CloseTimeout:         10 * time.Second,
		MaxReconnects:        -1,
		ReconnectWait:        2 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.Topic == "" {
		c.Topic = d.Topic
	}
	if c.NATSURL == "" {
		c.NATSURL = d.NATSURL
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = d.CloseTimeout
	}
	if c.RetryInitialInterval <= 0 {
		c.RetryInitialInterval = d.RetryInitialInterval
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = d.ReconnectWait
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = d.MaxReconnects
	}
}

// Bus pairs a watermill publisher and subscriber on one topic.
type Bus struct {
	config     Config
	publisher  message.Publisher
	subscriber message.Subscriber
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus for cfg.Backend.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg Config, logger zerolog.Logger) (*Bus, error) {
	cfg.applyDefaults()
	logger = logger.With().Str("component", "events").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	b := &Bus{config: cfg, wmLogger: wmLogger, logger: logger}

	switch cfg.Backend {
	case BackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(cfg.BufferSize),
		}, wmLogger)
		b.publisher = ch
		b.subscriber = ch
	case BackendNATS:
		pub, sub, err := newNATSPubSub(cfg, wmLogger)
		if err != nil {
			return nil, err
		}
		b.publisher = pub
		b.subscriber = sub
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}

	logger.Info().Str("backend", cfg.Backend).Str("topic", cfg.Topic).Msg("event bus ready")
	return b, nil
}

// newNATSPubSub connects to core NATS. Profile events are advisory, so
// JetStream persistence is not used.
func newNATSPubSub(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("marquee"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
	marshaler := &wmNats.NATSMarshaler{}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   marshaler,
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: "marquee",
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      marshaler,
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}
	return pub, sub, nil
}

// Publish sends e on the bus topic.
func (b *Bus) Publish(_ context.Context, e ProfileEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	msg, err := ToMessage(&e)
	if err != nil {
		return err
	}
	if err := b.publisher.Publish(b.config.Topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	metrics.RecordEventPublished(string(e.Type))
	return nil
}

// Subscribe returns the raw message stream of the bus topic.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.subscriber.Subscribe(ctx, b.config.Topic)
}

// Topic returns the bus topic.
func (b *Bus) Topic() string { return b.config.Topic }

// Config returns the bus configuration with defaults applied.
func (b *Bus) Config() Config { return b.config }

// Close closes the publisher and subscriber. It is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	// gochannel uses one value for both sides.
	if any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NopPublisher drops every event. Used when events are disabled.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, ProfileEvent) error { return nil }
