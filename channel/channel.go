// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/dispatch"
	"github.com/stacklok/toolhive-messaging/logging"
	"github.com/stacklok/toolhive-messaging/messaging"
)

const (
	// DefaultMaxIndirectURLLength is the longest redirect URL emitted before
	// falling back to a form post.
	DefaultMaxIndirectURLLength = 2048

	// DefaultMaxBodySize limits request and response bodies read by the channel.
	DefaultMaxBodySize int64 = 1 << 20

	instrumentationName = "github.com/stacklok/toolhive-messaging/channel"

	metricReceived = "messaging_messages_received"
	metricSent     = "messaging_messages_sent"
)

// Outcome labels recorded on the message counters.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeRejected     = "rejected"
	OutcomeUnrecognized = "unrecognized"
	OutcomeError        = "error"
)

// Channel sends and receives protocol messages. It is safe for concurrent use.
type Channel struct {
	registry     *dispatch.Registry
	bindings     *bindings.Stack
	logger       *slog.Logger
	meter        metric.MeterProvider
	maxURLLength int
	maxBodySize  int64
	headerRealm  *string

	received metric.Int64Counter
	sent     metric.Int64Counter
}

// Option configures a Channel.
type Option func(*Channel)

// WithBindings sets the binding stack. Without one, only message types that
// require no protection can be sent or received.
func WithBindings(s *bindings.Stack) Option {
	return func(c *Channel) {
		c.bindings = s
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = l
	}
}

// WithMeterProvider sets the provider of the message counters.
// The default records nothing.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Channel) {
		c.meter = mp
	}
}

// WithMaxIndirectURLLength sets the longest redirect URL EncodeIndirect emits.
func WithMaxIndirectURLLength(n int) Option {
	return func(c *Channel) {
		c.maxURLLength = n
	}
}

// WithMaxBodySize sets the largest body ReadRequest and ReadResponse accept.
func WithMaxBodySize(n int64) Option {
	return func(c *Channel) {
		c.maxBodySize = n
	}
}

// WithAuthorizationHeader makes NewRequest carry the protection fields
// (oauth_nonce, oauth_timestamp, oauth_signature) in an "Authorization: OAuth"
// header with the given realm instead of the form body.
func WithAuthorizationHeader(realm string) Option {
	return func(c *Channel) {
		c.headerRealm = &realm
	}
}

// New creates a Channel dispatching with registry.
func New(registry *dispatch.Registry, opts ...Option) (*Channel, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	c := &Channel{
		registry:     registry,
		logger:       logging.Discard(),
		meter:        noop.NewMeterProvider(),
		maxURLLength: DefaultMaxIndirectURLLength,
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bindings == nil {
		empty, err := bindings.NewStack()
		if err != nil {
			return nil, err
		}
		c.bindings = empty
	}
	if c.maxURLLength <= 0 {
		return nil, fmt.Errorf("max indirect URL length must be positive, got %d", c.maxURLLength)
	}
	if c.maxBodySize <= 0 {
		return nil, fmt.Errorf("max body size must be positive, got %d", c.maxBodySize)
	}

	meter := c.meter.Meter(instrumentationName)
	var err error
	c.received, err = meter.Int64Counter(metricReceived,
		metric.WithDescription("Number of protocol messages received"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", metricReceived, err)
	}
	c.sent, err = meter.Int64Counter(metricSent,
		metric.WithDescription("Number of protocol messages sent"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", metricSent, err)
	}
	return c, nil
}

// Registry returns the registry the channel dispatches with.
func (c *Channel) Registry() *dispatch.Registry {
	return c.registry
}

// Bindings returns the binding stack.
func (c *Channel) Bindings() *bindings.Stack {
	return c.bindings
}

// outcome classifies err for the message counters.
func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, dispatch.ErrUnrecognizedMessage):
		return OutcomeUnrecognized
	case errors.Is(err, bindings.ErrProtectionFailed):
		return OutcomeRejected
	case errors.Is(err, messaging.ErrInvalidMessage):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func (c *Channel) record(ctx context.Context, counter metric.Int64Counter, direction, name string, transport messaging.Transport, err error) {
	if name == "" {
		name = "unknown"
	}
	result := outcome(err)
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", name),
		attribute.String("transport", transport.String()),
		attribute.String("outcome", result),
	))

	attrs := []any{
		slog.String("direction", direction),
		slog.String("message_type", name),
		slog.String("transport", transport.String()),
		slog.String("outcome", result),
	}
	switch result {
	case OutcomeOK:
		c.logger.DebugContext(ctx, "message processed", attrs...)
	case OutcomeError:
		c.logger.ErrorContext(ctx, "message processing failed", append(attrs, slog.Any("error", err))...)
	default:
		c.logger.WarnContext(ctx, "message refused", append(attrs, slog.Any("error", err))...)
	}
}
