// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// Default freshness limits.
const (
	DefaultMaxAge       = 13 * time.Minute
	DefaultMaxClockSkew = 10 * time.Minute
)

// ExpirationElement provides Expiration by stamping and checking a creation time.
type ExpirationElement struct {
	clock        clock.PassiveClock
	maxAge       time.Duration
	maxClockSkew time.Duration
}

// ExpirationOption configures an ExpirationElement.
type ExpirationOption func(*ExpirationElement)

// WithMaxAge sets how old an incoming message may be.
func WithMaxAge(d time.Duration) ExpirationOption {
	return func(e *ExpirationElement) {
		e.maxAge = d
	}
}

// WithMaxClockSkew sets how far in the future an incoming timestamp may be.
func WithMaxClockSkew(d time.Duration) ExpirationOption {
	return func(e *ExpirationElement) {
		e.maxClockSkew = d
	}
}

// WithExpirationClock sets the clock used to stamp and check timestamps.
func WithExpirationClock(c clock.PassiveClock) ExpirationOption {
	return func(e *ExpirationElement) {
		e.clock = c
	}
}

// NewExpirationElement creates an ExpirationElement.
func NewExpirationElement(opts ...ExpirationOption) *ExpirationElement {
	e := &ExpirationElement{
		clock:        clock.RealClock{},
		maxAge:       DefaultMaxAge,
		maxClockSkew: DefaultMaxClockSkew,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxAge returns the configured maximum message age.
func (e *ExpirationElement) MaxAge() time.Duration { return e.maxAge }

// Protection implements Element.
func (*ExpirationElement) Protection() messaging.Protections {
	return messaging.Expiration
}

// Prepare stamps the current time.
func (e *ExpirationElement) Prepare(_ context.Context, msg messaging.Message) error {
	exp, ok := msg.(Expiring)
	if !ok {
		return unsupported(messaging.Expiration, msg, "bindings.Expiring")
	}
	exp.SetTimestamp(e.clock.Now())
	return nil
}

// Verify rejects messages without a timestamp, older than the maximum age, or
// dated further in the future than the allowed clock skew.
func (e *ExpirationElement) Verify(_ context.Context, msg messaging.Message) error {
	exp, ok := msg.(Expiring)
	if !ok {
		return unsupported(messaging.Expiration, msg, "bindings.Expiring")
	}
	ts := exp.Timestamp()
	if ts.IsZero() {
		return newProtectionError(messaging.Expiration, CodeTimestampMissing, msg, nil)
	}

	now := e.clock.Now()
	if age := now.Sub(ts); age > e.maxAge {
		return newProtectionError(messaging.Expiration, CodeMessageExpired, msg,
			fmt.Errorf("message is %s old, limit %s", age.Round(time.Second), e.maxAge))
	}
	if ahead := ts.Sub(now); ahead > e.maxClockSkew {
		return newProtectionError(messaging.Expiration, CodeTimestampInFuture, msg,
			fmt.Errorf("timestamp is %s ahead, limit %s", ahead.Round(time.Second), e.maxClockSkew))
	}
	return nil
}

var _ Element = (*ExpirationElement)(nil)
