// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/nonce"
)

// ReplayElement provides ReplayProtection with single-use nonces.
type ReplayElement struct {
	store    nonce.Store
	clock    clock.PassiveClock
	generate func() string
}

// ReplayOption configures a ReplayElement.
type ReplayOption func(*ReplayElement)

// WithReplayClock sets the clock used to date nonce records when the
// message's timestamp is not checked by an Expiration requirement.
func WithReplayClock(c clock.PassiveClock) ReplayOption {
	return func(e *ReplayElement) {
		e.clock = c
	}
}

// WithNonceGenerator replaces the random nonce source.
func WithNonceGenerator(gen func() string) ReplayOption {
	return func(e *ReplayElement) {
		e.generate = gen
	}
}

// NewReplayElement creates a ReplayElement recording nonces in store.
func NewReplayElement(store nonce.Store, opts ...ReplayOption) *ReplayElement {
	e := &ReplayElement{
		store:    store,
		clock:    clock.RealClock{},
		generate: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Protection implements Element.
func (*ReplayElement) Protection() messaging.Protections {
	return messaging.ReplayProtection
}

// Prepare stamps a fresh nonce, replacing any previous one.
func (e *ReplayElement) Prepare(_ context.Context, msg messaging.Message) error {
	rp, ok := msg.(ReplayProtected)
	if !ok {
		return unsupported(messaging.ReplayProtection, msg, "bindings.ReplayProtected")
	}
	rp.SetNonce(e.generate())
	return nil
}

// Verify records the nonce and rejects it if it was seen before.
// Store failures are returned as plain errors, not as replays.
func (e *ReplayElement) Verify(ctx context.Context, msg messaging.Message) error {
	rp, ok := msg.(ReplayProtected)
	if !ok {
		return unsupported(messaging.ReplayProtection, msg, "bindings.ReplayProtected")
	}
	n := rp.Nonce()
	if n == "" {
		return newProtectionError(messaging.ReplayProtection, CodeNonceMissing, msg, nil)
	}

	// Only a timestamp bounded by Expiration may date the record.
	ts := e.clock.Now()
	if exp, ok := msg.(Expiring); ok && msg.RequiredProtection().Has(messaging.Expiration) && !exp.Timestamp().IsZero() {
		ts = exp.Timestamp()
	}

	fresh, err := e.store.StoreNonce(ctx, nonceScope(msg), n, ts)
	if err != nil {
		return fmt.Errorf("failed to record nonce: %w", err)
	}
	if !fresh {
		return newProtectionError(messaging.ReplayProtection, CodeReplayDetected, msg, nil)
	}
	return nil
}

func nonceScope(msg messaging.Message) string {
	if s, ok := msg.(NonceScoped); ok {
		return messaging.NameOf(msg) + "/" + s.NonceScope()
	}
	return messaging.NameOf(msg)
}

var _ Element = (*ReplayElement)(nil)
