// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// Element enforces one protection flag.
type Element interface {
	// Protection returns the single flag this element provides.
	Protection() messaging.Protections
	// Prepare applies the protection to an outgoing message.
	Prepare(ctx context.Context, msg messaging.Message) error
	// Verify checks the protection on an incoming message.
	Verify(ctx context.Context, msg messaging.Message) error
}

// Outgoing messages are timestamped and given a nonce before they are signed,
// so the signature covers both. Incoming messages are authenticated first and
// a nonce is only recorded for a message that is authentic and fresh.
var (
	outgoingOrder = []messaging.Protections{messaging.Expiration, messaging.ReplayProtection, messaging.TamperProtection}
	incomingOrder = []messaging.Protections{messaging.TamperProtection, messaging.Expiration, messaging.ReplayProtection}
)

// Stack applies the elements a message requires.
type Stack struct {
	elements map[messaging.Protections]Element
}

// NewStack creates a Stack. Each element must provide a single distinct flag.
func NewStack(elements ...Element) (*Stack, error) {
	s := &Stack{elements: make(map[messaging.Protections]Element, len(elements))}
	for _, el := range elements {
		if el == nil {
			return nil, errors.New("binding element must not be nil")
		}
		p := el.Protection()
		if len(p.Flags()) != 1 || !p.Valid() {
			return nil, fmt.Errorf("binding element %T must provide exactly one protection, got %s", el, p)
		}
		if prev, dup := s.elements[p]; dup {
			return nil, fmt.Errorf("duplicate binding element for %s: %T and %T", p, prev, el)
		}
		s.elements[p] = el
	}
	return s, nil
}

// Protections returns the union of flags the stack can provide.
func (s *Stack) Protections() messaging.Protections {
	var p messaging.Protections
	for flag := range s.elements {
		p = p.Union(flag)
	}
	return p
}

// Supports reports whether every flag in required has an element.
func (s *Stack) Supports(required messaging.Protections) bool {
	return s.Protections().Has(required)
}

// Prepare applies every required protection to an outgoing message.
func (s *Stack) Prepare(ctx context.Context, msg messaging.Message) error {
	return s.apply(ctx, msg, outgoingOrder, Element.Prepare)
}

// Verify checks every required protection of an incoming message.
// Flags the message type does not require are not checked.
func (s *Stack) Verify(ctx context.Context, msg messaging.Message) error {
	return s.apply(ctx, msg, incomingOrder, Element.Verify)
}

func (s *Stack) apply(
	ctx context.Context,
	msg messaging.Message,
	order []messaging.Protections,
	step func(Element, context.Context, messaging.Message) error,
) error {
	required := msg.RequiredProtection()
	if !required.Valid() {
		return fmt.Errorf("message type %s declares unknown protections %s", messaging.NameOf(msg), required)
	}
	for _, flag := range order {
		if !required.Has(flag) {
			continue
		}
		el, ok := s.elements[flag]
		if !ok {
			return newProtectionError(flag, CodeBindingUnavailable, msg,
				fmt.Errorf("no binding element configured for %s", flag))
		}
		if err := step(el, ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
