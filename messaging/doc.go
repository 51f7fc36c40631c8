// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package messaging defines the contract every OAuth/OpenID protocol message must
satisfy, independent of any particular message shape.

A message exposes four classification facets and one local validity check:

  - ProtocolVersion: the protocol revision the message was built against.
  - RequiredProtection: the set of protections (tamper, replay, expiration) the
    message type demands from the channel that carries it.
  - Transport: whether the message travels directly (back channel) or
    indirectly (through a user agent redirect).
  - ExtraData: fields the message type does not recognize, preserved verbatim.
  - EnsureValidMessage: a self-contained check of the message's own fields.

# Defining a Message Type

Concrete types embed Base and tag their wire fields with the `oauth` struct tag:

	type PingRequest struct {
		messaging.Base
		ClientID string `oauth:"client_id"`
		Note     string `oauth:"note,omitempty"`
	}

	func (*PingRequest) ProtocolVersion() messaging.Version        { return messaging.V2 }
	func (*PingRequest) RequiredProtection() messaging.Protections { return messaging.NoProtection }
	func (*PingRequest) Transport() messaging.Transport            { return messaging.Direct }

	func (r *PingRequest) EnsureValidMessage() error {
		if r.ClientID == "" {
			return messaging.MissingField("ping_request", "client_id")
		}
		return nil
	}

# Decoding and Encoding

Decode maps wire fields onto a fresh message, keeps every unrecognized field in
ExtraData, marks the message as incoming and validates it:

	msg := &PingRequest{}
	if err := messaging.Decode(map[string]string{"client_id": "c1", "x_custom": "42"}, msg); err != nil {
		var verr *messaging.ValidationError
		if errors.As(err, &verr) {
			// reject with invalid_request
		}
	}
	v, _ := msg.ExtraData().Get("x_custom") // "42"

Fields performs the reverse mapping and includes the extension data, so a
decode/encode round trip never loses unrecognized fields.

# Protection Requirements

Protections is a set. Union is commutative and idempotent:

	p := messaging.NewProtections(messaging.ReplayProtection, messaging.TamperProtection)
	p.Has(messaging.TamperProtection) // true
	p == messaging.NewProtections(messaging.TamperProtection, messaging.ReplayProtection, messaging.TamperProtection) // true

This package only declares requirements. Enforcing them (signatures, clocks,
nonce stores) is the job of the bindings package.

# Concurrency

Accessors returning type-level data are safe for concurrent use. A message
instance is owned by a single exchange and must not be mutated concurrently.
*/
package messaging
