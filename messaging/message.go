// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"net/url"
	"reflect"
	"strings"
)

// Message is the contract shared by every protocol message.
//
// ProtocolVersion, RequiredProtection and Transport return type-level
// constants and must not depend on instance data.
type Message interface {
	// ProtocolVersion returns the protocol revision the message was prepared under.
	ProtocolVersion() Version

	// RequiredProtection returns the protections the message type demands.
	RequiredProtection() Protections

	// Transport returns whether the message type travels directly or indirectly.
	Transport() Transport

	// ExtraData returns the fields not recognized by the message type. It never returns nil.
	ExtraData() *ExtraData

	// Incoming reports whether the message was produced by deserializing wire data.
	Incoming() bool

	// EnsureValidMessage checks the message's own fields for conformance.
	// It must not consult clocks, keys, nonce stores or any other external state,
	// and it must be safe to call repeatedly.
	EnsureValidMessage() error
}

// Named is implemented by message types that report a stable name for logs,
// errors and dispatch.
type Named interface {
	MessageName() string
}

// DirectedMessage is a message addressed to a specific endpoint.
type DirectedMessage interface {
	Message
	Recipient() *url.URL
}

// incomingMarker is satisfied only by types embedding Base.
type incomingMarker interface {
	markIncoming() error
}

// Base carries the per-instance state every message needs: extension data and
// the incoming flag. Embed it in concrete message types.
type Base struct {
	extra    ExtraData
	incoming bool
}

// ExtraData returns the extension fields. The result is never nil.
func (b *Base) ExtraData() *ExtraData {
	return &b.extra
}

// Incoming reports whether the message was produced by Decode.
func (b *Base) Incoming() bool {
	return b.incoming
}

// markIncoming flips the incoming flag. Only Decode calls it, exactly once.
func (b *Base) markIncoming() error {
	if b.incoming {
		return ErrAlreadyIncoming
	}
	b.incoming = true
	return nil
}

// Directed holds the recipient of an addressed message. Embed it next to Base.
type Directed struct {
	recipient *url.URL
}

// Recipient returns the endpoint the message is addressed to, or nil.
func (d *Directed) Recipient() *url.URL {
	return d.recipient
}

// SetRecipient sets the endpoint the message is addressed to.
func (d *Directed) SetRecipient(u *url.URL) {
	d.recipient = u
}

// NameOf returns the message name reported by Named, or a name derived from
// the Go type (TokenRequest becomes token_request).
func NameOf(m Message) string {
	if n, ok := m.(Named); ok {
		return n.MessageName()
	}
	t := reflect.TypeOf(m)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return snakeCase(t.Name())
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
