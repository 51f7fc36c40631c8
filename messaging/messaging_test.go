// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

// callbackMessage is a test type requiring tamper protection and expiration
// that travels indirectly.
type callbackMessage struct {
	Base
	Directed

	Code      string `oauth:"code,omitempty"`
	State     string `oauth:"state,omitempty"`
	Timestamp int64  `oauth:"ts,omitempty"`
	Retry     bool   `oauth:"retry,omitempty"`
}

func (*callbackMessage) ProtocolVersion() Version        { return V2 }
func (*callbackMessage) RequiredProtection() Protections { return NewProtections(TamperProtection, Expiration) }
func (*callbackMessage) Transport() Transport            { return Indirect }

func (m *callbackMessage) EnsureValidMessage() error {
	if m.Code == "" {
		return MissingField("callback_message", "code")
	}
	if m.Timestamp < 0 {
		return InvalidField("callback_message", "ts", "must not be negative")
	}
	return nil
}

// pingMessage has no protections and reports its own name.
type pingMessage struct {
	Base
	Note string `oauth:"note"`
}

func (*pingMessage) ProtocolVersion() Version        { return V1 }
func (*pingMessage) RequiredProtection() Protections { return NoProtection }
func (*pingMessage) Transport() Transport            { return Direct }
func (*pingMessage) EnsureValidMessage() error       { return nil }
func (*pingMessage) MessageName() string             { return "ping" }

// bareMessage implements Message without embedding Base.
type bareMessage struct {
	extra ExtraData
}

func (*bareMessage) ProtocolVersion() Version        { return V2 }
func (*bareMessage) RequiredProtection() Protections { return NoProtection }
func (*bareMessage) Transport() Transport            { return Direct }
func (b *bareMessage) ExtraData() *ExtraData         { return &b.extra }
func (*bareMessage) Incoming() bool                  { return false }
func (*bareMessage) EnsureValidMessage() error       { return nil }
