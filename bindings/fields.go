// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"time"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// Wire names of the protection fields.
const (
	ParamNonce     = "oauth_nonce"
	ParamTimestamp = "oauth_timestamp"
	ParamSignature = "oauth_signature"
)

// ProtectionFields carries the values binding elements stamp on a message.
// Embed it with `oauth:",squash"` so its fields appear at the top level.
type ProtectionFields struct {
	NonceValue     string `oauth:"oauth_nonce,omitempty"`
	TimestampValue int64  `oauth:"oauth_timestamp,omitempty"`
	SignatureValue string `oauth:"oauth_signature,omitempty"`
}

// Nonce returns the message nonce.
func (p *ProtectionFields) Nonce() string { return p.NonceValue }

// SetNonce sets the message nonce.
func (p *ProtectionFields) SetNonce(n string) { p.NonceValue = n }

// Timestamp returns the creation time, or the zero time when unset.
func (p *ProtectionFields) Timestamp() time.Time {
	if p.TimestampValue == 0 {
		return time.Time{}
	}
	return time.Unix(p.TimestampValue, 0).UTC()
}

// SetTimestamp sets the creation time with second precision.
func (p *ProtectionFields) SetTimestamp(t time.Time) {
	if t.IsZero() {
		p.TimestampValue = 0
		return
	}
	p.TimestampValue = t.Unix()
}

// Signature returns the compact JWS signature.
func (p *ProtectionFields) Signature() string { return p.SignatureValue }

// SetSignature sets the compact JWS signature.
func (p *ProtectionFields) SetSignature(s string) { p.SignatureValue = s }

// Signed is a message that can carry a signature.
type Signed interface {
	messaging.Message
	Signature() string
	SetSignature(string)
}

// Expiring is a message that carries its creation time.
type Expiring interface {
	messaging.Message
	Timestamp() time.Time
	SetTimestamp(time.Time)
}

// ReplayProtected is a message that carries a single-use nonce.
type ReplayProtected interface {
	messaging.Message
	Nonce() string
	SetNonce(string)
}

// NonceScoped narrows the namespace a nonce must be unique in, typically to
// the sending client. Messages that do not implement it are scoped by type.
type NonceScoped interface {
	NonceScope() string
}
