// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/nonce"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fullMessage requires every protection.
type fullMessage struct {
	messaging.Base
	ProtectionFields `oauth:",squash"`
	Payload          string `oauth:"payload"`
	ClientID         string `oauth:"client_id,omitempty"`
}

func (*fullMessage) ProtocolVersion() messaging.Version { return messaging.V2 }
func (*fullMessage) RequiredProtection() messaging.Protections {
	return messaging.AllProtections
}
func (*fullMessage) Transport() messaging.Transport { return messaging.Direct }
func (m *fullMessage) NonceScope() string { return m.ClientID }
func (m *fullMessage) EnsureValidMessage() error {
	if m.Payload == "" {
		return messaging.MissingField(messaging.NameOf(m), "payload")
	}
	return nil
}

// signedOnly requires tamper protection only.
type signedOnly struct {
	messaging.Base
	ProtectionFields `oauth:",squash"`
	Payload          string `oauth:"payload,omitempty"`
}

func (*signedOnly) ProtocolVersion() messaging.Version { return messaging.V2 }
func (*signedOnly) RequiredProtection() messaging.Protections {
	return messaging.TamperProtection
}
func (*signedOnly) Transport() messaging.Transport { return messaging.Indirect }
func (*signedOnly) EnsureValidMessage() error { return nil }

// unprotected requires nothing.
type unprotected struct {
	messaging.Base
	ProtectionFields `oauth:",squash"`
	Payload          string `oauth:"payload,omitempty"`
}

func (*unprotected) ProtocolVersion() messaging.Version { return messaging.V1 }
func (*unprotected) RequiredProtection() messaging.Protections {
	return messaging.NoProtection
}
func (*unprotected) Transport() messaging.Transport { return messaging.Direct }
func (*unprotected) EnsureValidMessage() error { return nil }

// unsignable requires tamper protection but has no signature field.
type unsignable struct {
	messaging.Base
	Payload string `oauth:"payload,omitempty"`
}

func (*unsignable) ProtocolVersion() messaging.Version { return messaging.V2 }
func (*unsignable) RequiredProtection() messaging.Protections {
	return messaging.TamperProtection
}
func (*unsignable) Transport() messaging.Transport { return messaging.Direct }
func (*unsignable) EnsureValidMessage() error { return nil }

type testEnv struct {
	clock *testingclock.FakeClock
	store *nonce.MemoryStore
	stack *Stack
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fc := testingclock.NewFakeClock(epoch)
	store := nonce.NewMemoryStore(DefaultMaxAge, nonce.WithClock(fc))
	signing, err := NewHMACSigningElement(testSecret)
	require.NoError(t, err)

	stack, err := NewStack(
		signing,
		NewExpirationElement(WithExpirationClock(fc)),
		NewReplayElement(store, WithReplayClock(fc)),
	)
	require.NoError(t, err)
	return &testEnv{clock: fc, store: store, stack: stack}
}

// transmit encodes an outgoing message and decodes it into target as if it
// had crossed the wire, applying mutate to the wire fields first.
func transmit(t *testing.T, out, target messaging.Message, mutate func(map[string]string)) {
	t.Helper()

	fields, err := messaging.Fields(out)
	require.NoError(t, err)
	if mutate != nil {
		mutate(fields)
	}
	require.NoError(t, messaging.Decode(fields, target))
}

func requireProtectionError(t *testing.T, err error, code ErrorCode) *ProtectionError {
	t.Helper()

	require.Error(t, err)
	var perr *ProtectionError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, code, perr.Code, "error: %v", err)
	require.ErrorIs(t, err, ErrProtectionFailed)
	return perr
}

func mustPrepare(t *testing.T, env *testEnv, msg messaging.Message) {
	t.Helper()
	require.NoError(t, env.stack.Prepare(context.Background(), msg))
}

