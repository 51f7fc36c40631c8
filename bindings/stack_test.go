// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/nonce/mocks"
)

func TestStack_RoundTripAllProtections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	out := &fullMessage{Payload: "hello", ClientID: "client-1"}
	out.ExtraData().Set("x_vendor", "v")
	mustPrepare(t, env, out)

	assert.NotEmpty(t, out.Nonce())
	assert.Equal(t, epoch, out.Timestamp())
	assert.NotEmpty(t, out.Signature())

	in := &fullMessage{}
	transmit(t, out, in, nil)
	require.NoError(t, env.stack.Verify(ctx, in))
	assert.Equal(t, "hello", in.Payload)

	replayed := &fullMessage{}
	transmit(t, out, replayed, nil)
	perr := requireProtectionError(t, env.stack.Verify(ctx, replayed), CodeReplayDetected)
	assert.Equal(t, http.StatusForbidden, perr.HTTPStatus())
	assert.Equal(t, messaging.ReplayProtection, perr.Protection)
}

func TestStack_AppliesOnlyRequiredProtections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	none := &unprotected{Payload: "p"}
	mustPrepare(t, env, none)
	assert.Empty(t, none.Nonce())
	assert.True(t, none.Timestamp().IsZero())
	assert.Empty(t, none.Signature())

	in := &unprotected{}
	transmit(t, none, in, nil)
	require.NoError(t, env.stack.Verify(ctx, in))

	tamperOnly := &signedOnly{Payload: "p"}
	mustPrepare(t, env, tamperOnly)
	assert.NotEmpty(t, tamperOnly.Signature())
	assert.Empty(t, tamperOnly.Nonce(), "replay protection not required")
	assert.True(t, tamperOnly.Timestamp().IsZero(), "expiration not required")

	for range 2 {
		again := &signedOnly{}
		transmit(t, tamperOnly, again, nil)
		require.NoError(t, env.stack.Verify(ctx, again), "no replay check without the requirement")
	}
}

func TestStack_MissingElementFailsClosed(t *testing.T) {
	t.Parallel()

	signing, err := NewHMACSigningElement(testSecret)
	require.NoError(t, err)
	stack, err := NewStack(signing)
	require.NoError(t, err)

	msg := &fullMessage{Payload: "p"}
	perr := requireProtectionError(t, stack.Prepare(context.Background(), msg), CodeBindingUnavailable)
	assert.Equal(t, messaging.Expiration, perr.Protection)
	assert.Equal(t, http.StatusInternalServerError, perr.HTTPStatus())

	assert.True(t, stack.Supports(messaging.TamperProtection))
	assert.False(t, stack.Supports(messaging.AllProtections))
	assert.Equal(t, messaging.TamperProtection, stack.Protections())
}

func TestStack_NoNonceRecordedForForgedMessage(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	// No EXPECT: any StoreNonce call fails the test.

	env := newTestEnv(t)
	signing, err := NewHMACSigningElement(testSecret)
	require.NoError(t, err)
	stack, err := NewStack(
		signing,
		NewExpirationElement(WithExpirationClock(env.clock)),
		NewReplayElement(store, WithReplayClock(env.clock)),
	)
	require.NoError(t, err)

	out := &fullMessage{Payload: "p", ClientID: "c"}
	mustPrepare(t, env, out)

	in := &fullMessage{}
	transmit(t, out, in, func(f map[string]string) { f["payload"] = "forged" })
	requireProtectionError(t, stack.Verify(context.Background(), in), CodeSignatureInvalid)
}

func TestStack_StoreFailureIsNotReplay(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		StoreNonce(gomock.Any(), "full_message/client-1", "fixed", epoch).
		Return(false, errors.New("connection refused"))

	env := newTestEnv(t)
	signing, err := NewHMACSigningElement(testSecret)
	require.NoError(t, err)
	stack, err := NewStack(
		signing,
		NewExpirationElement(WithExpirationClock(env.clock)),
		NewReplayElement(store, WithReplayClock(env.clock), WithNonceGenerator(func() string { return "fixed" })),
	)
	require.NoError(t, err)

	out := &fullMessage{Payload: "p", ClientID: "client-1"}
	require.NoError(t, stack.Prepare(context.Background(), out))
	assert.Equal(t, "fixed", out.Nonce())

	in := &fullMessage{}
	transmit(t, out, in, nil)
	err = stack.Verify(context.Background(), in)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProtectionFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewStack(t *testing.T) {
	t.Parallel()

	signing, err := NewHMACSigningElement(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name     string
		elements []Element
		wantErr  string
	}{
		{name: "empty", elements: nil},
		{name: "distinct", elements: []Element{signing, NewExpirationElement()}},
		{name: "nil element", elements: []Element{nil}, wantErr: "must not be nil"},
		{name: "duplicate", elements: []Element{signing, signing}, wantErr: "duplicate binding element"},
		{name: "multi-flag element", elements: []Element{multiFlagElement{}}, wantErr: "exactly one protection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewStack(tt.elements...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

type multiFlagElement struct{}

func (multiFlagElement) Protection() messaging.Protections {
	return messaging.NewProtections(messaging.TamperProtection, messaging.Expiration)
}
func (multiFlagElement) Prepare(context.Context, messaging.Message) error { return nil }
func (multiFlagElement) Verify(context.Context, messaging.Message) error { return nil }
