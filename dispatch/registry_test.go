// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package dispatch_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-messaging/dispatch"
	"github.com/stacklok/toolhive-messaging/messaging"
)

type grantMessage struct {
	messaging.Base
	GrantType string `oauth:"grant_type"`
}

func (*grantMessage) ProtocolVersion() messaging.Version        { return messaging.V2 }
func (*grantMessage) RequiredProtection() messaging.Protections { return messaging.NoProtection }
func (*grantMessage) Transport() messaging.Transport            { return messaging.Direct }
func (*grantMessage) EnsureValidMessage() error                 { return nil }

type callbackMessage struct {
	messaging.Base
	Code string `oauth:"code"`
}

func (*callbackMessage) ProtocolVersion() messaging.Version { return messaging.V2 }
func (*callbackMessage) RequiredProtection() messaging.Protections {
	return messaging.TamperProtection
}
func (*callbackMessage) Transport() messaging.Transport { return messaging.Indirect }
func (*callbackMessage) EnsureValidMessage() error      { return nil }

type errorMessage struct {
	messaging.Base
	Error string `oauth:"error"`
}

func (*errorMessage) ProtocolVersion() messaging.Version        { return messaging.V2 }
func (*errorMessage) RequiredProtection() messaging.Protections { return messaging.NoProtection }
func (*errorMessage) Transport() messaging.Transport            { return messaging.Indirect }
func (*errorMessage) EnsureValidMessage() error                 { return nil }

type noTransport struct{ grantMessage }

func (*noTransport) Transport() messaging.Transport { return 0 }

func newTestRegistry(t *testing.T) *dispatch.Registry {
	t.Helper()

	reg := dispatch.NewRegistry()
	reg.MustRegister(
		dispatch.Entry{
			Name: "error",
			Rule: `"error" in fields`,
			New:  func() messaging.Message { return &errorMessage{} },
		},
		dispatch.Entry{
			Name: "callback",
			Rule: `"code" in fields`,
			New:  func() messaging.Message { return &callbackMessage{} },
		},
		dispatch.Entry{
			Name: "grant",
			Rule: `fields["grant_type"] in ["authorization_code", "refresh_token"]`,
			New:  func() messaging.Message { return &grantMessage{} },
		},
	)
	return reg
}

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)

	tests := []struct {
		name      string
		fields    map[string]string
		transport messaging.Transport
		wantName  string
	}{
		{
			name:      "indirect code",
			fields:    map[string]string{"code": "abc", "state": "s"},
			transport: messaging.Indirect,
			wantName:  "callback",
		},
		{
			name:      "first registered match wins",
			fields:    map[string]string{"code": "abc", "error": "access_denied"},
			transport: messaging.Indirect,
			wantName:  "error",
		},
		{
			name:      "direct grant",
			fields:    map[string]string{"grant_type": "refresh_token"},
			transport: messaging.Direct,
			wantName:  "grant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, name, err := reg.Resolve(tt.fields, tt.transport)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.transport, msg.Transport())
			assert.False(t, msg.Incoming(), "resolved instances are fresh")
		})
	}
}

func TestRegistry_ResolveUnrecognized(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)

	tests := []struct {
		name      string
		fields    map[string]string
		transport messaging.Transport
	}{
		{
			name:      "no rule matches",
			fields:    map[string]string{"foo": "bar"},
			transport: messaging.Indirect,
		},
		{
			name:      "transport mismatch",
			fields:    map[string]string{"code": "abc"},
			transport: messaging.Direct,
		},
		{
			name:      "evaluation error is a non-match",
			fields:    map[string]string{"state": "s"},
			transport: messaging.Direct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg, name, err := reg.Resolve(tt.fields, tt.transport)
			require.Error(t, err)
			assert.Nil(t, msg)
			assert.Empty(t, name)
			assert.ErrorIs(t, err, dispatch.ErrUnrecognizedMessage)
			assert.ErrorIs(t, err, messaging.ErrInvalidMessage)

			var verr *messaging.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, messaging.ErrorCodeInvalidRequest, verr.ProtocolErrorCode())
		})
	}
}

func TestRegistry_ResolveReturnsFreshInstances(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	fields := map[string]string{"code": "abc"}

	first, _, err := reg.Resolve(fields, messaging.Indirect)
	require.NoError(t, err)
	require.NoError(t, messaging.Decode(fields, first))

	second, _, err := reg.Resolve(fields, messaging.Indirect)
	require.NoError(t, err)
	assert.False(t, second.Incoming())
	assert.NotSame(t, first, second)
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	newGrant := func() messaging.Message { return &grantMessage{} }

	tests := []struct {
		name    string
		entry   dispatch.Entry
		wantErr string
	}{
		{
			name:    "missing name",
			entry:   dispatch.Entry{Rule: "true", New: newGrant},
			wantErr: "name is required",
		},
		{
			name:    "missing factory",
			entry:   dispatch.Entry{Name: "x", Rule: "true"},
			wantErr: "factory is required",
		},
		{
			name:    "nil factory result",
			entry:   dispatch.Entry{Name: "x", Rule: "true", New: func() messaging.Message { return nil }},
			wantErr: "factory returned nil",
		},
		{
			name:    "invalid transport",
			entry:   dispatch.Entry{Name: "x", Rule: "true", New: func() messaging.Message { return &noTransport{} }},
			wantErr: "invalid transport",
		},
		{
			name:    "syntax error",
			entry:   dispatch.Entry{Name: "x", Rule: `"code" in`, New: newGrant},
			wantErr: "dispatch rule parse error",
		},
		{
			name:    "unknown variable",
			entry:   dispatch.Entry{Name: "x", Rule: `claims["sub"] == "a"`, New: newGrant},
			wantErr: "dispatch rule check error",
		},
		{
			name:    "non-boolean rule",
			entry:   dispatch.Entry{Name: "x", Rule: `fields["code"]`, New: newGrant},
			wantErr: "must evaluate to bool",
		},
		{
			name:    "too long",
			entry:   dispatch.Entry{Name: "x", Rule: strings.Repeat("true && ", 600) + "true", New: newGrant},
			wantErr: "exceeds maximum",
		},
		{
			name:  "valid",
			entry: dispatch.Entry{Name: "x", Rule: `"grant_type" in fields`, New: newGrant},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := dispatch.NewRegistry().Register(tt.entry)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, dispatch.ErrInvalidEntry)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRegistry_RuleErrorDetails(t *testing.T) {
	t.Parallel()

	err := dispatch.NewRegistry().Register(dispatch.Entry{
		Name: "x",
		Rule: `"code" in`,
		New:  func() messaging.Message { return &grantMessage{} },
	})

	var rerr *dispatch.RuleError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorIs(t, err, dispatch.ErrInvalidRule)
	assert.Equal(t, dispatch.RuleErrorParse, rerr.Kind)
	require.NotEmpty(t, rerr.Issues)
	assert.Equal(t, 1, rerr.Issues[0].Line)
	assert.Contains(t, rerr.AsJSON(), `"kind":"parse"`)
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	err := reg.Register(dispatch.Entry{
		Name: "grant",
		Rule: "true",
		New:  func() messaging.Message { return &grantMessage{} },
	})
	require.ErrorIs(t, err, dispatch.ErrInvalidEntry)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_EntriesAndNew(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	entries := reg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "error", entries[0].Name)
	assert.Equal(t, messaging.TamperProtection, entries[1].Protections)
	assert.Equal(t, messaging.Direct, entries[2].Transport)
	assert.Equal(t, messaging.V2, entries[2].Version)

	msg, ok := reg.New("callback")
	require.True(t, ok)
	assert.IsType(t, &callbackMessage{}, msg)

	_, ok = reg.New("missing")
	assert.False(t, ok)
}

func TestRegistry_CostLimit(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry(dispatch.WithCostLimit(1))
	reg.MustRegister(dispatch.Entry{
		Name: "grant",
		Rule: `fields.exists(k, k.startsWith("grant")) && fields.exists(k, k.endsWith("type"))`,
		New:  func() messaging.Message { return &grantMessage{} },
	})

	fields := map[string]string{"a": "1", "b": "2", "c": "3", "grant_type": "x"}
	_, _, err := reg.Resolve(fields, messaging.Direct)
	require.ErrorIs(t, err, dispatch.ErrUnrecognizedMessage)
	assert.ErrorIs(t, err, dispatch.ErrEvaluation)
}
