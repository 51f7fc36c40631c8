// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklok/toolhive-messaging/messaging"
)

func TestProtectionError(t *testing.T) {
	t.Parallel()

	cause := errors.New("square/go-jose: error in cryptographic primitive")

	tests := []struct {
		name       string
		err        *ProtectionError
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "with cause",
			err:        &ProtectionError{Protection: messaging.TamperProtection, Code: CodeSignatureInvalid, MessageType: "token_request", Err: cause},
			wantMsg:    "TamperProtection check failed for token_request: signature_invalid: " + cause.Error(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "replay",
			err:        &ProtectionError{Protection: messaging.ReplayProtection, Code: CodeReplayDetected},
			wantMsg:    "ReplayProtection check failed: replay_detected",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "misconfiguration",
			err:        &ProtectionError{Protection: messaging.Expiration, Code: CodeBindingUnavailable},
			wantMsg:    "Expiration check failed: binding_unavailable",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantMsg, tt.err.Error())
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Equal(t, string(tt.err.Code), tt.err.ProtocolErrorCode())
			assert.ErrorIs(t, tt.err, ErrProtectionFailed)
			assert.NotErrorIs(t, tt.err, messaging.ErrInvalidMessage)
		})
	}

	assert.ErrorIs(t, tests[0].err, cause)
}
