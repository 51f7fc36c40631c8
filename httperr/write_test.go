// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantBody      Body
		wantChallenge string
	}{
		{
			name:       "client error keeps description",
			err:        New(`field "code": required field is missing`, http.StatusBadRequest),
			wantStatus: http.StatusBadRequest,
			wantBody: Body{
				Error:            ProtocolInvalidRequest,
				ErrorDescription: "field ?code?: required field is missing",
			},
		},
		{
			name:          "unauthorized carries challenge",
			err:           &selfDescribing{status: http.StatusUnauthorized, code: "signature_invalid"},
			wantStatus:    http.StatusUnauthorized,
			wantBody:      Body{Error: "signature_invalid", ErrorDescription: "self describing signature_invalid"},
			wantChallenge: `OAuth error="signature_invalid"`,
		},
		{
			name:       "server error hides details",
			err:        errors.New("dial tcp 10.0.0.1:6379: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   Body{Error: ProtocolServerError, ErrorDescription: "Internal Server Error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			Write(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json;charset=UTF-8", rec.Header().Get("Content-Type"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.wantChallenge, rec.Header().Get("WWW-Authenticate"))

			var got Body
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantBody, got)
		})
	}
}
