// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    map[string]string
		wantErr error
	}{
		{
			name: "token response",
			body: `{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":null}`,
			want: map[string]string{"access_token": "at", "token_type": "Bearer", "expires_in": "3600"},
		},
		{
			name: "booleans and nested values",
			body: `{"active":true,"revoked":false,"aud":["a","b"],"cnf":{"jkt":"x"}}`,
			want: map[string]string{
				"active":  "true",
				"revoked": "false",
				"aud":     `["a","b"]`,
				"cnf":     `{"jkt":"x"}`,
			},
		},
		{
			name: "escaped strings are decoded",
			body: `{"error_description":"bad \"grant\" é"}`,
			want: map[string]string{"error_description": `bad "grant" é`},
		},
		{name: "array", body: `["a"]`, wantErr: ErrMalformedJSON},
		{name: "invalid", body: `{"a":`, wantErr: ErrMalformedJSON},
		{name: "duplicate key", body: `{"a":"1","a":"2"}`, wantErr: ErrRepeatedParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseJSON([]byte(tt.body))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	t.Parallel()

	data, err := EncodeJSON(map[string]string{
		"token_type":   "Bearer",
		"expires_in":   "3600",
		"access_token": "at",
		"scope":        "42",
	}, []string{"expires_in"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"at","expires_in":3600,"scope":"42","token_type":"Bearer"}`, string(data))
	assert.Equal(t, `{"access_token":"at","expires_in":3600,"scope":"42","token_type":"Bearer"}`, string(data),
		"keys are sorted")

	back, err := ParseJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "3600", back["expires_in"])
}
