// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-messaging/oauth"
	"github.com/stacklok/toolhive-messaging/wire"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testVerifier = "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
)

func writeConfig(t *testing.T, secret string) string {
	t.Helper()
	content := "logging:\n  level: error\n"
	if secret != "" {
		content += "bindings:\n  hmac_secret: \"" + secret + "\"\n"
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspect(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "inspect", "-o", "json")
		require.NoError(t, err)

		var views []messageTypeView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		names := make([]string, len(views))
		for i, v := range views {
			names[i] = v.Name
		}
		assert.Equal(t, []string{
			"indirect_error_response",
			"authorization_request",
			"authorization_response",
			"error_response",
			"token_request",
			"token_response",
		}, names)
		assert.Equal(t, "direct", views[4].Transport)
		assert.Equal(t, "TamperProtection|ReplayProtection|Expiration", views[4].Protections)
		assert.Contains(t, views[4].Fields, oauth.ParamGrantType)
		assert.Contains(t, views[4].Fields, "oauth_signature")
	})

	t.Run("yaml selected types", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "inspect", "-o", "yaml", "token_response")
		require.NoError(t, err)

		var views []messageTypeView
		require.NoError(t, yaml.Unmarshal([]byte(out), &views))
		want := []messageTypeView{{
			Name:        "token_response",
			Transport:   "direct",
			Version:     "2.0",
			Protections: "None",
			Rule:        `"access_token" in fields && "token_type" in fields`,
			Fields:      []string{"access_token", "expires_in", "id_token", "refresh_token", "scope", "token_type"},
		}}
		if diff := cmp.Diff(want, views); diff != "" {
			t.Errorf("inspect mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("table", func(t *testing.T) {
		t.Parallel()
		out, err := execute(t, "", "inspect")
		require.NoError(t, err)
		assert.Contains(t, out, "authorization_response")
		assert.Contains(t, out, "TamperProtection")
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "", "inspect", "device_code_request")
		assert.ErrorContains(t, err, "unknown message type")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, err := execute(t, "", "inspect", "-o", "xml")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestSignVerify_TokenRequest(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, testSecret)
	out, err := execute(t, "", "sign", "token_request", "-c", cfg, "-o", "json",
		"grant_type=authorization_code", "client_id=c1", "code=abc",
		"redirect_uri=https://client.example.com/cb", "code_verifier="+testVerifier)
	require.NoError(t, err)

	fields, err := wire.ParseJSON([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "abc", fields["code"])
	assert.NotEmpty(t, fields["oauth_signature"])
	assert.NotEmpty(t, fields["oauth_nonce"])
	assert.NotEmpty(t, fields["oauth_timestamp"])

	out, err = execute(t, strings.TrimSpace(out), "verify", "-c", cfg, "--from-json", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# token_request (direct, protections TamperProtection|ReplayProtection|Expiration)\n"))
	assert.Contains(t, out, "client_id=c1\n")

	// a different client_id invalidates the signature
	tampered := strings.Replace(strings.TrimSpace(out), "client_id=c1", "client_id=c2", 1)
	var args []string
	for _, line := range strings.Split(tampered, "\n") {
		if !strings.HasPrefix(line, "#") {
			args = append(args, line)
		}
	}
	_, err = execute(t, "", append([]string{"verify", "-c", cfg}, args...)...)
	assert.ErrorContains(t, err, "signature")
}

func TestSignVerify_RedirectURL(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, testSecret)
	out, err := execute(t, "", "sign", "authorization_response", "-c", cfg, "-o", "url",
		"--to", "https://client.example.com/cb?tenant=t1", "code=xyz", "state=s1")
	require.NoError(t, err)

	u, err := url.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "client.example.com", u.Host)
	assert.Equal(t, "xyz", u.Query().Get("code"))
	assert.Equal(t, "t1", u.Query().Get("tenant"))

	out, err = execute(t, "", "verify", "-c", cfg, "--url", u.String())
	require.NoError(t, err)
	assert.Contains(t, out, "# authorization_response (indirect")
	assert.Contains(t, out, "state=s1\n")
	assert.Contains(t, out, "tenant=t1\n")
}

func TestSign_SecretFromFlag(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "")
	_, err := execute(t, "", "sign", "token_request", "-c", cfg,
		"grant_type=refresh_token", "client_id=c1", "refresh_token=r1")
	require.Error(t, err, "token requests need a signature")

	out, err := execute(t, "", "sign", "token_request", "-c", cfg, "--hmac-secret", testSecret,
		"grant_type=refresh_token", "client_id=c1", "refresh_token=r1")
	require.NoError(t, err)
	assert.Contains(t, out, "oauth_signature=")
	assert.Contains(t, out, "refresh_token=r1\n")
}

func TestSign_Errors(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, testSecret)
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown type", []string{"sign", "nope", "a=b"}, "unknown message type"},
		{"bad assignment", []string{"sign", "token_request", "grant_type"}, "expected key=value"},
		{"duplicate field", []string{"sign", "token_request", "a=1", "a=2"}, "more than once"},
		{"invalid message", []string{"sign", "token_request", "grant_type=password", "client_id=c1"}, "grant_type"},
		{"url for direct", []string{"sign", "token_response", "-o", "url", "access_token=a", "token_type=Bearer"}, "no redirect URL"},
		{"url without recipient", []string{"sign", "authorization_response", "-o", "url", "code=x"}, "recipient"},
		{"bad recipient", []string{"sign", "authorization_response", "--to", "relative/path", "code=x"}, "invalid recipient"},
		{"unknown format", []string{"sign", "token_response", "-o", "xml", "access_token=a", "token_type=Bearer"}, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, "", append(tt.args, "-c", cfg)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVerify_Errors(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, testSecret)
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unrecognized", []string{"verify", "foo=bar"}, "no message type matches"},
		{"unsigned", []string{"verify", "grant_type=refresh_token", "client_id=c1", "refresh_token=r"}, "signature_missing"},
		{"bad transport", []string{"verify", "--transport", "carrier-pigeon", "a=b"}, "transport"},
		{"bad json", []string{"verify", "--from-json", filepath.Join(t.TempDir(), "missing.json")}, "failed to read fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := execute(t, "", append(tt.args, "-c", cfg)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseAssignments(t *testing.T) {
	t.Parallel()

	fields, err := parseAssignments([]string{"a=1", "b=", "c=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "", "c": "x=y"}, fields)

	_, err = parseAssignments([]string{"=1"})
	assert.Error(t, err)
}
