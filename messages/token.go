// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	_ "embed"
	"strings"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/oauth"
	"github.com/stacklok/toolhive-messaging/wire"
)

//go:embed schemas/token_response.json
var tokenResponseSchema []byte

var tokenResponseSchemaCompiled = wire.MustCompileSchema(NameTokenResponse, tokenResponseSchema)

// TokenRequest exchanges a grant for tokens at the token endpoint
// (RFC 6749 Sections 4.1.3 and 6). It is signed, timestamped and carries a
// nonce scoped to the requesting client.
type TokenRequest struct {
	messaging.Base
	messaging.Directed
	bindings.ProtectionFields `oauth:",squash"`

	GrantType    string `oauth:"grant_type"`
	ClientID     string `oauth:"client_id"`
	Code         string `oauth:"code,omitempty"`
	RedirectURI  string `oauth:"redirect_uri,omitempty"`
	CodeVerifier string `oauth:"code_verifier,omitempty"`
	RefreshToken string `oauth:"refresh_token,omitempty"`
	Scope        string `oauth:"scope,omitempty"`
	Resource     string `oauth:"resource,omitempty"`
}

// MessageName implements messaging.Named.
func (*TokenRequest) MessageName() string { return NameTokenRequest }

// ProtocolVersion implements messaging.Message.
func (*TokenRequest) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*TokenRequest) RequiredProtection() messaging.Protections { return messaging.AllProtections }

// Transport implements messaging.Message.
func (*TokenRequest) Transport() messaging.Transport { return messaging.Direct }

// NonceScope implements bindings.NonceScoped. Nonces are unique per client.
func (m *TokenRequest) NonceScope() string { return m.ClientID }

// EnsureValidMessage implements messaging.Message.
func (m *TokenRequest) EnsureValidMessage() error {
	if m.GrantType == "" {
		return messaging.MissingField(NameTokenRequest, oauth.ParamGrantType)
	}
	if m.ClientID == "" {
		return messaging.MissingField(NameTokenRequest, oauth.ParamClientID)
	}

	switch m.GrantType {
	case oauth.GrantTypeAuthorizationCode:
		if m.Code == "" {
			return messaging.MissingField(NameTokenRequest, oauth.ParamCode)
		}
		if m.CodeVerifier != "" {
			if err := oauth.ValidateCodeVerifier(m.CodeVerifier); err != nil {
				return messaging.WrapInvalid(NameTokenRequest, oauth.ParamCodeVerifier, err)
			}
		}
	case oauth.GrantTypeRefreshToken:
		if m.RefreshToken == "" {
			return messaging.MissingField(NameTokenRequest, oauth.ParamRefreshToken)
		}
	default:
		return messaging.InvalidField(NameTokenRequest, oauth.ParamGrantType,
			"unsupported grant type %q", m.GrantType)
	}

	if m.RedirectURI != "" {
		if err := oauth.ValidateRedirectURI(m.RedirectURI, redirectPolicy); err != nil {
			return messaging.WrapInvalid(NameTokenRequest, oauth.ParamRedirectURI, err)
		}
	}
	if m.Resource != "" {
		if err := oauth.ValidateResourceURI(m.Resource); err != nil {
			return messaging.WrapInvalid(NameTokenRequest, oauth.ParamResource, err)
		}
	}
	return nil
}

// TokenResponse carries issued tokens back to the client (RFC 6749 Section 5.1).
type TokenResponse struct {
	messaging.Base

	AccessToken  string `oauth:"access_token"`
	TokenType    string `oauth:"token_type"`
	ExpiresIn    int64  `oauth:"expires_in,omitempty"`
	RefreshToken string `oauth:"refresh_token,omitempty"`
	Scope        string `oauth:"scope,omitempty"`
	IDToken      string `oauth:"id_token,omitempty"`
}

// MessageName implements messaging.Named.
func (*TokenResponse) MessageName() string { return NameTokenResponse }

// ProtocolVersion implements messaging.Message.
func (*TokenResponse) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*TokenResponse) RequiredProtection() messaging.Protections { return messaging.NoProtection }

// Transport implements messaging.Message.
func (*TokenResponse) Transport() messaging.Transport { return messaging.Direct }

// JSONSchema returns the schema JSON bodies of this type must satisfy.
func (*TokenResponse) JSONSchema() *wire.Schema { return tokenResponseSchemaCompiled }

// EnsureValidMessage implements messaging.Message.
func (m *TokenResponse) EnsureValidMessage() error {
	if m.AccessToken == "" {
		return messaging.MissingField(NameTokenResponse, oauth.ParamAccessToken)
	}
	if m.TokenType == "" {
		return messaging.MissingField(NameTokenResponse, oauth.ParamTokenType)
	}
	// RFC 6749 Section 7.1: token types are case-insensitive.
	if !strings.EqualFold(m.TokenType, oauth.TokenTypeBearer) && !strings.EqualFold(m.TokenType, oauth.TokenTypeDPoP) {
		return messaging.InvalidField(NameTokenResponse, oauth.ParamTokenType,
			"unsupported token type %q", m.TokenType)
	}
	if m.ExpiresIn < 0 {
		return messaging.InvalidField(NameTokenResponse, oauth.ParamExpiresIn, "must be >= 0, got %d", m.ExpiresIn)
	}
	return nil
}
