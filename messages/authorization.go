// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"fmt"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/oauth"
	"github.com/stacklok/toolhive-messaging/wire"
)

// Message type names.
const (
	NameAuthorizationRequest  = "authorization_request"
	NameAuthorizationResponse = "authorization_response"
	NameIndirectErrorResponse = "indirect_error_response"
	NameTokenRequest          = "token_request"
	NameTokenResponse         = "token_response"
	NameErrorResponse         = "error_response"
)

// redirectPolicy is applied to every redirect_uri a message carries.
const redirectPolicy = oauth.RedirectURIPolicyAllowPrivateSchemes

// AuthorizationRequest starts the authorization code flow (RFC 6749 Section 4.1.1).
type AuthorizationRequest struct {
	messaging.Base
	messaging.Directed

	ResponseType        string `oauth:"response_type"`
	ClientID            string `oauth:"client_id"`
	RedirectURI         string `oauth:"redirect_uri,omitempty"`
	Scope               string `oauth:"scope,omitempty"`
	State               string `oauth:"state,omitempty"`
	CodeChallenge       string `oauth:"code_challenge,omitempty"`
	CodeChallengeMethod string `oauth:"code_challenge_method,omitempty"`
	Resource            string `oauth:"resource,omitempty"`
}

// MessageName implements messaging.Named.
func (*AuthorizationRequest) MessageName() string { return NameAuthorizationRequest }

// ProtocolVersion implements messaging.Message.
func (*AuthorizationRequest) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*AuthorizationRequest) RequiredProtection() messaging.Protections {
	return messaging.NoProtection
}

// Transport implements messaging.Message.
func (*AuthorizationRequest) Transport() messaging.Transport { return messaging.Indirect }

// EnsureValidMessage implements messaging.Message.
func (m *AuthorizationRequest) EnsureValidMessage() error {
	switch m.ResponseType {
	case "":
		return messaging.MissingField(NameAuthorizationRequest, oauth.ParamResponseType)
	case oauth.ResponseTypeCode:
	default:
		return messaging.InvalidField(NameAuthorizationRequest, oauth.ParamResponseType,
			"unsupported response type %q", m.ResponseType)
	}
	if m.ClientID == "" {
		return messaging.MissingField(NameAuthorizationRequest, oauth.ParamClientID)
	}
	if m.RedirectURI != "" {
		if err := oauth.ValidateRedirectURI(m.RedirectURI, redirectPolicy); err != nil {
			return messaging.WrapInvalid(NameAuthorizationRequest, oauth.ParamRedirectURI, err)
		}
	}
	if m.CodeChallengeMethod != "" && m.CodeChallenge == "" {
		return messaging.InvalidField(NameAuthorizationRequest, oauth.ParamCodeChallenge,
			"required when %s is present", oauth.ParamCodeChallengeMethod)
	}
	if m.CodeChallenge != "" {
		if err := oauth.ValidateCodeChallenge(m.CodeChallenge, m.CodeChallengeMethod); err != nil {
			field := oauth.ParamCodeChallenge
			if m.CodeChallengeMethod != oauth.PKCEMethodS256 {
				field = oauth.ParamCodeChallengeMethod
			}
			return messaging.WrapInvalid(NameAuthorizationRequest, field, err)
		}
	}
	if m.Resource != "" {
		if err := oauth.ValidateResourceURI(m.Resource); err != nil {
			return messaging.WrapInvalid(NameAuthorizationRequest, oauth.ParamResource, err)
		}
	}
	return nil
}

// AuthorizationResponse returns the code to the client's redirect URI
// (RFC 6749 Section 4.1.2). It is signed and timestamped so the client can
// tell it came from the authorization server and is fresh.
type AuthorizationResponse struct {
	messaging.Base
	messaging.Directed
	bindings.ProtectionFields `oauth:",squash"`

	Code   string `oauth:"code"`
	State  string `oauth:"state,omitempty"`
	Issuer string `oauth:"iss,omitempty"`
}

// MessageName implements messaging.Named.
func (*AuthorizationResponse) MessageName() string { return NameAuthorizationResponse }

// ProtocolVersion implements messaging.Message.
func (*AuthorizationResponse) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*AuthorizationResponse) RequiredProtection() messaging.Protections {
	return messaging.NewProtections(messaging.TamperProtection, messaging.Expiration)
}

// Transport implements messaging.Message.
func (*AuthorizationResponse) Transport() messaging.Transport { return messaging.Indirect }

// EnsureValidMessage implements messaging.Message.
func (m *AuthorizationResponse) EnsureValidMessage() error {
	if m.Code == "" {
		return messaging.MissingField(NameAuthorizationResponse, oauth.ParamCode)
	}
	return nil
}

// NewAuthorizationResponse builds the successful response to req, addressed to
// its redirect URI and echoing its state.
func NewAuthorizationResponse(req *AuthorizationRequest, code string) (*AuthorizationResponse, error) {
	resp := &AuthorizationResponse{Code: code, State: req.State}
	if err := addressTo(&resp.Directed, req); err != nil {
		return nil, err
	}
	return resp, nil
}

func addressTo(d *messaging.Directed, req *AuthorizationRequest) error {
	if req.RedirectURI == "" {
		return fmt.Errorf("%s has no %s to respond to", NameAuthorizationRequest, oauth.ParamRedirectURI)
	}
	u, err := oauth.ParseRedirectURI(req.RedirectURI, redirectPolicy)
	if err != nil {
		return err
	}
	if _, err := wire.FromValues(u.Query()); err != nil {
		return fmt.Errorf("%s query: %w", oauth.ParamRedirectURI, err)
	}
	d.SetRecipient(u)
	return nil
}
