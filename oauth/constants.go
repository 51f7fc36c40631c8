// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

// Protocol parameter names (RFC 6749, RFC 7636, RFC 8707, RFC 9207, OpenID Connect Core).
const (
	ParamClientID            = "client_id"
	ParamClientSecret        = "client_secret"
	ParamResponseType        = "response_type"
	ParamRedirectURI         = "redirect_uri"
	ParamScope               = "scope"
	ParamState               = "state"
	ParamCode                = "code"
	ParamGrantType           = "grant_type"
	ParamRefreshToken        = "refresh_token"
	ParamAccessToken         = "access_token"
	ParamTokenType           = "token_type"
	ParamExpiresIn           = "expires_in"
	ParamCodeChallenge       = "code_challenge"
	ParamCodeChallengeMethod = "code_challenge_method"
	ParamCodeVerifier        = "code_verifier"
	ParamResource            = "resource"
	ParamError               = "error"
	ParamErrorDescription    = "error_description"
	ParamErrorURI            = "error_uri"
	ParamIssuer              = "iss"
	ParamIDToken             = "id_token"
)

// Grant types as defined by RFC 6749.
const (
	// GrantTypeAuthorizationCode is the authorization code grant type (RFC 6749 Section 4.1).
	GrantTypeAuthorizationCode = "authorization_code"

	// GrantTypeRefreshToken is the refresh token grant type (RFC 6749 Section 6).
	GrantTypeRefreshToken = "refresh_token"
)

// Response types as defined by RFC 6749.
const (
	// ResponseTypeCode is the authorization code response type (RFC 6749 Section 4.1.1).
	ResponseTypeCode = "code"
)

// Access token types.
const (
	// TokenTypeBearer is the bearer token type (RFC 6750).
	TokenTypeBearer = "Bearer"

	// TokenTypeDPoP is the sender-constrained token type (RFC 9449).
	TokenTypeDPoP = "DPoP"
)

// PKCE (Proof Key for Code Exchange) methods as defined by RFC 7636.
const (
	// PKCEMethodS256 uses SHA-256 hash of the code verifier.
	PKCEMethodS256 = "S256"

	// PKCEMethodPlain sends the verifier itself. It is recognized so it can be
	// rejected with a precise error.
	PKCEMethodPlain = "plain"
)

// Error codes (RFC 6749 Sections 4.1.2.1 and 5.2).
const (
	ErrorInvalidRequest          = "invalid_request"
	ErrorInvalidClient           = "invalid_client"
	ErrorInvalidGrant            = "invalid_grant"
	ErrorUnauthorizedClient      = "unauthorized_client"
	ErrorUnsupportedGrantType    = "unsupported_grant_type"
	ErrorInvalidScope            = "invalid_scope"
	ErrorAccessDenied            = "access_denied"
	ErrorUnsupportedResponseType = "unsupported_response_type"
	ErrorServerError             = "server_error"
	ErrorTemporarilyUnavailable  = "temporarily_unavailable"
)
