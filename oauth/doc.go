// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package oauth provides RFC-defined parameter names, values, and field
// validators for OAuth 2.0 protocol messages.
//
// # Redirect URI Validation
//
// Redirect URIs are validated per RFC 6749 and RFC 8252 with a configurable
// scheme policy:
//
//	// Strict policy: only https and http-loopback
//	u, err := oauth.ParseRedirectURI("https://example.com/callback", oauth.RedirectURIPolicyStrict)
//
//	// Allow private-use schemes for native apps
//	err := oauth.ValidateRedirectURI("myapp://callback", oauth.RedirectURIPolicyAllowPrivateSchemes)
//
// # PKCE
//
//	if err := oauth.ValidateCodeVerifier(verifier); err != nil { ... }
//	ok := oauth.VerifyCodeChallenge(verifier, challenge, oauth.PKCEMethodS256)
//
// # Error Responses
//
// ValidateErrorCode, ValidateErrorDescription and ValidateErrorURI check the
// character sets RFC 6749 Section 5.2 allows in error responses.
//
// Every validator wraps a sentinel from errors.go so callers can tell which
// rule failed with errors.Is.
package oauth
