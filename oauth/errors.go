// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import "errors"

// Validation errors for protocol field values.
var (
	// ErrInvalidRedirectURI indicates a redirect_uri that is malformed or uses a disallowed scheme.
	ErrInvalidRedirectURI = errors.New("invalid redirect_uri")

	// ErrInvalidResourceURI indicates a resource indicator that is not an RFC 8707 canonical URI.
	ErrInvalidResourceURI = errors.New("invalid resource URI")

	// ErrInvalidCodeVerifier indicates a PKCE code_verifier outside the RFC 7636 grammar.
	ErrInvalidCodeVerifier = errors.New("invalid code_verifier")

	// ErrInvalidCodeChallenge indicates a PKCE code_challenge outside the RFC 7636 grammar.
	ErrInvalidCodeChallenge = errors.New("invalid code_challenge")

	// ErrUnsupportedChallengeMethod indicates a code_challenge_method other than S256.
	ErrUnsupportedChallengeMethod = errors.New("unsupported code_challenge_method")

	// ErrInvalidErrorField indicates an error, error_description or error_uri
	// with characters RFC 6749 Section 5.2 does not allow.
	ErrInvalidErrorField = errors.New("invalid error response field")
)
