// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ory/fosite"
)

// MaxRedirectURILength is the maximum allowed length for a single redirect URI.
const MaxRedirectURILength = 2048

// RedirectURIPolicy controls which URI schemes are accepted during redirect URI validation.
type RedirectURIPolicy int

const (
	// RedirectURIPolicyStrict allows only https and http-loopback schemes
	// (RFC 8252 Section 8.4).
	RedirectURIPolicyStrict RedirectURIPolicy = iota

	// RedirectURIPolicyAllowPrivateSchemes also allows private-use URI schemes
	// (e.g., cursor://, vscode://) per RFC 8252 Section 7.1.
	RedirectURIPolicyAllowPrivateSchemes
)

// String returns the policy name used in configuration.
func (p RedirectURIPolicy) String() string {
	switch p {
	case RedirectURIPolicyStrict:
		return "strict"
	case RedirectURIPolicyAllowPrivateSchemes:
		return "allow-private-schemes"
	default:
		return fmt.Sprintf("RedirectURIPolicy(%d)", int(p))
	}
}

// ParseRedirectURIPolicy parses the output of RedirectURIPolicy.String.
func ParseRedirectURIPolicy(s string) (RedirectURIPolicy, error) {
	switch s {
	case "", "strict":
		return RedirectURIPolicyStrict, nil
	case "allow-private-schemes":
		return RedirectURIPolicyAllowPrivateSchemes, nil
	default:
		return 0, fmt.Errorf("unknown redirect URI policy %q", s)
	}
}

// ValidateRedirectURI validates a redirect URI per RFC 6749 Section 3.1.2 and RFC 8252.
func ValidateRedirectURI(uri string, policy RedirectURIPolicy) error {
	_, err := ParseRedirectURI(uri, policy)
	return err
}

// ParseRedirectURI validates a redirect URI and returns it parsed.
//
// Validation rules applied:
//   - URI must not exceed MaxRedirectURILength
//   - URI must be absolute and carry no fragment (RFC 6749 Section 3.1.2)
//   - Strict: only https or http-loopback (RFC 8252 Section 8.4)
//   - AllowPrivateSchemes: also private-use schemes (RFC 8252 Section 7.1)
func ParseRedirectURI(uri string, policy RedirectURIPolicy) (*url.URL, error) {
	if len(uri) > MaxRedirectURILength {
		return nil, fmt.Errorf("%w: too long (maximum %d characters)", ErrInvalidRedirectURI, MaxRedirectURILength)
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRedirectURI, err)
	}

	if !fosite.IsValidRedirectURI(parsed) {
		return nil, fmt.Errorf("%w: must be an absolute URI without a fragment", ErrInvalidRedirectURI)
	}

	switch policy {
	case RedirectURIPolicyStrict:
		if !fosite.IsRedirectURISecureStrict(context.Background(), parsed) {
			return nil, fmt.Errorf("%w: must use http (for loopback) or https scheme", ErrInvalidRedirectURI)
		}
	case RedirectURIPolicyAllowPrivateSchemes:
		if !fosite.IsRedirectURISecure(context.Background(), parsed) {
			return nil, fmt.Errorf("%w: must use a secure scheme (https, http for loopback, or a private-use scheme)",
				ErrInvalidRedirectURI)
		}
	default:
		return nil, fmt.Errorf("unknown redirect URI policy: %d", policy)
	}

	return parsed, nil
}
