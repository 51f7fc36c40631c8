// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// AuthScheme is the Authorization header scheme carrying protocol parameters
// (RFC 5849 Section 3.5.1).
const AuthScheme = "OAuth"

// MaxHeaderLength caps the size of an Authorization header we produce or parse.
const MaxHeaderLength = 8192

const realmParam = "realm"

// ParseAuthorizationHeader extracts the parameters of an OAuth scheme
// Authorization header. The realm parameter is not a protocol field and is
// returned separately. ErrNotOAuthScheme is returned for other schemes.
func ParseAuthorizationHeader(value string) (fields map[string]string, realm string, err error) {
	if len(value) > MaxHeaderLength {
		return nil, "", fmt.Errorf("%w: exceeds maximum length of %d bytes", ErrMalformedHeader, MaxHeaderLength)
	}
	scheme, params, _ := strings.Cut(strings.TrimSpace(value), " ")
	if !strings.EqualFold(scheme, AuthScheme) {
		return nil, "", ErrNotOAuthScheme
	}

	fields = make(map[string]string)
	seenRealm := false
	for part := range strings.SplitSeq(params, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		rawKey, rawValue, ok := strings.Cut(part, "=")
		if !ok || len(rawValue) < 2 || rawValue[0] != '"' || rawValue[len(rawValue)-1] != '"' {
			return nil, "", fmt.Errorf("%w: parameter %q is not of the form key=\"value\"", ErrMalformedHeader, part)
		}
		key, kerr := url.PathUnescape(strings.TrimSpace(rawKey))
		val, verr := url.PathUnescape(rawValue[1 : len(rawValue)-1])
		if err := errors.Join(kerr, verr); err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrMalformedHeader, err)
		}
		if key == "" {
			return nil, "", fmt.Errorf("%w: empty parameter name", ErrMalformedHeader)
		}

		if key == realmParam {
			if seenRealm {
				return nil, "", fmt.Errorf("%w: %q", ErrRepeatedParameter, key)
			}
			seenRealm = true
			realm = val
			continue
		}
		if _, dup := fields[key]; dup {
			return nil, "", fmt.Errorf("%w: %q", ErrRepeatedParameter, key)
		}
		fields[key] = val
	}
	return fields, realm, nil
}

// FormatAuthorizationHeader renders fields as an OAuth scheme Authorization
// header value, with parameters in sorted order.
func FormatAuthorizationHeader(fields map[string]string, realm string) (string, error) {
	if _, ok := fields[realmParam]; ok {
		return "", fmt.Errorf("%q is reserved and cannot be sent as a field", realmParam)
	}

	parts := make([]string, 0, len(fields)+1)
	if realm != "" {
		parts = append(parts, realmParam+`="`+percentEncode(realm)+`"`)
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		parts = append(parts, percentEncode(k)+`="`+percentEncode(fields[k])+`"`)
	}

	value := AuthScheme + " " + strings.Join(parts, ", ")
	if len(value) > MaxHeaderLength {
		return "", fmt.Errorf("authorization header exceeds maximum length of %d bytes", MaxHeaderLength)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return "", errors.New("authorization header contains invalid characters")
	}
	return value, nil
}

// percentEncode applies RFC 3986 percent-encoding, leaving only unreserved
// characters as is (RFC 5849 Section 3.6).
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
