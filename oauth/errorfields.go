// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"fmt"
	"net/url"
)

// ValidateErrorCode checks an "error" value: 1*NQSCHAR with no space
// (RFC 6749 Section 5.2 and Appendix A.7).
func ValidateErrorCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: error code cannot be empty", ErrInvalidErrorField)
	}
	for i := range len(code) {
		if c := code[i]; c == ' ' || !isNQSChar(c) {
			return fmt.Errorf("%w: error code contains %q", ErrInvalidErrorField, c)
		}
	}
	return nil
}

// ValidateErrorDescription checks an "error_description" value: 1*NQSCHAR
// (RFC 6749 Appendix A.8). An empty description is allowed since the field
// is optional.
func ValidateErrorDescription(desc string) error {
	for i := range len(desc) {
		if c := desc[i]; !isNQSChar(c) {
			return fmt.Errorf("%w: error_description contains %q", ErrInvalidErrorField, c)
		}
	}
	return nil
}

// ValidateErrorURI checks an "error_uri" value: an absolute URI made of
// %x21 / %x23-5B / %x5D-7E (RFC 6749 Appendix A.9).
func ValidateErrorURI(uri string) error {
	for i := range len(uri) {
		c := uri[i]
		if c < 0x21 || c > 0x7e || c == '"' || c == '\\' {
			return fmt.Errorf("%w: error_uri contains %q", ErrInvalidErrorField, c)
		}
	}
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidErrorField, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("%w: error_uri must be absolute", ErrInvalidErrorField)
	}
	return nil
}

// isNQSChar reports whether c is in %x20-21 / %x23-5B / %x5D-7E.
func isNQSChar(c byte) bool {
	return c >= 0x20 && c <= 0x7e && c != '"' && c != '\\'
}
