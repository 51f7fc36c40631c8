// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Code verifier length bounds (RFC 7636 Section 4.1).
const (
	MinCodeVerifierLength = 43
	MaxCodeVerifierLength = 128
)

// s256ChallengeLength is the length of an unpadded base64url SHA-256 digest.
const s256ChallengeLength = 43

// ValidateCodeVerifier checks a code_verifier against RFC 7636 Section 4.1:
// 43 to 128 characters from [A-Z] / [a-z] / [0-9] / "-" / "." / "_" / "~".
func ValidateCodeVerifier(verifier string) error {
	if n := len(verifier); n < MinCodeVerifierLength || n > MaxCodeVerifierLength {
		return fmt.Errorf("%w: length %d outside %d..%d", ErrInvalidCodeVerifier,
			n, MinCodeVerifierLength, MaxCodeVerifierLength)
	}
	if i := firstNonUnreserved(verifier); i >= 0 {
		return fmt.Errorf("%w: character %q at position %d is not allowed", ErrInvalidCodeVerifier, verifier[i], i)
	}
	return nil
}

// ValidateCodeChallenge checks a code_challenge for the given method.
// Only S256 is accepted.
func ValidateCodeChallenge(challenge, method string) error {
	if method != PKCEMethodS256 {
		return fmt.Errorf("%w: %q", ErrUnsupportedChallengeMethod, method)
	}
	if len(challenge) != s256ChallengeLength {
		return fmt.Errorf("%w: S256 challenge must be %d characters, got %d",
			ErrInvalidCodeChallenge, s256ChallengeLength, len(challenge))
	}
	if _, err := base64.RawURLEncoding.DecodeString(challenge); err != nil {
		return fmt.Errorf("%w: not base64url: %w", ErrInvalidCodeChallenge, err)
	}
	return nil
}

// S256Challenge derives the S256 code_challenge for a verifier.
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyCodeChallenge reports whether verifier matches challenge under method.
func VerifyCodeChallenge(verifier, challenge, method string) bool {
	if method != PKCEMethodS256 || ValidateCodeVerifier(verifier) != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(S256Challenge(verifier)), []byte(challenge)) == 1
}

func firstNonUnreserved(s string) int {
	for i := range len(s) {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '_', c == '~':
		default:
			return i
		}
	}
	return -1
}
