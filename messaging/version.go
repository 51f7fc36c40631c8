// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version identifies the protocol revision a message was built against.
type Version struct {
	Major int
	Minor int
}

// Well-known protocol versions.
var (
	// V1 is OAuth 1.0 (RFC 5849).
	V1 = Version{Major: 1, Minor: 0}

	// V2 is OAuth 2.0 (RFC 6749) and the OpenID Connect profiles layered on it.
	V2 = Version{Major: 2, Minor: 0}
)

// String returns the version in "major.minor" form.
func (v Version) String() string {
	return strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after other.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(v.Major, other.Major); c != 0 {
		return c
	}
	return cmp.Compare(v.Minor, other.Minor)
}

// Less reports whether v is older than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// IsCompatible reports whether messages of both versions can share a codec,
// which is the case when the major versions match.
func (v Version) IsCompatible(other Version) bool {
	return v.Major == other.Major
}

// IsZero reports whether the version was never set.
func (v Version) IsZero() bool {
	return v == Version{}
}

// ParseVersion parses "major" or "major.minor". A leading "v" is accepted.
func ParseVersion(s string) (Version, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if raw == "" || strings.Count(raw, ".") > 1 {
		return Version{}, fmt.Errorf("invalid protocol version %q", s)
	}

	sv := "v" + raw
	if !semver.IsValid(sv) || semver.Prerelease(sv) != "" || semver.Build(sv) != "" {
		return Version{}, fmt.Errorf("invalid protocol version %q", s)
	}

	// Canonical always yields vMAJOR.MINOR.PATCH for a valid input.
	parts := strings.SplitN(strings.TrimPrefix(semver.Canonical(sv), "v"), ".", 3)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("invalid protocol version %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("invalid protocol version %q: %w", s, err)
	}

	return Version{Major: major, Minor: minor}, nil
}
