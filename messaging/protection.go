// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"fmt"
	"strings"
)

// Protections is the set of security capabilities a message type requires from
// the channel that carries it. The zero value is NoProtection, an explicit
// statement that no protection is needed.
type Protections uint8

// NoProtection declares that the message needs nothing beyond local validation.
const NoProtection Protections = 0

const (
	// TamperProtection requires an integrity check (signature) over the message fields.
	TamperProtection Protections = 1 << iota

	// ReplayProtection requires a single-use nonce that has not been seen before.
	ReplayProtection

	// Expiration requires a timestamp within the configured freshness window.
	Expiration
)

// AllProtections is the union of every known protection.
const AllProtections = TamperProtection | ReplayProtection | Expiration

// protectionNames lists the known flags in canonical order.
var protectionNames = []struct {
	flag Protections
	name string
}{
	{TamperProtection, "TamperProtection"},
	{ReplayProtection, "ReplayProtection"},
	{Expiration, "Expiration"},
}

// NewProtections returns the union of the given flags. Order and duplicates
// do not matter.
func NewProtections(flags ...Protections) Protections {
	return NoProtection.Union(flags...)
}

// Union returns p combined with every flag in others.
func (p Protections) Union(others ...Protections) Protections {
	for _, o := range others {
		p |= o
	}
	return p
}

// Has reports whether every flag in want is part of p. Has(NoProtection) is
// always true.
func (p Protections) Has(want Protections) bool {
	return p&want == want
}

// IsNone reports whether p requires no protection.
func (p Protections) IsNone() bool {
	return p == NoProtection
}

// Valid reports whether p contains only known flags.
func (p Protections) Valid() bool {
	return p&^AllProtections == 0
}

// Flags returns the individual flags of p in canonical order.
func (p Protections) Flags() []Protections {
	flags := make([]Protections, 0, len(protectionNames))
	for _, pn := range protectionNames {
		if p.Has(pn.flag) {
			flags = append(flags, pn.flag)
		}
	}
	return flags
}

// String returns "None" or the flag names joined with "|".
func (p Protections) String() string {
	if p.IsNone() {
		return "None"
	}
	names := make([]string, 0, len(protectionNames))
	for _, pn := range protectionNames {
		if p.Has(pn.flag) {
			names = append(names, pn.name)
		}
	}
	if rest := p &^ AllProtections; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint8(rest)))
	}
	return strings.Join(names, "|")
}

// ParseProtections parses the output of String. Flag names are matched case
// insensitively and may be separated by "|" or ",".
func ParseProtections(s string) (Protections, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return NoProtection, nil
	}

	var p Protections
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		found := false
		for _, pn := range protectionNames {
			if strings.EqualFold(part, pn.name) {
				p |= pn.flag
				found = true
				break
			}
		}
		if !found {
			return NoProtection, fmt.Errorf("unknown protection %q", part)
		}
	}
	return p, nil
}
