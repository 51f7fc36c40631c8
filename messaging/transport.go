// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"fmt"
	"strings"
)

// Transport classifies how a message type travels between parties.
type Transport int

const (
	// Direct messages travel over a channel under the sender's control, such as a
	// server-to-server HTTP call, where the full body is visible to both ends.
	Direct Transport = iota + 1

	// Indirect messages travel through a user agent, embedded in a redirect or
	// auto-submitted form. Payload size and confidentiality are constrained.
	Indirect
)

// Valid reports whether t is Direct or Indirect.
func (t Transport) Valid() bool {
	return t == Direct || t == Indirect
}

// String returns "direct", "indirect" or a placeholder for invalid values.
func (t Transport) String() string {
	switch t {
	case Direct:
		return "direct"
	case Indirect:
		return "indirect"
	default:
		return fmt.Sprintf("transport(%d)", int(t))
	}
}

// ParseTransport parses "direct" or "indirect", case insensitively.
func ParseTransport(s string) (Transport, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct":
		return Direct, nil
	case "indirect":
		return Indirect, nil
	default:
		return 0, fmt.Errorf("unknown transport %q", s)
	}
}
