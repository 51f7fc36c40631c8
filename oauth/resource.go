// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package oauth

import (
	"fmt"
	"net/url"
)

// ValidateResourceURI validates that a resource URI conforms to RFC 8707 requirements
// for canonical URIs used in OAuth 2.0 resource indicators.
//
// A valid canonical URI must:
//   - Include a scheme (http/https)
//   - Include a host
//   - Not contain fragments
func ValidateResourceURI(resourceURI string) error {
	if resourceURI == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidResourceURI)
	}

	parsed, err := url.Parse(resourceURI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResourceURI, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("%w: must include a scheme (e.g., https://): %s", ErrInvalidResourceURI, resourceURI)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: must include a host: %s", ErrInvalidResourceURI, resourceURI)
	}
	if parsed.Fragment != "" {
		return fmt.Errorf("%w: must not contain fragments (#): %s", ErrInvalidResourceURI, resourceURI)
	}
	return nil
}
