// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import "errors"

// Sentinel errors for wire decoding.
var (
	// ErrRepeatedParameter is returned when a parameter appears more than once.
	ErrRepeatedParameter = errors.New("parameter must not be repeated")

	// ErrMalformedJSON is returned for bodies that are not a JSON object.
	ErrMalformedJSON = errors.New("malformed JSON object")

	// ErrNotOAuthScheme is returned when an Authorization header uses another scheme.
	ErrNotOAuthScheme = errors.New("authorization header does not use the OAuth scheme")

	// ErrMalformedHeader is returned for an unparsable OAuth Authorization header.
	ErrMalformedHeader = errors.New("malformed OAuth authorization header")

	// ErrSchemaViolation is matched by every SchemaError.
	ErrSchemaViolation = errors.New("document does not match schema")
)
