// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package wire converts between the flat string field maps messages are
// encoded to and their on-the-wire forms: URL query and form parameters,
// flat JSON objects, and the OAuth Authorization header scheme. It also
// provides JSON Schema checks used before a JSON body is decoded.
//
// Nothing in this package knows about message types. Errors returned here
// describe malformed input; callers report them as invalid_request.
package wire
