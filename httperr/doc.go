// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package httperr maps errors to HTTP status codes and OAuth error codes, and
writes OAuth JSON error bodies (RFC 6749 Section 5.2).

Errors advertise their response through either a CodedError wrapper or by
implementing the small interfaces StatusCoder and ProtocolCoder anywhere in
their chain:

	err := httperr.WithProtocolCode(err, http.StatusBadRequest, oauth.ErrorInvalidGrant)

	status := httperr.Code(err)          // 400
	code := httperr.ProtocolCode(err)    // "invalid_grant"

Errors without either fall back to 500 and server_error.

# HTTP Handler Example

	func tokenHandler(w http.ResponseWriter, r *http.Request) {
		msg, err := ch.ReadRequest(r.Context(), r)
		if err != nil {
			httperr.Write(w, err)
			return
		}
		// ...
	}

Write never exposes the text of server-side (5xx) errors to the peer.
*/
package httperr
