// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package messages defines the OAuth 2.0 authorization code flow messages on top
of the messaging contract.

	| Type                   | Transport | Protections                 |
	|------------------------|-----------|-----------------------------|
	| AuthorizationRequest   | Indirect  | None                        |
	| AuthorizationResponse  | Indirect  | Tamper, Expiration          |
	| IndirectErrorResponse  | Indirect  | None                        |
	| TokenRequest           | Direct    | Tamper, Replay, Expiration  |
	| TokenResponse          | Direct    | None                        |
	| ErrorResponse          | Direct    | None                        |

All types report protocol version 2.0. Register adds every type to a
dispatch.Registry with the rules used to recognize it on the wire.

Redirect URIs are validated with oauth.RedirectURIPolicyAllowPrivateSchemes so
native clients using private-use schemes are accepted.
*/
package messages
