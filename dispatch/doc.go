// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package dispatch decides which message type a set of received wire fields
represents.

Each registered message type carries a CEL rule evaluated against the
variable fields, a map(string, string) of the received parameters. The first
entry, in registration order, whose transport matches the arrival transport
and whose rule evaluates to true wins.

	reg := dispatch.NewRegistry()
	err := reg.Register(dispatch.Entry{
		Name: "authorization_response",
		Rule: `"code" in fields && !("error" in fields)`,
		New:  func() messaging.Message { return &messages.AuthorizationResponse{} },
	})

	msg, name, err := reg.Resolve(fields, messaging.Indirect)

Rules are compiled once at registration with length and cost limits. A rule
that fails to evaluate for some input counts as a non-match for that input.
*/
package dispatch
