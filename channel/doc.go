// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package channel moves protocol messages across HTTP.

A Channel combines a dispatch.Registry, which recognizes incoming message
types, with a bindings.Stack, which applies and verifies the protections each
type requires.

# Outgoing

Prepare applies the binding stack to a message, validates it and returns its
wire fields. EncodeIndirect turns an indirect message into a redirect, or an
auto-submitting form when the redirect URL would exceed the configured limit.
EncodeDirect renders a direct message as JSON and NewRequest builds a form
POST for it.

	ch, err := channel.New(reg, channel.WithBindings(stack))
	if err != nil {
		return err
	}
	if err := ch.WriteResponse(ctx, w, resp); err != nil {
		ch.WriteError(w, err)
	}

# Incoming

Receive resolves the message type, decodes and validates the fields, and then
verifies the required protections. A message whose nonce is recorded has
passed every other check. ReadRequest and ReadJSON feed Receive from HTTP
requests and JSON response bodies.

# Metrics

Every sent and received message increments messaging_messages_sent or
messaging_messages_received, labelled with the message type and one of the
outcomes ok, invalid, rejected, unrecognized or error.
*/
package channel
