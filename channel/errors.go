// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import "errors"

var (
	// ErrWrongTransport is returned when a message is encoded for a transport
	// its type does not use.
	ErrWrongTransport = errors.New("message type does not use this transport")

	// ErrNoRecipient is returned when an outgoing message has no recipient URL.
	ErrNoRecipient = errors.New("message has no recipient")

	// ErrIncomingMessage is returned when an incoming message is sent.
	ErrIncomingMessage = errors.New("incoming messages cannot be sent")

	// ErrMessageTooLarge is returned when an indirect message fits neither a
	// redirect nor a form post.
	ErrMessageTooLarge = errors.New("indirect message too large")

	// ErrRecipientQuery is returned when the query of an indirect message's
	// recipient URL cannot be carried in the message.
	ErrRecipientQuery = errors.New("recipient query cannot be carried")

	// ErrUnsupportedMediaType is returned for request bodies that are not
	// form encoded.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrMethodNotAllowed is returned for requests that are neither GET nor POST.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
