// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for message handling.
var (
	// ErrInvalidMessage is matched by every ValidationError.
	ErrInvalidMessage = errors.New("invalid protocol message")

	// ErrAlreadyIncoming is returned when decoding into a message that was already decoded.
	ErrAlreadyIncoming = errors.New("message was already deserialized")

	// ErrExtraDataConflict is returned when an extension field shadows a declared field.
	ErrExtraDataConflict = errors.New("extension field conflicts with a declared field")
)

// ErrorCodeInvalidRequest is the OAuth error code reported for malformed messages.
const ErrorCodeInvalidRequest = "invalid_request"

// ValidationError reports that a message does not conform to its type's
// local rules. It is always recoverable: the exchange is rejected with
// invalid_request and processing continues.
type ValidationError struct {
	// MessageType names the message type, when known.
	MessageType string
	// Field names the offending field or field combination, when applicable.
	Field string
	// Reason describes the rule that failed.
	Reason string

	cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid")
	if e.MessageType != "" {
		b.WriteString(" ")
		b.WriteString(e.MessageType)
	}
	b.WriteString(" message")
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap exposes ErrInvalidMessage and the underlying cause, if any.
func (e *ValidationError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidMessage}
	}
	return []error{ErrInvalidMessage, e.cause}
}

// ProtocolErrorCode returns the OAuth error code for this failure.
func (*ValidationError) ProtocolErrorCode() string {
	return ErrorCodeInvalidRequest
}

// HTTPStatus returns the HTTP status used when rejecting the message.
func (*ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// MissingField returns a ValidationError for an absent required field.
func MissingField(messageType, field string) *ValidationError {
	return &ValidationError{MessageType: messageType, Field: field, Reason: "required field is missing"}
}

// InvalidField returns a ValidationError for a field with a bad value or a
// broken cross-field rule.
func InvalidField(messageType, field, format string, args ...any) *ValidationError {
	return &ValidationError{MessageType: messageType, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// WrapInvalid returns a ValidationError carrying cause.
func WrapInvalid(messageType, field string, cause error) *ValidationError {
	return &ValidationError{MessageType: messageType, Field: field, cause: cause}
}
