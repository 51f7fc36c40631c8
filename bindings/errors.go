// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// ErrProtectionFailed is matched by every ProtectionError.
var ErrProtectionFailed = errors.New("message protection failed")

// ErrSigningKeyUnavailable is returned when a verify-only element is asked to sign.
var ErrSigningKeyUnavailable = errors.New("signing key not configured")

// ErrorCode identifies why a protection check failed. Codes are returned to
// peers as the OAuth "error" value.
type ErrorCode string

// Protection error codes.
const (
	CodeSignatureMissing      ErrorCode = "signature_missing"
	CodeSignatureInvalid      ErrorCode = "signature_invalid"
	CodeTimestampMissing      ErrorCode = "timestamp_missing"
	CodeMessageExpired        ErrorCode = "message_expired"
	CodeTimestampInFuture     ErrorCode = "timestamp_in_future"
	CodeNonceMissing          ErrorCode = "nonce_missing"
	CodeReplayDetected        ErrorCode = "replay_detected"
	CodeBindingUnavailable    ErrorCode = "binding_unavailable"
	CodeProtectionUnsupported ErrorCode = "protection_unsupported"
)

// ProtectionError reports a failed or impossible protection check.
// It is distinct from messaging.ValidationError: the message was well formed
// but could not be trusted, or could not be protected.
type ProtectionError struct {
	Protection  messaging.Protections
	Code        ErrorCode
	MessageType string
	Err         error
}

func (e *ProtectionError) Error() string {
	msg := fmt.Sprintf("%s check failed", e.Protection)
	if e.MessageType != "" {
		msg += " for " + e.MessageType
	}
	msg += ": " + string(e.Code)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrProtectionFailed and the underlying cause.
func (e *ProtectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrProtectionFailed}
	}
	return []error{ErrProtectionFailed, e.Err}
}

// ProtocolErrorCode returns the OAuth error code.
func (e *ProtectionError) ProtocolErrorCode() string {
	return string(e.Code)
}

// HTTPStatus returns the status a server should answer with.
func (e *ProtectionError) HTTPStatus() int {
	switch e.Code {
	case CodeReplayDetected:
		return http.StatusForbidden
	case CodeBindingUnavailable, CodeProtectionUnsupported:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}

func newProtectionError(p messaging.Protections, code ErrorCode, msg messaging.Message, err error) *ProtectionError {
	return &ProtectionError{
		Protection:  p,
		Code:        code,
		MessageType: messaging.NameOf(msg),
		Err:         err,
	}
}

func unsupported(p messaging.Protections, msg messaging.Message, want string) *ProtectionError {
	return newProtectionError(p, CodeProtectionUnsupported, msg,
		fmt.Errorf("message type %T does not implement %s", msg, want))
}
