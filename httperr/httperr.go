// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package httperr

import (
	"errors"
	"net/http"
)

// OAuth error codes used as fallbacks when an error does not name its own.
const (
	ProtocolInvalidRequest         = "invalid_request"
	ProtocolServerError            = "server_error"
	ProtocolTemporarilyUnavailable = "temporarily_unavailable"
)

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// ProtocolCoder is implemented by errors that know their OAuth error code.
type ProtocolCoder interface {
	ProtocolErrorCode() string
}

// CodedError wraps an error with an HTTP status code and, optionally, an
// OAuth error code.
type CodedError struct {
	err          error
	code         int
	protocolCode string
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying error for errors.Is() and errors.As() compatibility.
func (e *CodedError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *CodedError) HTTPCode() int {
	return e.code
}

// OAuthCode returns the OAuth error code, or "" when none was set.
func (e *CodedError) OAuthCode() string {
	return e.protocolCode
}

// WithCode wraps an error with an HTTP status code.
// If err is nil, WithCode returns nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code}
}

// WithProtocolCode wraps an error with an HTTP status and an OAuth error code.
// If err is nil, WithProtocolCode returns nil.
func WithProtocolCode(err error, code int, protocolCode string) error {
	if err == nil {
		return nil
	}
	return &CodedError{err: err, code: code, protocolCode: protocolCode}
}

// New creates a new error with the given message and HTTP status code.
func New(message string, code int) error {
	return &CodedError{err: errors.New(message), code: code}
}

// Code extracts the HTTP status code from an error. A CodedError in the chain
// takes precedence over a StatusCoder. Errors with neither map to 500 and nil
// maps to 200.
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.code
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// ProtocolCode extracts the OAuth error code from an error. When the chain
// names none, the code is derived from the HTTP status.
func ProtocolCode(err error) string {
	if err == nil {
		return ""
	}

	var coded *CodedError
	if errors.As(err, &coded) && coded.protocolCode != "" {
		return coded.protocolCode
	}
	var pc ProtocolCoder
	if errors.As(err, &pc) {
		if c := pc.ProtocolErrorCode(); c != "" {
			return c
		}
	}

	switch status := Code(err); {
	case status == http.StatusServiceUnavailable:
		return ProtocolTemporarilyUnavailable
	case status >= 500:
		return ProtocolServerError
	default:
		return ProtocolInvalidRequest
	}
}
