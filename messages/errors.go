// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	_ "embed"
	"net/http"

	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/oauth"
	"github.com/stacklok/toolhive-messaging/wire"
)

//go:embed schemas/error_response.json
var errorResponseSchema []byte

var errorResponseSchemaCompiled = wire.MustCompileSchema(NameErrorResponse, errorResponseSchema)

// ErrorFields are the error parameters shared by direct and indirect error
// responses (RFC 6749 Sections 4.1.2.1 and 5.2).
type ErrorFields struct {
	Code        string `oauth:"error"`
	Description string `oauth:"error_description,omitempty"`
	URI         string `oauth:"error_uri,omitempty"`
}

func (f *ErrorFields) validate(messageType string) error {
	if f.Code == "" {
		return messaging.MissingField(messageType, oauth.ParamError)
	}
	if err := oauth.ValidateErrorCode(f.Code); err != nil {
		return messaging.WrapInvalid(messageType, oauth.ParamError, err)
	}
	if err := oauth.ValidateErrorDescription(f.Description); err != nil {
		return messaging.WrapInvalid(messageType, oauth.ParamErrorDescription, err)
	}
	if f.URI != "" {
		if err := oauth.ValidateErrorURI(f.URI); err != nil {
			return messaging.WrapInvalid(messageType, oauth.ParamErrorURI, err)
		}
	}
	return nil
}

// ErrorResponse is a token endpoint error (RFC 6749 Section 5.2).
type ErrorResponse struct {
	messaging.Base
	ErrorFields `oauth:",squash"`
}

// MessageName implements messaging.Named.
func (*ErrorResponse) MessageName() string { return NameErrorResponse }

// ProtocolVersion implements messaging.Message.
func (*ErrorResponse) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*ErrorResponse) RequiredProtection() messaging.Protections { return messaging.NoProtection }

// Transport implements messaging.Message.
func (*ErrorResponse) Transport() messaging.Transport { return messaging.Direct }

// JSONSchema returns the schema JSON bodies of this type must satisfy.
func (*ErrorResponse) JSONSchema() *wire.Schema { return errorResponseSchemaCompiled }

// HTTPStatus returns the status the error is sent with: 401 for
// invalid_client, 400 otherwise (RFC 6749 Section 5.2).
func (m *ErrorResponse) HTTPStatus() int {
	if m.Code == oauth.ErrorInvalidClient {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

// EnsureValidMessage implements messaging.Message.
func (m *ErrorResponse) EnsureValidMessage() error {
	return m.validate(NameErrorResponse)
}

// IndirectErrorResponse reports an authorization failure through the user
// agent (RFC 6749 Section 4.1.2.1).
type IndirectErrorResponse struct {
	messaging.Base
	messaging.Directed
	ErrorFields `oauth:",squash"`

	State string `oauth:"state,omitempty"`
}

// MessageName implements messaging.Named.
func (*IndirectErrorResponse) MessageName() string { return NameIndirectErrorResponse }

// ProtocolVersion implements messaging.Message.
func (*IndirectErrorResponse) ProtocolVersion() messaging.Version { return messaging.V2 }

// RequiredProtection implements messaging.Message.
func (*IndirectErrorResponse) RequiredProtection() messaging.Protections {
	return messaging.NoProtection
}

// Transport implements messaging.Message.
func (*IndirectErrorResponse) Transport() messaging.Transport { return messaging.Indirect }

// EnsureValidMessage implements messaging.Message.
func (m *IndirectErrorResponse) EnsureValidMessage() error {
	return m.validate(NameIndirectErrorResponse)
}

// NewIndirectErrorResponse builds an error response to req, addressed to its
// redirect URI and echoing its state.
func NewIndirectErrorResponse(req *AuthorizationRequest, code, description string) (*IndirectErrorResponse, error) {
	resp := &IndirectErrorResponse{
		ErrorFields: ErrorFields{Code: code, Description: description},
		State:       req.State,
	}
	if err := addressTo(&resp.Directed, req); err != nil {
		return nil, err
	}
	return resp, nil
}
