// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messages

import (
	"github.com/stacklok/toolhive-messaging/dispatch"
	"github.com/stacklok/toolhive-messaging/messaging"
)

// Entries returns the dispatch entries for every message type in this
// package. Error responses come first so a response carrying both "error"
// and "code" is treated as an error.
func Entries() []dispatch.Entry {
	return []dispatch.Entry{
		{
			Name: NameIndirectErrorResponse,
			Rule: `"error" in fields`,
			New:  func() messaging.Message { return &IndirectErrorResponse{} },
		},
		{
			Name: NameAuthorizationRequest,
			Rule: `"response_type" in fields`,
			New:  func() messaging.Message { return &AuthorizationRequest{} },
		},
		{
			Name: NameAuthorizationResponse,
			Rule: `"code" in fields`,
			New:  func() messaging.Message { return &AuthorizationResponse{} },
		},
		{
			Name: NameErrorResponse,
			Rule: `"error" in fields`,
			New:  func() messaging.Message { return &ErrorResponse{} },
		},
		{
			Name: NameTokenRequest,
			Rule: `"grant_type" in fields`,
			New:  func() messaging.Message { return &TokenRequest{} },
		},
		{
			Name: NameTokenResponse,
			Rule: `"access_token" in fields && "token_type" in fields`,
			New:  func() messaging.Message { return &TokenResponse{} },
		},
	}
}

// Register adds every message type in this package to reg.
func Register(reg *dispatch.Registry) error {
	for _, e := range Entries() {
		if err := reg.Register(e); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every message type in this package.
func NewRegistry(opts ...dispatch.Option) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry(opts...)
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
