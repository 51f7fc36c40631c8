// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package nonce

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=store.go -destination=mocks/mock_store.go -package=mocks Store

import (
	"context"
	"errors"
	"time"
)

// DefaultWindow is how long a nonce is remembered when no window is configured.
const DefaultWindow = 13 * time.Minute

// ErrEmptyNonce is returned when an empty nonce is offered for storage.
var ErrEmptyNonce = errors.New("nonce must not be empty")

// Store records nonces that have been used.
type Store interface {
	// StoreNonce records nonce within scope for a message created at timestamp.
	// It returns false if the nonce was already used in the scope, or if the
	// timestamp is too old for the store to vouch for uniqueness.
	StoreNonce(ctx context.Context, scope, nonce string, timestamp time.Time) (bool, error)
}
