// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bindings enforces the protection requirements a message type declares.

Each Element covers exactly one protection flag:

  - SigningElement (TamperProtection) signs a canonical form of the message
    with go-jose and verifies that signature on receipt.
  - ExpirationElement (Expiration) stamps a creation time and rejects stale or
    future-dated messages.
  - ReplayElement (ReplayProtection) stamps a random nonce and records it in a
    nonce.Store, rejecting any nonce seen before.

A Stack applies the elements a message requires, and only those. A required
flag without a configured element is an error, never a silent skip.

Message types opt in by embedding ProtectionFields:

	type TokenRequest struct {
		messaging.Base
		bindings.ProtectionFields `oauth:",squash"`
		GrantType string `oauth:"grant_type"`
	}

	stack, err := bindings.NewStack(
		signing,
		bindings.NewExpirationElement(),
		bindings.NewReplayElement(nonce.NewMemoryStore(0)),
	)
	if err := stack.Prepare(ctx, msg); err != nil { ... }
	if err := stack.Verify(ctx, incoming); err != nil {
		var perr *bindings.ProtectionError
		if errors.As(err, &perr) && perr.Code == bindings.CodeReplayDetected { ... }
	}
*/
package bindings
