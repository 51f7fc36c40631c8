// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package nonce provides stores that remember single-use message nonces for the
duration of a freshness window, so replayed messages can be detected.

Two implementations are provided:

  - MemoryStore keeps nonces in process memory. It is suitable for a single
    replica and for tests.
  - RedisStore keeps nonces in Redis with a TTL equal to the remaining window,
    so every replica behind a load balancer shares one view.

Both record a nonce atomically: StoreNonce returns true exactly once for a
given (scope, nonce) pair within the window.

	store := nonce.NewMemoryStore(5 * time.Minute)
	fresh, err := store.StoreNonce(ctx, "client-1", "n-123", msgTime)
	if err != nil {
		// storage failure, not a replay
	}
	if !fresh {
		// replayed, or too old to be tracked
	}
*/
package nonce
