// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package nonce

import (
	"context"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

type memoryKey struct {
	scope string
	nonce string
}

// MemoryStore implements Store with an in-process map.
// It is safe for concurrent use. Expired entries are swept on every insert.
type MemoryStore struct {
	mu      sync.Mutex
	clock   clock.PassiveClock
	window  time.Duration
	entries map[memoryKey]time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock used to expire entries.
func WithClock(c clock.PassiveClock) MemoryOption {
	return func(s *MemoryStore) {
		s.clock = c
	}
}

// NewMemoryStore creates a MemoryStore remembering nonces for window after
// their message timestamp. A non-positive window selects DefaultWindow.
func NewMemoryStore(window time.Duration, opts ...MemoryOption) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	s := &MemoryStore{
		clock:   clock.RealClock{},
		window:  window,
		entries: make(map[memoryKey]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreNonce implements Store.
func (s *MemoryStore) StoreNonce(_ context.Context, scope, nonce string, timestamp time.Time) (bool, error) {
	if nonce == "" {
		return false, ErrEmptyNonce
	}

	now := s.clock.Now()
	expiresAt := timestamp.Add(s.window)
	if !now.Before(expiresAt) {
		// Older than the window: an earlier use may already have been swept.
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}

	key := memoryKey{scope: scope, nonce: nonce}
	if _, seen := s.entries[key]; seen {
		return false, nil
	}
	s.entries[key] = expiresAt
	return true, nil
}

// Len returns the number of remembered nonces, including expired entries not
// yet swept.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*MemoryStore)(nil)
