// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package nonce

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMemoryStore_StoreNonce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(t *testing.T, s *MemoryStore, fc *testingclock.FakeClock)
	}{
		{
			name: "first use is fresh",
			run: func(t *testing.T, s *MemoryStore, _ *testingclock.FakeClock) {
				t.Helper()
				ok, err := s.StoreNonce(context.Background(), "client", "n1", epoch)
				require.NoError(t, err)
				assert.True(t, ok)
			},
		},
		{
			name: "second use in same scope is rejected",
			run: func(t *testing.T, s *MemoryStore, _ *testingclock.FakeClock) {
				t.Helper()
				ctx := context.Background()
				ok, err := s.StoreNonce(ctx, "client", "n1", epoch)
				require.NoError(t, err)
				require.True(t, ok)

				ok, err = s.StoreNonce(ctx, "client", "n1", epoch)
				require.NoError(t, err)
				assert.False(t, ok)
			},
		},
		{
			name: "same nonce in another scope is fresh",
			run: func(t *testing.T, s *MemoryStore, _ *testingclock.FakeClock) {
				t.Helper()
				ctx := context.Background()
				ok, err := s.StoreNonce(ctx, "client-a", "n1", epoch)
				require.NoError(t, err)
				require.True(t, ok)

				ok, err = s.StoreNonce(ctx, "client-b", "n1", epoch)
				require.NoError(t, err)
				assert.True(t, ok)
			},
		},
		{
			name: "timestamp outside window is rejected",
			run: func(t *testing.T, s *MemoryStore, _ *testingclock.FakeClock) {
				t.Helper()
				ok, err := s.StoreNonce(context.Background(), "client", "n1", epoch.Add(-time.Hour))
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Zero(t, s.Len())
			},
		},
		{
			name: "expired entries are swept on insert",
			run: func(t *testing.T, s *MemoryStore, fc *testingclock.FakeClock) {
				t.Helper()
				ctx := context.Background()
				ok, err := s.StoreNonce(ctx, "client", "old", epoch)
				require.NoError(t, err)
				require.True(t, ok)

				fc.Step(6 * time.Minute)
				ok, err = s.StoreNonce(ctx, "client", "new", fc.Now())
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 1, s.Len())
			},
		},
		{
			name: "empty nonce is an error",
			run: func(t *testing.T, s *MemoryStore, _ *testingclock.FakeClock) {
				t.Helper()
				_, err := s.StoreNonce(context.Background(), "client", "", epoch)
				require.ErrorIs(t, err, ErrEmptyNonce)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fc := testingclock.NewFakeClock(epoch)
			s := NewMemoryStore(5*time.Minute, WithClock(fc))
			tt.run(t, s, fc)
		})
	}
}

func TestMemoryStore_DefaultWindow(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0)
	assert.Equal(t, DefaultWindow, s.window)
}

func TestMemoryStore_ConcurrentUseAcceptsOnce(t *testing.T) {
	t.Parallel()

	fc := testingclock.NewFakeClock(epoch)
	s := NewMemoryStore(time.Minute, WithClock(fc))

	const workers = 32
	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.StoreNonce(context.Background(), "client", "shared", epoch)
			assert.NoError(t, err, fmt.Sprintf("worker %d", i))
			if ok {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}
