// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package nonce

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"k8s.io/utils/clock"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// RedisConfig holds Redis connection settings for a RedisStore.
type RedisConfig struct {
	// Addrs lists the Redis endpoints. A single address selects a plain client,
	// several addresses a cluster client.
	Addrs []string

	// MasterName selects a Sentinel failover client when set.
	MasterName string

	Username string
	Password string
	DB       int

	// KeyPrefix namespaces keys, e.g. "msg:prod:".
	KeyPrefix string

	// Window is how long nonces are remembered. Defaults to DefaultWindow.
	Window time.Duration

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisStore implements Store on top of Redis. Entries expire on their own
// through Redis TTLs, so no sweeping is needed.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	window    time.Duration
	clock     clock.PassiveClock
}

// NewRedisStore connects to Redis and returns a store. The connection is
// verified with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if err := validateRedisConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}

	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.Window), nil
}

// NewRedisStoreWithClient creates a RedisStore with a pre-configured client.
// This is useful for testing with miniredis.
func NewRedisStoreWithClient(client redis.UniversalClient, keyPrefix string, window time.Duration) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		window:    window,
		clock:     clock.RealClock{},
	}
}

func validateRedisConfig(cfg *RedisConfig) error {
	if len(cfg.Addrs) == 0 {
		return errors.New("at least one redis address is required")
	}
	if cfg.KeyPrefix == "" {
		return errors.New("key prefix is required")
	}
	return nil
}

// StoreNonce implements Store using SET NX with a TTL covering the rest of
// the window.
func (s *RedisStore) StoreNonce(ctx context.Context, scope, nonce string, timestamp time.Time) (bool, error) {
	if nonce == "" {
		return false, ErrEmptyNonce
	}

	ttl := timestamp.Add(s.window).Sub(s.clock.Now())
	if ttl <= 0 {
		return false, nil
	}

	stored, err := s.client.SetNX(ctx, s.key(scope, nonce), timestamp.Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store nonce: %w", err)
	}
	return stored, nil
}

// Ping checks Redis connectivity (health check).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// key builds "<prefix>nonce:<len(scope)>:<scope>:<nonce>". The length prefix
// keeps scopes containing ':' from colliding.
func (s *RedisStore) key(scope, nonce string) string {
	return s.keyPrefix + "nonce:" + strconv.Itoa(len(scope)) + ":" + scope + ":" + nonce
}

var _ Store = (*RedisStore)(nil)
