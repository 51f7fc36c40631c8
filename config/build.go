// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/nonce"
)

// Enforcement is the binding stack built from a configuration together with
// the nonce store behind its replay element.
type Enforcement struct {
	Stack *bindings.Stack
	Store nonce.Store

	closeFn func() error
}

// Close releases the nonce store connection, if any.
func (e *Enforcement) Close() error {
	if e.closeFn == nil {
		return nil
	}
	return e.closeFn()
}

// BuildBindings builds the binding stack: an expiration element, a replay
// element over the configured nonce store and, when a key is configured, a
// signing element. Nonces are remembered for the expiration window so a
// message cannot outlive its nonce record.
func (c *Config) BuildBindings(ctx context.Context) (*Enforcement, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	window := c.Bindings.MaxAge + c.Bindings.MaxClockSkew
	enf := &Enforcement{}
	switch c.Nonce.Backend {
	case BackendRedis:
		store, err := nonce.NewRedisStore(ctx, c.Nonce.Redis.storeConfig(window))
		if err != nil {
			return nil, err
		}
		enf.Store = store
		enf.closeFn = store.Close
	default:
		enf.Store = nonce.NewMemoryStore(window)
	}

	elements := []bindings.Element{
		bindings.NewExpirationElement(
			bindings.WithMaxAge(c.Bindings.MaxAge),
			bindings.WithMaxClockSkew(c.Bindings.MaxClockSkew),
		),
		bindings.NewReplayElement(enf.Store),
	}
	signing, err := c.signingElement()
	if err != nil {
		_ = enf.Close()
		return nil, err
	}
	if signing != nil {
		elements = append(elements, signing)
	}

	enf.Stack, err = bindings.NewStack(elements...)
	if err != nil {
		_ = enf.Close()
		return nil, err
	}
	return enf, nil
}

func (c *Config) signingElement() (*bindings.SigningElement, error) {
	b := c.Bindings
	switch {
	case b.HMACSecret != "":
		return bindings.NewHMACSigningElement([]byte(b.HMACSecret))
	case b.SigningKeyFile != "":
		key, err := bindings.LoadSigningKey(b.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("bindings.signing_key_file: %w", err)
		}
		return bindings.NewKeySigningElement(key)
	case b.VerificationKeyFile != "":
		pub, err := bindings.LoadVerificationKey(b.VerificationKeyFile)
		if err != nil {
			return nil, fmt.Errorf("bindings.verification_key_file: %w", err)
		}
		return bindings.NewVerifyingElement(pub)
	default:
		return nil, nil
	}
}
