// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bindings

import (
	"context"
	"crypto"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-jose/go-jose/v4"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// MinHMACSecretLength is the shortest shared secret accepted for HS256.
const MinHMACSecretLength = 32

// SigningElement provides TamperProtection with a detached-payload JWS.
// The JWS payload is the SHA-256 digest of the canonical base string.
type SigningElement struct {
	signer    jose.Signer
	verifyKey any
	algs      []jose.SignatureAlgorithm
}

// NewHMACSigningElement signs and verifies with a shared secret using HS256.
func NewHMACSigningElement(secret []byte) (*SigningElement, error) {
	if len(secret) < MinHMACSecretLength {
		return nil, fmt.Errorf("hmac secret must be at least %d bytes, got %d", MinHMACSecretLength, len(secret))
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	return &SigningElement{
		signer:    signer,
		verifyKey: secret,
		algs:      []jose.SignatureAlgorithm{jose.HS256},
	}, nil
}

// NewKeySigningElement signs with an RSA or EC private key. The algorithm is
// derived from the key and the RFC 7638 thumbprint is sent as "kid".
func NewKeySigningElement(key crypto.Signer) (*SigningElement, error) {
	alg, err := DeriveAlgorithm(key.Public())
	if err != nil {
		return nil, err
	}
	kid, err := DeriveKeyID(key.Public())
	if err != nil {
		return nil, err
	}
	signer, err := jose.NewSigner(jose.SigningKey{
		Algorithm: alg,
		Key:       jose.JSONWebKey{Key: key, KeyID: kid, Algorithm: string(alg)},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	return &SigningElement{
		signer:    signer,
		verifyKey: key.Public(),
		algs:      []jose.SignatureAlgorithm{alg},
	}, nil
}

// NewVerifyingElement only verifies signatures made with the private half of
// pub. Prepare fails with ErrSigningKeyUnavailable.
func NewVerifyingElement(pub crypto.PublicKey) (*SigningElement, error) {
	alg, err := DeriveAlgorithm(pub)
	if err != nil {
		return nil, err
	}
	return &SigningElement{
		verifyKey: pub,
		algs:      []jose.SignatureAlgorithm{alg},
	}, nil
}

// Protection implements Element.
func (*SigningElement) Protection() messaging.Protections {
	return messaging.TamperProtection
}

// Prepare signs msg, replacing any previous signature.
func (e *SigningElement) Prepare(_ context.Context, msg messaging.Message) error {
	signed, ok := msg.(Signed)
	if !ok {
		return unsupported(messaging.TamperProtection, msg, "bindings.Signed")
	}
	if e.signer == nil {
		return newProtectionError(messaging.TamperProtection, CodeBindingUnavailable, msg, ErrSigningKeyUnavailable)
	}

	digest, err := baseDigest(msg)
	if err != nil {
		return err
	}
	jws, err := e.signer.Sign(digest)
	if err != nil {
		return fmt.Errorf("failed to sign message: %w", err)
	}
	compact, err := jws.CompactSerialize()
	if err != nil {
		return fmt.Errorf("failed to serialize signature: %w", err)
	}
	signed.SetSignature(compact)
	return nil
}

// Verify checks the signature against the message as received.
func (e *SigningElement) Verify(_ context.Context, msg messaging.Message) error {
	signed, ok := msg.(Signed)
	if !ok {
		return unsupported(messaging.TamperProtection, msg, "bindings.Signed")
	}
	sig := signed.Signature()
	if sig == "" {
		return newProtectionError(messaging.TamperProtection, CodeSignatureMissing, msg, nil)
	}

	jws, err := jose.ParseSigned(sig, e.algs)
	if err != nil {
		return newProtectionError(messaging.TamperProtection, CodeSignatureInvalid, msg, err)
	}
	payload, err := jws.Verify(e.verifyKey)
	if err != nil {
		return newProtectionError(messaging.TamperProtection, CodeSignatureInvalid, msg, err)
	}

	digest, err := baseDigest(msg)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare(payload, digest) != 1 {
		return newProtectionError(messaging.TamperProtection, CodeSignatureInvalid, msg,
			errors.New("signature does not cover message content"))
	}
	return nil
}

// CanonicalBase returns the string a signature covers:
// "<version>&<message type>&<sorted form encoding of every field but the signature>".
func CanonicalBase(msg messaging.Message) (string, error) {
	fields, err := messaging.Fields(msg)
	if err != nil {
		return "", err
	}
	delete(fields, ParamSignature)

	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	return msg.ProtocolVersion().String() + "&" + url.QueryEscape(messaging.NameOf(msg)) + "&" + values.Encode(), nil
}

func baseDigest(msg messaging.Message) ([]byte, error) {
	base, err := CanonicalBase(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to build signature base: %w", err)
	}
	sum := sha256.Sum256([]byte(base))
	return sum[:], nil
}

var _ Element = (*SigningElement)(nil)
