// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/stacklok/toolhive-messaging/httperr"
	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/wire"
)

// SchemaValidated is implemented by message types whose JSON bodies are
// checked against a JSON schema before decoding.
type SchemaValidated interface {
	JSONSchema() *wire.Schema
}

// Receive turns wire fields that arrived over transport into a verified
// message: the type is resolved from the registry, the fields are decoded and
// validated, and finally every required protection is verified.
func (c *Channel) Receive(ctx context.Context, fields map[string]string, transport messaging.Transport) (messaging.Message, error) {
	msg, name, err := c.registry.Resolve(fields, transport)
	if err != nil {
		c.record(ctx, c.received, "incoming", "", transport, err)
		return nil, err
	}
	err = c.accept(ctx, fields, msg)
	c.record(ctx, c.received, "incoming", name, transport, err)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Channel) accept(ctx context.Context, fields map[string]string, msg messaging.Message) error {
	if err := messaging.Decode(fields, msg); err != nil {
		return err
	}
	return c.bindings.Verify(ctx, msg)
}

// ReadRequest receives the message carried by r. The query of a GET request
// is an indirect message. The form body of a POST request, together with the
// parameters of an "Authorization: OAuth" header, is a direct message; a
// headerless POST no direct type recognizes is tried as an indirect form post.
func (c *Channel) ReadRequest(ctx context.Context, r *http.Request) (messaging.Message, error) {
	switch r.Method {
	case http.MethodGet:
		fields, err := parseQuery(r.URL.RawQuery)
		if err != nil {
			return nil, err
		}
		return c.Receive(ctx, fields, messaging.Indirect)
	case http.MethodPost:
		return c.readPost(ctx, r)
	default:
		return nil, methodNotAllowed(r.Method)
	}
}

func (c *Channel) readPost(ctx context.Context, r *http.Request) (messaging.Message, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != formContentType {
		return nil, unsupportedMediaType(r.Header.Get("Content-Type"))
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, tooLarge(c.maxBodySize)
	}
	fields, err := parseQuery(string(body))
	if err != nil {
		return nil, err
	}

	auth := r.Header.Get("Authorization")
	if !hasOAuthScheme(auth) {
		transport := messaging.Direct
		if _, _, err := c.registry.Resolve(fields, messaging.Direct); err != nil {
			if _, _, err := c.registry.Resolve(fields, messaging.Indirect); err == nil {
				transport = messaging.Indirect
			}
		}
		return c.Receive(ctx, fields, transport)
	}

	params, _, err := wire.ParseAuthorizationHeader(auth)
	if err != nil {
		return nil, messaging.WrapInvalid("", "", err)
	}
	for k, v := range params {
		if _, dup := fields[k]; dup {
			return nil, messaging.WrapInvalid("", k, fmt.Errorf("%w: %q in both header and body", wire.ErrRepeatedParameter, k))
		}
		fields[k] = v
	}
	return c.Receive(ctx, fields, messaging.Direct)
}

// ReadJSON receives a direct message from a JSON object, such as a token
// endpoint response body. Types implementing SchemaValidated are checked
// against their schema first.
func (c *Channel) ReadJSON(ctx context.Context, data []byte) (messaging.Message, error) {
	fields, err := wire.ParseJSON(data)
	if err != nil {
		err = messaging.WrapInvalid("", "", err)
		c.record(ctx, c.received, "incoming", "", messaging.Direct, err)
		return nil, err
	}

	msg, name, err := c.registry.Resolve(fields, messaging.Direct)
	if err != nil {
		c.record(ctx, c.received, "incoming", "", messaging.Direct, err)
		return nil, err
	}
	if sv, ok := msg.(SchemaValidated); ok {
		if err := sv.JSONSchema().Validate(data); err != nil {
			err = messaging.WrapInvalid(name, "", err)
			c.record(ctx, c.received, "incoming", name, messaging.Direct, err)
			return nil, err
		}
	}
	err = c.accept(ctx, fields, msg)
	c.record(ctx, c.received, "incoming", name, messaging.Direct, err)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ReadResponse receives the direct message in a JSON response body. The body
// is consumed but not closed.
func (c *Channel) ReadResponse(ctx context.Context, resp *http.Response) (messaging.Message, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.maxBodySize {
		return nil, tooLarge(c.maxBodySize)
	}
	return c.ReadJSON(ctx, data)
}

func parseQuery(raw string) (map[string]string, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, messaging.WrapInvalid("", "", fmt.Errorf("malformed parameters: %w", err))
	}
	fields, err := wire.FromValues(values)
	if err != nil {
		return nil, messaging.WrapInvalid("", "", err)
	}
	return fields, nil
}

func hasOAuthScheme(header string) bool {
	scheme, _, _ := strings.Cut(strings.TrimSpace(header), " ")
	return strings.EqualFold(scheme, wire.AuthScheme)
}

func tooLarge(limit int64) error {
	return messaging.WrapInvalid("", "", fmt.Errorf("body exceeds %d bytes", limit))
}

func methodNotAllowed(method string) error {
	return httperr.WithCode(fmt.Errorf("%w: %s", ErrMethodNotAllowed, method), http.StatusMethodNotAllowed)
}

func unsupportedMediaType(contentType string) error {
	return httperr.WithCode(fmt.Errorf("%w: %q", ErrUnsupportedMediaType, contentType), http.StatusUnsupportedMediaType)
}
