// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/stacklok/toolhive-messaging/bindings"
	"github.com/stacklok/toolhive-messaging/messaging"
	"github.com/stacklok/toolhive-messaging/wire"
)

// IndirectMessage is an indirect message ready to be relayed through the
// user agent, either as a redirect or as an auto-submitting form.
type IndirectMessage struct {
	// Location is the redirect target with the fields in its query.
	// It is nil when FormPost is set.
	Location *url.URL
	// Action is the recipient the form posts to.
	Action *url.URL
	// Fields are the message fields.
	Fields map[string]string
	// FormPost reports whether the message must be delivered as a form post.
	FormPost bool
}

// Write relays the message through the user agent.
func (m *IndirectMessage) Write(w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	if !m.FormPost {
		h.Set("Location", m.Location.String())
		w.WriteHeader(http.StatusFound)
		return nil
	}
	h.Set("Content-Type", "text/html;charset=UTF-8")
	w.WriteHeader(http.StatusOK)
	return renderFormPost(w, m.Action, m.Fields)
}

// Prepare applies the required protections to an outgoing message, validates
// it and returns its wire fields.
func (c *Channel) Prepare(ctx context.Context, msg messaging.Message) (map[string]string, error) {
	fields, err := c.prepare(ctx, msg)
	c.record(ctx, c.sent, "outgoing", messaging.NameOf(msg), msg.Transport(), err)
	return fields, err
}

func (c *Channel) prepare(ctx context.Context, msg messaging.Message) (map[string]string, error) {
	if msg.Incoming() {
		return nil, fmt.Errorf("%w: %s", ErrIncomingMessage, messaging.NameOf(msg))
	}
	if err := c.bindings.Prepare(ctx, msg); err != nil {
		return nil, err
	}
	if err := msg.EnsureValidMessage(); err != nil {
		return nil, err
	}
	return messaging.Fields(msg)
}

// EncodeIndirect prepares an indirect message for relay through the user agent.
func (c *Channel) EncodeIndirect(ctx context.Context, msg messaging.Message) (*IndirectMessage, error) {
	recipient, err := c.recipient(msg, messaging.Indirect)
	if err != nil {
		return nil, err
	}
	if !msg.Incoming() {
		if err := carryRecipientQuery(msg, recipient); err != nil {
			return nil, err
		}
	}
	fields, err := c.Prepare(ctx, msg)
	if err != nil {
		return nil, err
	}

	action := *recipient
	action.RawQuery = ""
	action.ForceQuery = false
	location := wire.AppendQuery(&action, fields)
	if len(location.String()) <= c.maxURLLength {
		return &IndirectMessage{Location: location, Action: &action, Fields: fields}, nil
	}
	if action.Scheme != "https" && action.Scheme != "http" {
		return nil, fmt.Errorf("%w: %d byte URL exceeds %d and %s recipients cannot receive a form post",
			ErrMessageTooLarge, len(location.String()), c.maxURLLength, action.Scheme)
	}
	return &IndirectMessage{Action: &action, Fields: fields, FormPost: true}, nil
}

// EncodeDirect prepares a direct message and renders it as a JSON object.
// Integer fields are emitted as JSON numbers.
func (c *Channel) EncodeDirect(ctx context.Context, msg messaging.Message) ([]byte, error) {
	if msg.Transport() != messaging.Direct {
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongTransport, messaging.NameOf(msg), msg.Transport())
	}
	fields, err := c.Prepare(ctx, msg)
	if err != nil {
		return nil, err
	}
	return wire.EncodeJSON(fields, messaging.NumericFields(msg))
}

// NewRequest prepares a direct message and builds the form POST that carries
// it to its recipient.
func (c *Channel) NewRequest(ctx context.Context, msg messaging.Message) (*http.Request, error) {
	recipient, err := c.recipient(msg, messaging.Direct)
	if err != nil {
		return nil, err
	}
	fields, err := c.Prepare(ctx, msg)
	if err != nil {
		return nil, err
	}

	var header string
	if c.headerRealm != nil {
		protection := make(map[string]string)
		for _, k := range protectionParams {
			if v, ok := fields[k]; ok {
				protection[k] = v
			}
		}
		if len(protection) > 0 {
			header, err = wire.FormatAuthorizationHeader(protection, *c.headerRealm)
			if err != nil {
				return nil, err
			}
			fields = maps.Clone(fields)
			for k := range protection {
				delete(fields, k)
			}
		}
	}

	body := strings.NewReader(wire.ToValues(fields).Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, recipient.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Accept", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	return req, nil
}

// carryRecipientQuery moves the query parameters of the recipient URL into
// the message, so every parameter the recipient receives is covered by the
// protections. A parameter fills an empty declared field or becomes an
// extension field; it must not contradict a value the message already has.
func carryRecipientQuery(msg messaging.Message, recipient *url.URL) error {
	query, err := wire.FromValues(recipient.Query())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRecipientQuery, err)
	}
	if len(query) == 0 {
		return nil
	}
	current, err := messaging.Fields(msg)
	if err != nil {
		return err
	}

	declared := messaging.DeclaredFields(msg)
	fill := make(map[string]string)
	for _, k := range slices.Sorted(maps.Keys(query)) {
		v := query[k]
		if slices.Contains(protectionParams, k) {
			return fmt.Errorf("%w: %q is reserved for message protections", ErrRecipientQuery, k)
		}
		if have, ok := current[k]; ok {
			if have != v {
				return fmt.Errorf("%w: %s=%q conflicts with the message value %q", ErrRecipientQuery, k, v, have)
			}
			continue
		}
		if slices.Contains(declared, k) {
			fill[k] = v
			continue
		}
		msg.ExtraData().Set(k, v)
	}
	if len(fill) == 0 {
		return nil
	}
	if err := messaging.Assign(fill, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrRecipientQuery, err)
	}
	return nil
}

var protectionParams = []string{bindings.ParamNonce, bindings.ParamTimestamp, bindings.ParamSignature}

func (*Channel) recipient(msg messaging.Message, transport messaging.Transport) (*url.URL, error) {
	name := messaging.NameOf(msg)
	if msg.Transport() != transport {
		return nil, fmt.Errorf("%w: %s is %s", ErrWrongTransport, name, msg.Transport())
	}
	directed, ok := msg.(messaging.DirectedMessage)
	if !ok || directed.Recipient() == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecipient, name)
	}
	return directed.Recipient(), nil
}
