// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/stacklok/toolhive-messaging/httperr"
	"github.com/stacklok/toolhive-messaging/messaging"
)

// WriteResponse sends msg as an HTTP response. Direct messages are written as
// JSON with the status reported by an HTTPStatus method, or 200. Indirect
// messages are written as a redirect or an auto-submitting form.
func (c *Channel) WriteResponse(ctx context.Context, w http.ResponseWriter, msg messaging.Message) error {
	switch msg.Transport() {
	case messaging.Direct:
		body, err := c.EncodeDirect(ctx, msg)
		if err != nil {
			return err
		}
		status := http.StatusOK
		if sc, ok := msg.(httperr.StatusCoder); ok {
			status = sc.HTTPStatus()
		}
		h := w.Header()
		h.Set("Content-Type", "application/json;charset=UTF-8")
		h.Set("Cache-Control", "no-store")
		h.Set("Pragma", "no-cache")
		w.WriteHeader(status)
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		return nil
	case messaging.Indirect:
		im, err := c.EncodeIndirect(ctx, msg)
		if err != nil {
			return err
		}
		return im.Write(w)
	default:
		return fmt.Errorf("%w: %s", ErrWrongTransport, msg.Transport())
	}
}

// WriteError writes err as an OAuth JSON error response.
func (c *Channel) WriteError(w http.ResponseWriter, err error) {
	status := httperr.Code(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	}
	httperr.Write(w, err)
}
