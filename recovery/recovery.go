// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/stacklok/toolhive-messaging/httperr"
	"github.com/stacklok/toolhive-messaging/logging"
)

// ErrPanic is reported to clients of a handler that panicked.
var ErrPanic = errors.New("handler panicked")

// New returns middleware that recovers from panics, logs the panic value and
// stack trace to logger and answers with an OAuth server_error response.
// http.ErrAbortHandler is re-panicked so the server aborts the response.
func New(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "recovered from panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				httperr.Write(w, httperr.WithCode(ErrPanic, http.StatusInternalServerError))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Middleware recovers from panics without logging them.
func Middleware(next http.Handler) http.Handler {
	return New(logging.Discard())(next)
}
