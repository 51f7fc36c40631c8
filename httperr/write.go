// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package httperr

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Body is an OAuth error response body.
type Body struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// BodyFor builds the response body for err. Descriptions of server-side
// errors are replaced by the status text.
func BodyFor(err error) Body {
	status := Code(err)
	desc := http.StatusText(status)
	if status < 500 && err != nil {
		desc = err.Error()
	}
	return Body{
		Error:            ProtocolCode(err),
		ErrorDescription: sanitizeDescription(desc),
	}
}

// Write writes err as an OAuth JSON error response.
// 401 responses carry an OAuth WWW-Authenticate challenge.
func Write(w http.ResponseWriter, err error) {
	status := Code(err)
	body := BodyFor(err)

	h := w.Header()
	h.Set("Content-Type", "application/json;charset=UTF-8")
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")
	if status == http.StatusUnauthorized {
		h.Set("WWW-Authenticate", `OAuth error="`+body.Error+`"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sanitizeDescription maps characters RFC 6749 Section 5.2 does not allow in
// error_description to '?'.
func sanitizeDescription(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '?'
		}
		return r
	}, s)
}
