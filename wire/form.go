// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"net/url"
)

// FromValues flattens query or form parameters. A parameter sent more than
// once is rejected (RFC 6749 Section 3.1).
func FromValues(values url.Values) (map[string]string, error) {
	fields := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 1 {
			return nil, fmt.Errorf("%w: %q", ErrRepeatedParameter, k)
		}
		if len(vs) == 1 {
			fields[k] = vs[0]
		}
	}
	return fields, nil
}

// ToValues converts fields to url.Values.
func ToValues(fields map[string]string) url.Values {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		values.Set(k, v)
	}
	return values
}

// AppendQuery returns base with fields added to its query string. Existing
// query parameters are kept; a field with the same name replaces them.
func AppendQuery(base *url.URL, fields map[string]string) *url.URL {
	u := *base
	q := u.Query()
	for k, v := range fields {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return &u
}
