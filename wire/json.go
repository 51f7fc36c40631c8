// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ParseJSON flattens a JSON object into fields. Strings are taken verbatim,
// numbers keep their literal text, booleans become "true"/"false", nulls are
// dropped and nested objects or arrays are kept as raw JSON.
func ParseJSON(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedJSON)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top-level value must be an object", ErrMalformedJSON)
	}

	fields := make(map[string]string)
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		if _, dup := fields[key.Str]; dup {
			err = fmt.Errorf("%w: %q", ErrRepeatedParameter, key.Str)
			return false
		}
		switch value.Type {
		case gjson.Null:
			return true
		case gjson.String:
			fields[key.Str] = value.Str
		case gjson.True, gjson.False:
			fields[key.Str] = strconv.FormatBool(value.Bool())
		default:
			fields[key.Str] = value.Raw
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// EncodeJSON renders fields as a JSON object with keys in sorted order.
// Fields named in numeric are emitted as JSON numbers when their value is an
// integer; everything else is a JSON string.
func EncodeJSON(fields map[string]string, numeric []string) ([]byte, error) {
	om := orderedmap.New[string, any]()
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		v := fields[k]
		if slices.Contains(numeric, k) {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				om.Set(k, n)
				continue
			}
		}
		om.Set(k, v)
	}
	data, err := json.Marshal(om)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}
