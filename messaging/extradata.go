// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"encoding/json"
	"iter"
	"maps"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ExtraData holds message fields the message type does not statically
// recognize. Keys are unique and iteration follows first-insertion order, so
// re-serialization is deterministic. The zero value is an empty, usable map.
type ExtraData struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewExtraData returns an ExtraData holding the given pairs. Pairs from a Go
// map are inserted in sorted key order.
func NewExtraData(pairs map[string]string) *ExtraData {
	e := &ExtraData{}
	for _, k := range sortedKeys(pairs) {
		e.Set(k, pairs[k])
	}
	return e
}

func (e *ExtraData) init() {
	if e.m == nil {
		e.m = orderedmap.New[string, string]()
	}
}

// Set stores value under key. An existing key is overwritten in place: the
// last value wins and the key keeps its original position.
func (e *ExtraData) Set(key, value string) {
	e.init()
	e.m.Set(key, value)
}

// Get returns the value stored under key.
func (e *ExtraData) Get(key string) (string, bool) {
	if e.m == nil {
		return "", false
	}
	return e.m.Get(key)
}

// Delete removes key and reports whether it was present.
func (e *ExtraData) Delete(key string) bool {
	if e.m == nil {
		return false
	}
	_, ok := e.m.Delete(key)
	return ok
}

// Len returns the number of fields.
func (e *ExtraData) Len() int {
	if e.m == nil {
		return 0
	}
	return e.m.Len()
}

// Keys returns the keys in insertion order.
func (e *ExtraData) Keys() []string {
	keys := make([]string, 0, e.Len())
	for k := range e.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the fields in insertion order.
func (e *ExtraData) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if e.m == nil {
			return
		}
		for pair := e.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Map returns a copy of the fields as a plain map.
func (e *ExtraData) Map() map[string]string {
	out := make(map[string]string, e.Len())
	maps.Insert(out, e.All())
	return out
}

// Clone returns an independent copy preserving order.
func (e *ExtraData) Clone() *ExtraData {
	c := &ExtraData{}
	for k, v := range e.All() {
		c.Set(k, v)
	}
	return c
}

// Equal reports whether both hold the same key/value pairs. Order is ignored.
func (e *ExtraData) Equal(other *ExtraData) bool {
	if e.Len() != other.Len() {
		return false
	}
	for k, v := range e.All() {
		if ov, ok := other.Get(k); !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the fields as a JSON object in insertion order.
func (e *ExtraData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range e.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
