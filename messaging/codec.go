// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
)

// TagName is the struct tag naming a message field on the wire.
const TagName = "oauth"

// ErrNotDecodable is returned for message types that do not embed Base.
var ErrNotDecodable = errors.New("message type does not embed messaging.Base")

// Fields returns the wire representation of m: every declared field with a
// non-empty value plus every extension field. An extension field whose key
// matches a declared field is rejected with ErrExtraDataConflict.
func Fields(m Message) (map[string]string, error) {
	raw := make(map[string]any)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:              TagName,
		IgnoreUntaggedFields: true,
		Result:               &raw,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create field encoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to encode %s fields: %w", NameOf(m), err)
	}

	out := make(map[string]string, len(raw)+m.ExtraData().Len())
	for k, v := range raw {
		s, err := stringify(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s field %q: %w", NameOf(m), k, err)
		}
		// RFC 6749 Section 3.1: parameters without a value are treated as omitted.
		if s != "" {
			out[k] = s
		}
	}

	declared := DeclaredFields(m)
	for k, v := range m.ExtraData().All() {
		if slices.Contains(declared, k) {
			return nil, fmt.Errorf("%w: %q", ErrExtraDataConflict, k)
		}
		out[k] = v
	}
	return out, nil
}

// Decode populates m from wire fields. Declared fields are converted to their
// Go types, every other field is kept in ExtraData, the message is marked as
// incoming and finally validated with EnsureValidMessage.
//
// m must be a freshly constructed message; decoding twice into the same
// instance fails with ErrAlreadyIncoming.
func Decode(fields map[string]string, m Message) error {
	marker, ok := m.(incomingMarker)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotDecodable, m)
	}
	if m.Incoming() {
		return ErrAlreadyIncoming
	}
	if err := assign(fields, m); err != nil {
		return err
	}
	if err := marker.markIncoming(); err != nil {
		return err
	}
	return m.EnsureValidMessage()
}

// Assign populates an outgoing message from wire fields the way Decode does,
// but leaves it outgoing and does not validate it. It is used to build
// messages from operator input before they are prepared for sending.
func Assign(fields map[string]string, m Message) error {
	if _, ok := m.(incomingMarker); !ok {
		return fmt.Errorf("%w: %T", ErrNotDecodable, m)
	}
	if m.Incoming() {
		return ErrAlreadyIncoming
	}
	return assign(fields, m)
}

func assign(fields map[string]string, m Message) error {
	input := make(map[string]any, len(fields))
	for k, v := range fields {
		input[k] = v
	}

	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:              TagName,
		IgnoreUntaggedFields: true,
		WeaklyTypedInput:     true,
		Metadata:             &md,
		Result:               m,
		DecodeHook:           decimalIntegers,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create field decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return WrapInvalid(NameOf(m), "", err)
	}

	extra := m.ExtraData()
	for _, k := range slices.Sorted(slices.Values(md.Unused)) {
		extra.Set(k, fields[k])
	}
	return nil
}

type declaredField struct {
	name    string
	numeric bool
}

var declaredCache sync.Map // reflect.Type -> []declaredField

// DeclaredFields returns the sorted wire names of the fields m declares,
// including fields of squashed embedded structs.
func DeclaredFields(m Message) []string {
	fields := declaredFields(m)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// NumericFields returns the sorted wire names of declared fields with an
// integer Go type. Encodings that distinguish numbers from strings use it.
func NumericFields(m Message) []string {
	var names []string
	for _, f := range declaredFields(m) {
		if f.numeric {
			names = append(names, f.name)
		}
	}
	return names
}

func declaredFields(m Message) []declaredField {
	t := reflect.TypeOf(m)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := declaredCache.Load(t); ok {
		return cached.([]declaredField)
	}
	fields := collectDeclared(t, nil)
	slices.SortFunc(fields, func(a, b declaredField) int { return strings.Compare(a.name, b.name) })
	declaredCache.Store(t, fields)
	return fields
}

func collectDeclared(t reflect.Type, fields []declaredField) []declaredField {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(TagName)
		if tag == "" || tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if slices.Contains(strings.Split(opts, ","), "squash") {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				fields = collectDeclared(ft, fields)
			}
			continue
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, declaredField{name: name, numeric: isInteger(f.Type.Kind())})
	}
	return fields
}

// decimalIntegers requires string input for integer fields to be a canonical
// base-10 number, so that decoding and re-encoding yield the same text.
func decimalIntegers(from, to reflect.Type, data any) (any, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String || s == "" || !isInteger(to.Kind()) {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, to.Bits())
		if err != nil || strconv.FormatUint(n, 10) != s {
			return nil, fmt.Errorf("%q is not a decimal integer", s)
		}
		return n, nil
	default:
		n, err := strconv.ParseInt(s, 10, to.Bits())
		if err != nil || strconv.FormatInt(n, 10) != s {
			return nil, fmt.Errorf("%q is not a decimal integer", s)
		}
		return n, nil
	}
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func stringify(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if !t {
			return "", nil
		}
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported field type %T", v)
	}
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
