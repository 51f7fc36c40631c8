// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a compiled JSON Schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. name is used in errors.
func CompileSchema(name string, data []byte) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for schemas embedded in the binary.
func MustCompileSchema(name string, data []byte) *Schema {
	s, err := CompileSchema(name, data)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks doc against the schema. A mismatch is reported as a
// *SchemaError.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &SchemaError{Schema: s.name, Problems: problems}
}

// ValidateSchema compiles schema and checks doc against it.
func ValidateSchema(doc, schema []byte) error {
	s, err := CompileSchema("inline", schema)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

// SchemaError lists the ways a document violates a schema.
type SchemaError struct {
	Schema   string
	Problems []string
}

func (e *SchemaError) Error() string {
	prefix := fmt.Sprintf("%s schema validation failed", e.Schema)
	if len(e.Problems) == 1 {
		return prefix + ": " + e.Problems[0]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s with %d errors:", prefix, len(e.Problems))
	for i, p := range e.Problems {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, p)
	}
	return b.String()
}

// Unwrap returns ErrSchemaViolation.
func (*SchemaError) Unwrap() error {
	return ErrSchemaViolation
}
