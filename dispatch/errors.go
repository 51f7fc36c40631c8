// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for dispatch.
var (
	// ErrUnrecognizedMessage is wrapped by the ValidationError returned when no
	// registered message type matches.
	ErrUnrecognizedMessage = errors.New("unrecognized message")

	// ErrInvalidEntry is returned when a registry entry is malformed.
	ErrInvalidEntry = errors.New("invalid registry entry")

	// ErrInvalidRule is matched by every RuleError.
	ErrInvalidRule = errors.New("invalid dispatch rule")

	// ErrEvaluation is returned when a rule fails at evaluation time.
	ErrEvaluation = errors.New("dispatch rule evaluation failed")
)

// RuleErrorKind identifies the stage at which a rule was rejected.
type RuleErrorKind string

// Rule error kinds.
const (
	RuleErrorLength RuleErrorKind = "length"
	RuleErrorParse  RuleErrorKind = "parse"
	RuleErrorCheck  RuleErrorKind = "check"
	RuleErrorType   RuleErrorKind = "type"
)

// RuleIssue is one problem found in a rule.
type RuleIssue struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// RuleError reports a rule that could not be compiled.
type RuleError struct {
	Kind   RuleErrorKind `json:"kind"`
	Source string        `json:"source,omitempty"`
	Issues []RuleIssue   `json:"issues,omitempty"`

	original error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("dispatch rule %s error in %q: %s", e.Kind, e.Source, e.original)
}

// Unwrap exposes ErrInvalidRule and the underlying CEL error.
func (e *RuleError) Unwrap() []error {
	return []error{ErrInvalidRule, e.original}
}

// AsJSON returns the error as a JSON document, for tooling output.
func (e *RuleError) AsJSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err)
	}
	return string(b)
}

func newIssuesError(kind RuleErrorKind, source string, issues *cel.Issues) *RuleError {
	re := &RuleError{
		Kind:     kind,
		Source:   source,
		Issues:   make([]RuleIssue, 0, len(issues.Errors())),
		original: issues.Err(),
	}
	for _, ie := range issues.Errors() {
		re.Issues = append(re.Issues, RuleIssue{
			Line: ie.Location.Line(),
			Col:  ie.Location.Column(),
			Msg:  ie.Message,
		})
	}
	return re
}
