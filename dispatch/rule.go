// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// FieldsVariable is the CEL variable holding the received wire fields.
const FieldsVariable = "fields"

const (
	// DefaultMaxRuleLength is the longest rule accepted at registration.
	DefaultMaxRuleLength = 4096

	// DefaultCostLimit bounds the runtime cost of a single rule evaluation.
	// Rules run against untrusted input.
	DefaultCostLimit = 100000
)

// Rule is a compiled dispatch rule.
type Rule struct {
	source  string
	program cel.Program
}

// Source returns the rule expression.
func (r *Rule) Source() string {
	return r.source
}

// Match evaluates the rule against fields.
func (r *Rule) Match(fields map[string]string) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{FieldsVariable: fields})
	if err != nil {
		return false, fmt.Errorf("%w: %q: %s", ErrEvaluation, r.source, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q: expected bool, got %T", ErrEvaluation, r.source, out.Value())
	}
	return b, nil
}

// compiler builds Rules in a lazily created CEL environment shared by all
// rules of a Registry.
type compiler struct {
	once      sync.Once
	env       *cel.Env
	envErr    error
	maxLength int
	costLimit uint64
}

func (c *compiler) environment() (*cel.Env, error) {
	c.once.Do(func() {
		c.env, c.envErr = cel.NewEnv(
			cel.Variable(FieldsVariable, cel.MapType(cel.StringType, cel.StringType)),
		)
	})
	return c.env, c.envErr
}

// Compile parses, type checks and plans a rule. The rule must be boolean.
func (c *compiler) Compile(expr string) (*Rule, error) {
	if len(expr) > c.maxLength {
		return nil, &RuleError{
			Kind:     RuleErrorLength,
			Source:   expr[:min(len(expr), 64)],
			original: fmt.Errorf("rule length %d exceeds maximum of %d", len(expr), c.maxLength),
		}
	}

	env, err := c.environment()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	parsed, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, newIssuesError(RuleErrorParse, expr, issues)
	}
	checked, issues := env.Check(parsed)
	if issues.Err() != nil {
		return nil, newIssuesError(RuleErrorCheck, expr, issues)
	}
	if !checked.OutputType().IsExactType(cel.BoolType) {
		return nil, &RuleError{
			Kind:     RuleErrorType,
			Source:   expr,
			original: fmt.Errorf("rule must evaluate to bool, got %s", checked.OutputType()),
		}
	}

	program, err := env.Program(checked, cel.CostLimit(c.costLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program for %q: %w", expr, err)
	}
	return &Rule{source: expr, program: program}, nil
}
