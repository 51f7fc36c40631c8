// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/stacklok/toolhive-messaging/messaging"
)

// Factory returns a fresh, outgoing instance of a message type.
type Factory func() messaging.Message

// Entry describes a message type to the registry.
type Entry struct {
	// Name identifies the message type, e.g. "token_request".
	Name string
	// Rule is a boolean CEL expression over the fields variable.
	Rule string
	// New constructs an empty instance.
	New Factory
}

// Info describes a registered message type.
type Info struct {
	Name        string
	Rule        string
	Transport   messaging.Transport
	Version     messaging.Version
	Protections messaging.Protections
}

type registered struct {
	Info
	rule    *Rule
	factory Factory
}

// Registry maps received fields to message types.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  []*registered
	byName   map[string]*registered
	compiler *compiler
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxRuleLength sets the longest accepted rule.
func WithMaxRuleLength(n int) Option {
	return func(r *Registry) {
		r.compiler.maxLength = n
	}
}

// WithCostLimit sets the runtime cost limit of a rule evaluation.
func WithCostLimit(limit uint64) Option {
	return func(r *Registry) {
		r.compiler.costLimit = limit
	}
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName: make(map[string]*registered),
		compiler: &compiler{
			maxLength: DefaultMaxRuleLength,
			costLimit: DefaultCostLimit,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a message type. Entries are tried in registration order.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}
	if e.New == nil {
		return fmt.Errorf("%w: %s: factory is required", ErrInvalidEntry, e.Name)
	}
	probe := e.New()
	if probe == nil {
		return fmt.Errorf("%w: %s: factory returned nil", ErrInvalidEntry, e.Name)
	}
	if !probe.Transport().Valid() {
		return fmt.Errorf("%w: %s: invalid transport %s", ErrInvalidEntry, e.Name, probe.Transport())
	}
	if !probe.RequiredProtection().Valid() {
		return fmt.Errorf("%w: %s: unknown protections %s", ErrInvalidEntry, e.Name, probe.RequiredProtection())
	}
	if probe.Incoming() {
		return fmt.Errorf("%w: %s: factory must return a fresh outgoing instance", ErrInvalidEntry, e.Name)
	}

	rule, err := r.compiler.Compile(e.Rule)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEntry, e.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byName[e.Name]; dup {
		return fmt.Errorf("%w: %s: already registered", ErrInvalidEntry, e.Name)
	}
	reg := &registered{
		Info: Info{
			Name:        e.Name,
			Rule:        e.Rule,
			Transport:   probe.Transport(),
			Version:     probe.ProtocolVersion(),
			Protections: probe.RequiredProtection(),
		},
		rule:    rule,
		factory: e.New,
	}
	r.entries = append(r.entries, reg)
	r.byName[e.Name] = reg
	return nil
}

// MustRegister registers entries and panics on the first error.
func (r *Registry) MustRegister(entries ...Entry) {
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
}

// Resolve returns a fresh instance of the first message type matching fields
// and the arrival transport, together with its registered name. The returned
// message is not populated; pass it to messaging.Decode.
func (r *Registry) Resolve(fields map[string]string, transport messaging.Transport) (messaging.Message, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var evalErrs []error
	for _, e := range r.entries {
		if e.Transport != transport {
			continue
		}
		ok, err := e.rule.Match(fields)
		if err != nil {
			evalErrs = append(evalErrs, err)
			continue
		}
		if ok {
			return e.factory(), e.Name, nil
		}
	}

	cause := fmt.Errorf("%w: no message type matches the %s fields", ErrUnrecognizedMessage, transport)
	if len(evalErrs) > 0 {
		cause = errors.Join(append([]error{cause}, evalErrs...)...)
	}
	return nil, "", messaging.WrapInvalid("", "", cause)
}

// New returns a fresh instance of the named message type.
func (r *Registry) New(name string) (messaging.Message, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return e.factory(), true
}

// Entries lists the registered message types in registration order.
func (r *Registry) Entries() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Info
	}
	return out
}
