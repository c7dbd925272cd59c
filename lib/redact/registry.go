// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"errors"
	"fmt"
	"sort"
)

// Builtin mode names.
const (
	// ModeNone performs no redaction. It has an empty rule set and
	// never produces a redaction record.
	ModeNone = "none"

	// ModeSafeShare masks the fields that tie a bundle to the
	// originating CI run and its operators, so the bundle can be
	// shared outside the release team.
	ModeSafeShare = "safe-share"
)

// ErrUnknownMode is returned when a requested redaction mode is not
// registered. Callers treat it as a configuration error: the run
// aborts before any artifact is modified.
var ErrUnknownMode = errors.New("unknown redaction mode")

// safeShareRules names the run-identifying fields masked by the
// safe-share mode: the CI run coordinates, workflow identity,
// repository identity, the humans involved, and outbound links.
var safeShareRules = []Rule{
	{Path: "run.url"},
	{Path: "run.id"},
	{Path: "run.attempt"},
	{Path: "workflow.name"},
	{Path: "workflow.path"},
	{Path: "repository.url"},
	{Path: "repository.id"},
	{Path: "actor.login"},
	{Path: "actor.id"},
	{Path: "triggeringActor.login"},
	{Path: "compareUrl"},
}

// Registry is the set of redaction modes available to one run: the
// builtins plus any modes defined in configuration.
type Registry struct {
	byName map[string]Mode
}

// NewRegistry returns a registry holding the builtin modes.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Mode)}
	r.byName[ModeNone] = Mode{Name: ModeNone}
	r.byName[ModeSafeShare] = Mode{Name: ModeSafeShare, Rules: safeShareRules}
	return r
}

// Register adds a custom mode. Redefining a builtin or an already
// registered mode is rejected.
func (r *Registry) Register(m Mode) error {
	if m.Name == "" {
		return fmt.Errorf("redaction mode with empty name")
	}
	if _, exists := r.byName[m.Name]; exists {
		return fmt.Errorf("redaction mode %q is already defined", m.Name)
	}
	if len(m.Rules) == 0 {
		return fmt.Errorf("redaction mode %q has no rules", m.Name)
	}
	r.byName[m.Name] = m
	return nil
}

// Lookup resolves a mode name.
func (r *Registry) Lookup(name string) (Mode, error) {
	m, ok := r.byName[name]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return m, nil
}

// Names returns the registered mode names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
