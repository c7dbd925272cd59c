// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"fmt"
	"sort"
)

// Set is the collection of artifacts that makes up one release bundle.
// Artifacts are ordered lexicographically by name, and that order is
// the canonical iteration order for every downstream consumer: the
// checksum manifest, the redactor, and the report all walk the set in
// the same sequence, so their outputs are deterministic for a given
// bundle regardless of filesystem enumeration order.
type Set struct {
	dir       string
	artifacts []*Artifact
	byName    map[string]*Artifact
}

// NewSet builds an in-memory set from the given artifacts. Artifacts
// with empty or duplicate names are rejected. The set has no backing
// directory; Save reports an error.
func NewSet(artifacts ...*Artifact) (*Set, error) {
	s := &Set{byName: make(map[string]*Artifact, len(artifacts))}
	for _, a := range artifacts {
		if err := s.put(a); err != nil {
			return nil, err
		}
	}
	s.sortByName()
	return s, nil
}

// Dir returns the bundle directory the set was loaded from, or "" for
// an in-memory set.
func (s *Set) Dir() string { return s.dir }

// Len returns the number of artifacts in the set.
func (s *Set) Len() int { return len(s.artifacts) }

// Lookup returns the artifact with the given name.
func (s *Set) Lookup(name string) (*Artifact, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Names returns the artifact names in canonical (lexicographic) order.
func (s *Set) Names() []string {
	names := make([]string, len(s.artifacts))
	for i, a := range s.artifacts {
		names[i] = a.Name
	}
	return names
}

// Artifacts returns the artifacts in canonical order. The returned
// slice is a copy; the artifacts themselves are shared.
func (s *Set) Artifacts() []*Artifact {
	out := make([]*Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// Replace swaps the content of an existing artifact. The artifact's
// identity (name, path, content type) is unchanged and any prior read
// error is cleared.
func (s *Set) Replace(name string, data []byte) error {
	a, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("bundle: no artifact named %q", name)
	}
	a.Data = data
	a.ReadErr = nil
	return nil
}

// Put inserts a new artifact or replaces an existing one with the same
// name, keeping the canonical order.
func (s *Set) Put(a *Artifact) error {
	if existing, ok := s.byName[a.Name]; ok {
		*existing = *a
		return nil
	}
	if err := s.put(a); err != nil {
		return err
	}
	s.sortByName()
	return nil
}

func (s *Set) put(a *Artifact) error {
	if a.Name == "" {
		return fmt.Errorf("bundle: artifact with empty name")
	}
	if _, dup := s.byName[a.Name]; dup {
		return fmt.Errorf("bundle: duplicate artifact name %q", a.Name)
	}
	if a.ContentType == "" {
		a.ContentType = contentTypeFor(a.Name)
	}
	s.byName[a.Name] = a
	s.artifacts = append(s.artifacts, a)
	return nil
}

func (s *Set) sortByName() {
	sort.Slice(s.artifacts, func(i, j int) bool {
		return s.artifacts[i].Name < s.artifacts[j].Name
	})
}
