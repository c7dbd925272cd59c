// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"fmt"

	"github.com/relgate-io/relgate/lib/bundle"
)

// Reason classifies one verification mismatch.
type Reason string

const (
	// ReasonDigestMismatch: the artifact's current bytes do not hash
	// to the digest recorded in the manifest.
	ReasonDigestMismatch Reason = "digest-mismatch"

	// ReasonMissingFromBundle: the manifest names an artifact that is
	// not present in the bundle.
	ReasonMissingFromBundle Reason = "missing-from-bundle"

	// ReasonMissingFromManifest: the bundle contains a covered
	// artifact the manifest has no entry for.
	ReasonMissingFromManifest Reason = "missing-from-manifest"

	// ReasonUnreadable: the artifact exists but its content could not
	// be read, so no digest comparison was possible.
	ReasonUnreadable Reason = "unreadable"
)

// Mismatch is one per-artifact verification failure. A verification
// run collects every mismatch rather than stopping at the first, so a
// single damaged artifact never hides the state of the rest.
type Mismatch struct {
	Name   string
	Reason Reason
	Detail string
}

func (m Mismatch) String() string {
	if m.Detail == "" {
		return fmt.Sprintf("%s: %s", m.Name, m.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", m.Name, m.Reason, m.Detail)
}

// Unreadable records an artifact Compute could not hash.
type Unreadable struct {
	Name string
	Err  error
}

// covered reports whether a manifest under the given exclusions covers
// the named artifact. The manifest never covers itself.
func covered(name string, exclude []string) bool {
	if name == bundle.ChecksumsName {
		return false
	}
	for _, e := range exclude {
		if name == e {
			return false
		}
	}
	return true
}

// Compute hashes every covered artifact in the set and returns the
// resulting manifest, in canonical (lexicographic) entry order.
// Artifacts whose content could not be read produce no entry and are
// returned separately; one unreadable artifact does not abort the
// computation.
func Compute(set *bundle.Set, algorithm Algorithm, exclude ...string) (*Manifest, []Unreadable) {
	m := &Manifest{Algorithm: algorithm}
	var unreadable []Unreadable

	for _, a := range set.Artifacts() {
		if !covered(a.Name, exclude) {
			continue
		}
		if a.ReadErr != nil {
			unreadable = append(unreadable, Unreadable{Name: a.Name, Err: a.ReadErr})
			continue
		}
		m.Entries = append(m.Entries, Entry{Name: a.Name, Digest: algorithm.Sum(a.Data)})
	}

	return m, unreadable
}

// Verify compares the manifest against the set's current content and
// returns every mismatch. A nil result means the manifest fully and
// exactly covers the bundle.
//
// Mismatches are ordered deterministically: manifest entries first, in
// manifest order, then covered bundle artifacts absent from the
// manifest, in canonical order.
func (m *Manifest) Verify(set *bundle.Set, exclude ...string) []Mismatch {
	var mismatches []Mismatch

	inManifest := make(map[string]bool, len(m.Entries))
	for _, e := range m.Entries {
		inManifest[e.Name] = true

		a, ok := set.Lookup(e.Name)
		if !ok {
			mismatches = append(mismatches, Mismatch{
				Name:   e.Name,
				Reason: ReasonMissingFromBundle,
			})
			continue
		}
		if a.ReadErr != nil {
			mismatches = append(mismatches, Mismatch{
				Name:   e.Name,
				Reason: ReasonUnreadable,
				Detail: a.ReadErr.Error(),
			})
			continue
		}
		if got := m.Algorithm.Sum(a.Data); got != e.Digest {
			mismatches = append(mismatches, Mismatch{
				Name:   e.Name,
				Reason: ReasonDigestMismatch,
				Detail: fmt.Sprintf("manifest %s, bundle %s", FormatDigest(e.Digest), FormatDigest(got)),
			})
		}
	}

	for _, name := range set.Names() {
		if !covered(name, exclude) || inManifest[name] {
			continue
		}
		mismatches = append(mismatches, Mismatch{
			Name:   name,
			Reason: ReasonMissingFromManifest,
		})
	}

	return mismatches
}
