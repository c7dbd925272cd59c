// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"fmt"
	"strings"
)

// Entry is one manifest line: the digest of a named artifact.
type Entry struct {
	Name   string
	Digest [32]byte
}

// Manifest is the parsed checksum manifest for a bundle. Entries keep
// the order they were computed or parsed in; Compute always emits
// lexicographic name order.
type Manifest struct {
	Algorithm Algorithm
	Entries   []Entry
}

// Lookup returns the entry for the given artifact name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Format renders the manifest in sha256sum line format:
//
//	<64 hex chars><two spaces><artifact name><newline>
//
// The algorithm is not recorded in the file; it is configuration.
func (m *Manifest) Format() []byte {
	var b strings.Builder
	for _, e := range m.Entries {
		b.WriteString(FormatDigest(e.Digest))
		b.WriteString("  ")
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Parse reads a manifest in sha256sum line format. Blank lines are
// skipped and CRLF line endings are tolerated; the " *" binary marker
// coreutils emits is accepted as a separator. Duplicate artifact names
// are rejected.
func Parse(data []byte, algorithm Algorithm) (*Manifest, error) {
	m := &Manifest{Algorithm: algorithm}
	seen := make(map[string]bool)

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		// 64 hex characters, a two-character separator, and at least
		// one character of name.
		if len(line) < 67 {
			return nil, fmt.Errorf("manifest line %d: too short for a digest entry", i+1)
		}
		digest, err := ParseDigest(line[:64])
		if err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", i+1, err)
		}
		if sep := line[64:66]; sep != "  " && sep != " *" {
			return nil, fmt.Errorf("manifest line %d: malformed separator %q", i+1, sep)
		}
		name := line[66:]
		if seen[name] {
			return nil, fmt.Errorf("manifest line %d: duplicate entry for %q", i+1, name)
		}
		seen[name] = true
		m.Entries = append(m.Entries, Entry{Name: name, Digest: digest})
	}

	return m, nil
}
