// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/relgate-io/relgate/lib/bundle"
)

// PlaceholderGeneric is the default masked value.
const PlaceholderGeneric = "<redacted>"

// Rule masks one field. The path addresses a field inside structured
// artifacts using dot segments with optional bracket indexes, e.g.
// "run.url" or "jobs[2].steps[0].run". A field absent from a given
// artifact is skipped silently; absence is not an error.
type Rule struct {
	// Path locates the field to mask.
	Path string `yaml:"path" json:"path"`

	// Replacement, when non-empty, overrides the mode's placeholder
	// for this rule.
	Replacement string `yaml:"replacement,omitempty" json:"replacement,omitempty"`
}

// Mode is a named set of redaction rules. The builtin modes are
// "none" (empty rule set) and "safe-share"; configuration may define
// further modes.
type Mode struct {
	Name  string
	Rules []Rule

	// FieldQualified switches the default placeholder from
	// "<redacted>" to "<redacted:PATH>", which keeps redacted
	// documents self-describing at the cost of leaking field names.
	FieldQualified bool
}

func (m Mode) placeholderFor(r Rule) string {
	if r.Replacement != "" {
		return r.Replacement
	}
	if m.FieldQualified {
		return "<redacted:" + r.Path + ">"
	}
	return PlaceholderGeneric
}

// Problem records an artifact the redactor scanned but could not
// process. Problems are soft: they never abort the run.
type Problem struct {
	Name   string
	Detail string
}

// Outcome reports what one Apply call did. FilesRedacted enumerates
// exactly the artifact names whose content changed, in canonical
// order; an artifact whose fields were all absent or already masked
// does not appear even though it was scanned.
type Outcome struct {
	FilesRedacted []string
	Problems      []Problem
}

// Apply walks every structured artifact in the set in canonical order
// and masks each rule field that is present. Artifacts are modified in
// place via the set.
//
// Apply is idempotent: a value that already equals its placeholder is
// left alone, so running the same mode twice yields byte-identical
// artifacts and an empty FilesRedacted the second time.
//
// An error is returned only for malformed rule paths; unreadable or
// unparseable artifacts are recorded as Problems and skipped.
func Apply(set *bundle.Set, mode Mode) (*Outcome, error) {
	outcome := &Outcome{}

	for _, a := range set.Artifacts() {
		if !a.Structured() {
			continue
		}
		if a.ReadErr != nil {
			outcome.Problems = append(outcome.Problems, Problem{
				Name:   a.Name,
				Detail: fmt.Sprintf("unreadable: %v", a.ReadErr),
			})
			continue
		}
		if !gjson.ValidBytes(a.Data) {
			outcome.Problems = append(outcome.Problems, Problem{
				Name:   a.Name,
				Detail: "content is not valid JSON",
			})
			continue
		}

		data := a.Data
		changed := false
		for _, rule := range mode.Rules {
			path, err := gjsonPath(rule.Path)
			if err != nil {
				return nil, fmt.Errorf("mode %q: %w", mode.Name, err)
			}
			value := gjson.GetBytes(data, path)
			if !value.Exists() {
				continue
			}
			placeholder := mode.placeholderFor(rule)
			if value.Type == gjson.String && value.String() == placeholder {
				continue
			}
			masked, err := sjson.SetBytes(data, path, placeholder)
			if err != nil {
				return nil, fmt.Errorf("mode %q: applying rule %q: %w", mode.Name, rule.Path, err)
			}
			data = masked
			changed = true
		}

		if changed {
			if err := set.Replace(a.Name, data); err != nil {
				return nil, err
			}
			outcome.FilesRedacted = append(outcome.FilesRedacted, a.Name)
		}
	}

	return outcome, nil
}

// gjsonPath converts a rule path to gjson syntax: bracket indexes
// become dot segments ("jobs[2].name" -> "jobs.2.name").
func gjsonPath(rulePath string) (string, error) {
	if rulePath == "" {
		return "", fmt.Errorf("empty rule path")
	}
	var b strings.Builder
	for i := 0; i < len(rulePath); i++ {
		c := rulePath[i]
		if c != '[' {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(rulePath[i:], ']')
		if end < 0 {
			return "", fmt.Errorf("rule path %q: unclosed bracket", rulePath)
		}
		index := rulePath[i+1 : i+end]
		if index == "" {
			return "", fmt.Errorf("rule path %q: empty index", rulePath)
		}
		for _, d := range index {
			if d < '0' || d > '9' {
				return "", fmt.Errorf("rule path %q: non-numeric index %q", rulePath, index)
			}
		}
		b.WriteByte('.')
		b.WriteString(index)
		i += end
	}
	return strings.TrimPrefix(b.String(), "."), nil
}
