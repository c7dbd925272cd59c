// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gatedef

import (
	"fmt"
	"regexp"
	"time"

	"github.com/relgate-io/relgate/lib/gate"
)

// gateIDPattern matches valid gate IDs: lowercase kebab-case, starting
// with a letter or digit. Gate IDs appear in reports and environment
// variables, so they stay shell- and JSON-friendly.
var gateIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks a File for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the file is
// valid.
//
// Structural checks include:
//   - schemaVersion must be the current version
//   - At least one gate is required
//   - Each gate must have a unique kebab-case ID
//   - Each gate must set exactly one of run or check
//   - check must name a known structural check
//   - softRequired is only valid on required gates
//   - files is required by the artifacts-present check and invalid
//     elsewhere
//   - Timeout (when present) is only valid on run gates and must be a
//     positive time.ParseDuration value
func Validate(file *File) []string {
	var issues []string

	if file.SchemaVersion != SchemaVersion {
		issues = append(issues, fmt.Sprintf(
			"schemaVersion is %d, want %d", file.SchemaVersion, SchemaVersion))
	}
	if len(file.Gates) == 0 {
		issues = append(issues, "gates file has no gates (at least one gate is required)")
	}

	// Gate IDs must be unique: reports and logs key on them.
	gateIDs := make(map[string]int, len(file.Gates))
	for index, g := range file.Gates {
		if g.ID == "" {
			continue
		}
		if firstIndex, exists := gateIDs[g.ID]; exists {
			issues = append(issues, fmt.Sprintf(
				"gates[%d] %q: duplicate gate ID (first used at gates[%d])",
				index, g.ID, firstIndex))
		} else {
			gateIDs[g.ID] = index
		}
	}

	for index, g := range file.Gates {
		prefix := fmt.Sprintf("gates[%d]", index)
		issues = append(issues, validateGate(g, prefix)...)
	}

	return issues
}

// validateGate checks a single gate for structural issues. The prefix
// identifies the gate's position for error messages.
func validateGate(g gate.Gate, prefix string) []string {
	var issues []string

	if g.ID == "" {
		issues = append(issues, fmt.Sprintf("%s: id is required", prefix))
	} else {
		prefix = fmt.Sprintf("%s %q", prefix, g.ID)
		if !gateIDPattern.MatchString(g.ID) {
			issues = append(issues, fmt.Sprintf(
				"%s: id must be lowercase kebab-case ([a-z0-9][a-z0-9-]*)", prefix))
		}
	}

	hasRun := g.Run != ""
	hasCheck := g.Check != ""

	switch {
	case hasRun && hasCheck:
		issues = append(issues, fmt.Sprintf("%s: run and check are mutually exclusive (set exactly one)", prefix))
	case !hasRun && !hasCheck:
		issues = append(issues, fmt.Sprintf("%s: must set exactly one of run or check", prefix))
	}

	if hasCheck && !g.Check.Known() {
		issues = append(issues, fmt.Sprintf(
			"%s: unknown check %q (want %q, %q, or %q)",
			prefix, g.Check, gate.CheckChecksum, gate.CheckRedactionRecord, gate.CheckArtifactsPresent))
	}

	// softRequired narrows Required to soft mode; without Required
	// there is nothing to narrow.
	if g.SoftRequired && !g.Required {
		issues = append(issues, fmt.Sprintf("%s: softRequired is only valid on required gates", prefix))
	}

	// Files belong to the artifacts-present check and nothing else.
	if g.Check == gate.CheckArtifactsPresent {
		if len(g.Files) == 0 {
			issues = append(issues, fmt.Sprintf("%s: files is required for the artifacts-present check", prefix))
		}
		for i, name := range g.Files {
			if name == "" {
				issues = append(issues, fmt.Sprintf("%s: files[%d] is empty", prefix, i))
			}
		}
	} else if len(g.Files) > 0 {
		issues = append(issues, fmt.Sprintf("%s: files is only valid with the artifacts-present check", prefix))
	}

	// Timeout must be parseable and positive when present.
	if g.Timeout != "" {
		if !hasRun {
			issues = append(issues, fmt.Sprintf("%s: timeout is only valid on run gates", prefix))
		}
		parsed, err := time.ParseDuration(g.Timeout)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: invalid timeout %q: %v", prefix, g.Timeout, err))
		} else if parsed <= 0 {
			issues = append(issues, fmt.Sprintf("%s: timeout %q must be positive", prefix, g.Timeout))
		}
	}

	return issues
}
