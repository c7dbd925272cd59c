// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"time"
)

// Gate is one release gate. Exactly one of Run or Check is set: Run
// makes the gate an external command invoked against the bundle, Check
// makes it a structural check evaluated in-process.
//
// Gates are evaluated in the order they are configured, and the report
// preserves that order regardless of how execution is scheduled.
type Gate struct {
	// ID names the gate in reports and logs. Unique within a gates
	// file.
	ID string `json:"id"`

	// Description is the human summary shown in reports.
	Description string `json:"description,omitempty"`

	// Run is a shell command for an external-command gate. The command
	// runs with the bundle directory as its working directory and
	// signals pass (exit 0) or fail (nonzero) solely via its exit
	// code; output is captured as result detail, never parsed.
	Run string `json:"run,omitempty"`

	// Check selects a structural check for an in-process gate.
	Check Check `json:"check,omitempty"`

	// Files lists the artifact names the artifacts-present check
	// requires. Only valid with that check.
	Files []string `json:"files,omitempty"`

	// Required marks a hard gate: it must pass for an overall GO.
	// Gates default to informational, recorded in the report but
	// never blocking.
	Required bool `json:"required"`

	// SoftRequired keeps a required gate blocking in soft mode. Soft
	// runs demote every other required gate to informational, so a
	// local pre-flight can pass without the full gate roster. Only
	// valid on required gates.
	SoftRequired bool `json:"softRequired,omitempty"`

	// Timeout bounds an external command's execution, in
	// time.ParseDuration syntax ("90s", "2m"). Empty means the
	// runner's default. Only valid on Run gates.
	Timeout string `json:"timeout,omitempty"`
}

// Check names a structural check evaluated in-process.
type Check string

const (
	// CheckChecksum verifies the bundle's checksum manifest against
	// the artifacts' current bytes.
	CheckChecksum Check = "checksum"

	// CheckRedactionRecord verifies that the bundle's redaction
	// record, when present, is well formed and only names artifacts
	// that exist.
	CheckRedactionRecord Check = "redaction-record"

	// CheckArtifactsPresent verifies that every artifact named in the
	// gate's Files list exists in the bundle and is readable.
	CheckArtifactsPresent Check = "artifacts-present"
)

// Known reports whether c is a recognized structural check.
func (c Check) Known() bool {
	switch c {
	case CheckChecksum, CheckRedactionRecord, CheckArtifactsPresent:
		return true
	}
	return false
}

// Verdict is the outcome of one gate.
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictSkipped Verdict = "skipped"
)

// Fixed detail strings with contractual meaning. Reports and scripts
// match on them, so they are exact values, not message prefixes.
const (
	// DetailTimeout marks an external command that exceeded its
	// execution bound.
	DetailTimeout = "timeout"

	// DetailCancelled marks a gate terminated or never started because
	// the run was cancelled.
	DetailCancelled = "cancelled"
)

// Result is the recorded outcome of one gate. Results are assembled in
// gate configuration order.
type Result struct {
	GateID   string
	Verdict  Verdict
	Detail   string
	Duration time.Duration
}

// Overall is the aggregate verdict of a verification run.
type Overall string

const (
	OverallGo   Overall = "GO"
	OverallNoGo Overall = "NO-GO"
)

// Mode selects which configured gates block the overall verdict.
type Mode string

const (
	// ModeHard blocks on every required gate. The release decision
	// mode.
	ModeHard Mode = "hard"

	// ModeSoft blocks only on gates marked both required and
	// softRequired. Meant for local pre-flight runs where the full
	// roster is too heavy.
	ModeSoft Mode = "soft"
)

// ParseMode parses a verification mode name.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case ModeHard:
		return ModeHard, nil
	case ModeSoft:
		return ModeSoft, nil
	}
	return "", fmt.Errorf("unknown verification mode %q (valid: hard, soft)", name)
}
