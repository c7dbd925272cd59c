// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/relgate-io/relgate/lib/gate"
)

// SchemaVersion identifies the verification report format. Bump on any
// incompatible change to Report or GateResult.
const SchemaVersion = 1

// GateResult is one gate's row in a report: the recorded verdict plus
// the configuration context a reader needs to interpret it.
type GateResult struct {
	GateID      string       `json:"gateId"`
	Description string       `json:"description,omitempty"`
	Required    bool         `json:"required"`
	Verdict     gate.Verdict `json:"verdict"`
	Detail      string       `json:"detail,omitempty"`
	DurationMS  int64        `json:"durationMs"`
}

// Report is the machine-readable outcome of one verification run.
// Created fresh per run and never mutated after emission; the exit
// status, the report file, and the human summary all derive from the
// same value.
//
// Bundle is the bundle directory's base name, not its path. Reports
// travel with exported bundles, so they must not leak local filesystem
// layout.
type Report struct {
	SchemaVersion int          `json:"schemaVersion"`
	RunID         string       `json:"runId"`
	Bundle        string       `json:"bundle,omitempty"`
	Mode          gate.Mode    `json:"mode"`
	Redaction     string       `json:"redaction"`
	Overall       gate.Overall `json:"overall"`
	Results       []GateResult `json:"gateResults"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

// Options carries the run metadata stamped onto a report.
type Options struct {
	// RunID identifies the run. Empty generates a fresh UUID.
	RunID string

	// Bundle is the bundle directory's base name.
	Bundle string

	// Mode is the verification mode the gates were aggregated under.
	Mode gate.Mode

	// Redaction is the redaction mode applied this run ("none" when
	// redaction was not requested).
	Redaction string

	// GeneratedAt is the report timestamp. Zero means time.Now().
	GeneratedAt time.Time
}

// Build assembles a report from the configured gates and their results.
// Gates must already be adjusted for the verification mode (see
// [gate.ForMode]): the Required column records what actually blocked
// this run. Aggregation invariant violations propagate as errors, never
// as a report.
func Build(gates []gate.Gate, results []gate.Result, opts Options) (*Report, error) {
	overall, err := gate.Aggregate(gates, results)
	if err != nil {
		return nil, err
	}

	rows := make([]GateResult, len(gates))
	for i, g := range gates {
		rows[i] = GateResult{
			GateID:      g.ID,
			Description: g.Description,
			Required:    g.Required,
			Verdict:     results[i].Verdict,
			Detail:      results[i].Detail,
			DurationMS:  results[i].Duration.Milliseconds(),
		}
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	generatedAt := opts.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	return &Report{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		Bundle:        opts.Bundle,
		Mode:          opts.Mode,
		Redaction:     opts.Redaction,
		Overall:       overall,
		Results:       rows,
		GeneratedAt:   generatedAt,
	}, nil
}

// Validate checks a report for structural problems, typically after
// parsing one from disk. Returns nil if the report is well formed.
func (r *Report) Validate() error {
	if r.SchemaVersion != SchemaVersion {
		return fmt.Errorf("report schemaVersion is %d, want %d", r.SchemaVersion, SchemaVersion)
	}
	if r.RunID == "" {
		return fmt.Errorf("report has no runId")
	}
	if r.Overall != gate.OverallGo && r.Overall != gate.OverallNoGo {
		return fmt.Errorf("report overall is %q, want %q or %q", r.Overall, gate.OverallGo, gate.OverallNoGo)
	}
	if r.GeneratedAt.IsZero() {
		return fmt.Errorf("report has no generatedAt timestamp")
	}
	for i, row := range r.Results {
		if row.GateID == "" {
			return fmt.Errorf("gateResults[%d] has no gateId", i)
		}
		switch row.Verdict {
		case gate.VerdictPass, gate.VerdictFail, gate.VerdictSkipped:
		default:
			return fmt.Errorf("gateResults[%d] %q has verdict %q", i, row.GateID, row.Verdict)
		}
	}
	return nil
}

// Format renders the report as indented JSON with a trailing newline,
// the exact bytes written to the report file.
func (r *Report) Format() ([]byte, error) {
	// Ensure an empty gate list encodes as [], not null.
	formatted := *r
	if formatted.Results == nil {
		formatted.Results = []GateResult{}
	}
	data, err := json.MarshalIndent(&formatted, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding verification report: %w", err)
	}
	return append(data, '\n'), nil
}

// Parse reads a report back from its JSON form and validates it.
func Parse(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing verification report: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// WriteSummary renders the human-readable form of the report: one row
// per gate and a closing overall line. Both renderings derive from the
// same Report value, so they cannot disagree.
func (r *Report) WriteSummary(w io.Writer) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "GATE\tVERDICT\tREQUIRED\tDURATION\tDETAIL\n")
	for _, row := range r.Results {
		required := "no"
		if row.Required {
			required = "yes"
		}
		duration := time.Duration(row.DurationMS) * time.Millisecond
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			row.GateID, row.Verdict, required, duration, oneLine(row.Detail))
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\noverall: %s (mode %s, redaction %s, run %s)\n",
		r.Overall, r.Mode, r.Redaction, r.RunID)
	return err
}

// oneLine collapses multi-line gate output so it stays a single
// tabwriter row.
func oneLine(detail string) string {
	return strings.ReplaceAll(detail, "\n", "; ")
}
