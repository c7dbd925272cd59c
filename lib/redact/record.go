// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package redact

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// RecordSchemaVersion is the current redaction record schema. Bump on
// any incompatible shape change.
const RecordSchemaVersion = 1

// Record is the persisted redaction record (redaction.json). It is
// written only when a mode other than "none" was applied, and is
// immutable once written: re-running the same mode over an already
// redacted bundle changes nothing, so the record is not rewritten.
type Record struct {
	SchemaVersion int       `json:"schemaVersion"`
	Mode          string    `json:"mode"`
	AppliedAt     time.Time `json:"appliedAt"`

	// FilesRedacted names the artifacts whose content the mode
	// actually changed, sorted. Empty (not null) when the mode matched
	// nothing.
	FilesRedacted []string `json:"filesRedacted"`
}

// NewRecord builds a record for one redaction application. The file
// list is copied and sorted.
func NewRecord(mode string, appliedAt time.Time, filesRedacted []string) *Record {
	files := make([]string, len(filesRedacted))
	copy(files, filesRedacted)
	sort.Strings(files)
	return &Record{
		SchemaVersion: RecordSchemaVersion,
		Mode:          mode,
		AppliedAt:     appliedAt,
		FilesRedacted: files,
	}
}

// Validate checks the structural invariants of a record. Used both
// before writing a new record and by the structural gate that inspects
// a bundle's existing record.
func (r *Record) Validate() error {
	if r.SchemaVersion != RecordSchemaVersion {
		return fmt.Errorf("redaction record schema version %d, want %d", r.SchemaVersion, RecordSchemaVersion)
	}
	if r.Mode == "" {
		return fmt.Errorf("redaction record has empty mode")
	}
	if r.Mode == ModeNone {
		return fmt.Errorf("redaction record for mode %q (mode %q never writes a record)", ModeNone, ModeNone)
	}
	if r.AppliedAt.IsZero() {
		return fmt.Errorf("redaction record has zero appliedAt timestamp")
	}
	if !sort.StringsAreSorted(r.FilesRedacted) {
		return fmt.Errorf("redaction record filesRedacted is not sorted")
	}
	for i := 1; i < len(r.FilesRedacted); i++ {
		if r.FilesRedacted[i] == r.FilesRedacted[i-1] {
			return fmt.Errorf("redaction record lists %q twice", r.FilesRedacted[i])
		}
	}
	return nil
}

// Format renders the record as indented JSON with a trailing newline.
func (r *Record) Format() ([]byte, error) {
	if r.FilesRedacted == nil {
		r.FilesRedacted = []string{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding redaction record: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseRecord decodes and validates a persisted redaction record.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding redaction record: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
