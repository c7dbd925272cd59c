// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package gatedef provides parsing and validation for relgate gates
// files. A gates file is the ordered list of release gates one bundle
// must clear, authored as JSONC (JSON extended with comments and
// trailing commas) so release engineers can annotate why a gate
// exists.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → File
//  2. Validate: structural checks (Run XOR Check, known checks,
//     unique IDs, parseable timeouts)
//  3. hand File.Gates to the gate runner
package gatedef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/relgate-io/relgate/lib/gate"
)

// SchemaVersion is the current gates file schema. Bump on any
// incompatible shape change.
const SchemaVersion = 1

// File is a parsed gates definition file.
type File struct {
	SchemaVersion int         `json:"schemaVersion"`
	Gates         []gate.Gate `json:"gates"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a File.
func Parse(data []byte) (*File, error) {
	stripped := jsonc.ToJSON(data)

	var file File
	if err := json.Unmarshal(stripped, &file); err != nil {
		return nil, fmt.Errorf("parsing gates file: %w", err)
	}

	return &file, nil
}

// ReadFile reads a JSONC gates file from disk and parses it. Returns a
// descriptive error if the file cannot be read or the JSON is
// malformed.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	file, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return file, nil
}

// Default returns the gates evaluated when no gates file is
// configured: the structural checks every bundle can satisfy without
// project-specific scripts.
func Default() []gate.Gate {
	return []gate.Gate{
		{
			ID:          "checksums",
			Description: "Checksum manifest matches artifact bytes",
			Check:       gate.CheckChecksum,
			Required:    true,
		},
		{
			ID:          "redaction-record",
			Description: "Redaction record is well formed when present",
			Check:       gate.CheckRedactionRecord,
			Required:    true,
		},
	}
}
