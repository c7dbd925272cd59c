// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gatedef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relgate-io/relgate/lib/gate"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		file           *File
		expectedIssues int
		wantSubstrings []string
	}{
		{
			name: "valid command gate",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{ID: "unit-tests", Run: "./scripts/run-tests.sh", Required: true, Timeout: "2m"},
				},
			},
			expectedIssues: 0,
		},
		{
			name: "valid structural gates",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{ID: "checksums", Check: gate.CheckChecksum, Required: true},
					{ID: "redaction", Check: gate.CheckRedactionRecord, Required: true},
					{ID: "artifacts", Check: gate.CheckArtifactsPresent, Files: []string{"app.tar"}, Required: true},
				},
			},
			expectedIssues: 0,
		},
		{
			name: "valid mixed tiers",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{ID: "vulnerabilities-resolved", Description: "Security scan is clean", Run: "./scripts/scan.sh", Required: true},
					{ID: "changelog", Description: "Changelog entry present", Run: "test -s CHANGELOG.md"},
				},
			},
			expectedIssues: 0,
		},
		{
			name:           "wrong schema version",
			file:           &File{SchemaVersion: 2, Gates: []gate.Gate{{ID: "a", Run: "true"}}},
			expectedIssues: 1,
			wantSubstrings: []string{"schemaVersion is 2"},
		},
		{
			name:           "no gates",
			file:           &File{SchemaVersion: 1},
			expectedIssues: 1,
			wantSubstrings: []string{"no gates"},
		},
		{
			name: "gate missing id",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{Run: "true"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"id is required"},
		},
		{
			name: "gate id not kebab-case",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "Unit_Tests", Run: "true"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"kebab-case"},
		},
		{
			name: "duplicate gate ids",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{ID: "tests", Run: "true"},
					{ID: "tests", Run: "false"},
				},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"duplicate gate ID", "gates[0]"},
		},
		{
			name: "gate with neither run nor check",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "empty"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"must set exactly one of run or check"},
		},
		{
			name: "gate with both run and check",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "both", Run: "true", Check: gate.CheckChecksum}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"mutually exclusive"},
		},
		{
			name: "soft-required on required gate",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{ID: "checksums", Check: gate.CheckChecksum, Required: true, SoftRequired: true},
				},
			},
			expectedIssues: 0,
		},
		{
			name: "soft-required on informational gate",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "changelog", Run: "test -s CHANGELOG.md", SoftRequired: true}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"softRequired is only valid on required gates"},
		},
		{
			name: "unknown check",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "odd", Check: gate.Check("weird")}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{`unknown check "weird"`},
		},
		{
			name: "artifacts-present without files",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "artifacts", Check: gate.CheckArtifactsPresent}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"files is required"},
		},
		{
			name: "artifacts-present with empty file name",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "artifacts", Check: gate.CheckArtifactsPresent, Files: []string{"app.tar", ""}}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"files[1] is empty"},
		},
		{
			name: "files on command gate",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "tests", Run: "true", Files: []string{"app.tar"}}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"only valid with the artifacts-present check"},
		},
		{
			name: "timeout on structural gate",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "checksums", Check: gate.CheckChecksum, Timeout: "1m"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"timeout is only valid on run gates"},
		},
		{
			name: "unparseable timeout",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "tests", Run: "true", Timeout: "2 minutes"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{`invalid timeout "2 minutes"`},
		},
		{
			name: "negative timeout",
			file: &File{
				SchemaVersion: 1,
				Gates:         []gate.Gate{{ID: "tests", Run: "true", Timeout: "-5s"}},
			},
			expectedIssues: 1,
			wantSubstrings: []string{"must be positive"},
		},
		{
			name: "multiple issues",
			file: &File{
				SchemaVersion: 1,
				Gates: []gate.Gate{
					{Run: "true"},  // missing id
					{ID: "empty"},  // neither run nor check
					{ID: "BadCase", Run: "true", Timeout: "nope"}, // bad id, bad timeout
				},
			},
			expectedIssues: 4,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			issues := Validate(testCase.file)
			if len(issues) != testCase.expectedIssues {
				t.Fatalf("got %d issues, want %d:\n%s", len(issues), testCase.expectedIssues, strings.Join(issues, "\n"))
			}

			for _, substring := range testCase.wantSubstrings {
				found := false
				for _, issue := range issues {
					if strings.Contains(issue, substring) {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected issue containing %q, got:\n%s", substring, strings.Join(issues, "\n"))
				}
			}
		})
	}
}

func TestParseJSONC(t *testing.T) {
	t.Parallel()

	input := `{
	// Release gates for the widget service.
	"schemaVersion": 1,
	"gates": [
		{
			"id": "unit-tests",
			"description": "Unit test suite passes",
			"run": "./scripts/run-tests.sh",
			"required": true,
			"timeout": "2m", // trailing comma below too
		},
		{
			"id": "checksums",
			"check": "checksum",
			"required": true,
		},
	],
}`

	file, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if issues := Validate(file); len(issues) != 0 {
		t.Fatalf("Validate: %v", issues)
	}

	if len(file.Gates) != 2 {
		t.Fatalf("parsed %d gates, want 2", len(file.Gates))
	}
	first := file.Gates[0]
	if first.ID != "unit-tests" || first.Run != "./scripts/run-tests.sh" || !first.Required || first.Timeout != "2m" {
		t.Fatalf("first gate = %+v", first)
	}
	if file.Gates[1].Check != gate.CheckChecksum {
		t.Fatalf("second gate check = %q", file.Gates[1].Check)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte(`{"gates": [`)); err == nil {
		t.Fatal("Parse accepted truncated input")
	}
	if _, err := Parse([]byte(`"just a string"`)); err == nil {
		t.Fatal("Parse accepted a non-object document")
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "gates.jsonc")
	content := `{
	"schemaVersion": 1,
	"gates": [{"id": "tests", "run": "true", "required": true}],
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	file, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(file.Gates) != 1 || file.Gates[0].ID != "tests" {
		t.Fatalf("parsed gates = %+v", file.Gates)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.jsonc")); err == nil {
		t.Fatal("ReadFile accepted a missing path")
	}
}

func TestDefaultGatesAreValid(t *testing.T) {
	t.Parallel()

	file := &File{SchemaVersion: SchemaVersion, Gates: Default()}
	if issues := Validate(file); len(issues) != 0 {
		t.Fatalf("default gates fail validation: %v", issues)
	}

	// The defaults must include the checksum-consistency gate.
	found := false
	for _, g := range file.Gates {
		if g.Check == gate.CheckChecksum && g.Required {
			found = true
		}
	}
	if !found {
		t.Fatal("default gates lack a required checksum check")
	}
}
