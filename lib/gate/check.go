// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"fmt"
	"strings"

	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/redact"
)

// runCheck evaluates a structural check gate in-process against the
// loaded bundle. Structural checks never shell out and never mutate
// the bundle.
func runCheck(g Gate, target *Target) (Verdict, string) {
	switch g.Check {
	case CheckChecksum:
		return checkChecksum(target)
	case CheckRedactionRecord:
		return checkRedactionRecord(target)
	case CheckArtifactsPresent:
		return checkArtifactsPresent(g.Files, target)
	default:
		return VerdictFail, fmt.Sprintf("unknown structural check %q", g.Check)
	}
}

// checkChecksum verifies the bundle's checksum manifest against the
// artifacts' current bytes. Every mismatch is named individually,
// never collapsed into a bare failure.
func checkChecksum(target *Target) (Verdict, string) {
	manifest, ok := target.Bundle.Lookup(bundle.ChecksumsName)
	if !ok {
		return VerdictFail, fmt.Sprintf("%s not present in bundle", bundle.ChecksumsName)
	}
	if manifest.ReadErr != nil {
		return VerdictFail, fmt.Sprintf("%s: unreadable: %v", bundle.ChecksumsName, manifest.ReadErr)
	}

	parsed, err := checksum.Parse(manifest.Data, target.Algorithm)
	if err != nil {
		return VerdictFail, fmt.Sprintf("%s: %v", bundle.ChecksumsName, err)
	}

	mismatches := parsed.Verify(target.Bundle, target.Uncovered...)
	if len(mismatches) > 0 {
		descriptions := make([]string, len(mismatches))
		for i, m := range mismatches {
			descriptions[i] = m.String()
		}
		return VerdictFail, strings.Join(descriptions, "; ")
	}

	return VerdictPass, fmt.Sprintf("%d artifacts verified", len(parsed.Entries))
}

// checkRedactionRecord verifies the bundle's redaction record when one
// exists. A bundle without a record passes: redaction is optional, the
// record is only mandatory once redaction has been applied.
func checkRedactionRecord(target *Target) (Verdict, string) {
	record, ok := target.Bundle.Lookup(bundle.RedactionRecordName)
	if !ok {
		return VerdictPass, "no redaction record"
	}
	if record.ReadErr != nil {
		return VerdictFail, fmt.Sprintf("%s: unreadable: %v", bundle.RedactionRecordName, record.ReadErr)
	}

	parsed, err := redact.ParseRecord(record.Data)
	if err != nil {
		return VerdictFail, err.Error()
	}
	for _, name := range parsed.FilesRedacted {
		if _, exists := target.Bundle.Lookup(name); !exists {
			return VerdictFail, fmt.Sprintf("redaction record names absent artifact %q", name)
		}
	}

	return VerdictPass, fmt.Sprintf("mode %s, %d files redacted", parsed.Mode, len(parsed.FilesRedacted))
}

// checkArtifactsPresent verifies that every required artifact exists
// and is readable.
func checkArtifactsPresent(files []string, target *Target) (Verdict, string) {
	var problems []string
	for _, name := range files {
		a, ok := target.Bundle.Lookup(name)
		switch {
		case !ok:
			problems = append(problems, name+": missing")
		case a.ReadErr != nil:
			problems = append(problems, fmt.Sprintf("%s: unreadable: %v", name, a.ReadErr))
		}
	}
	if len(problems) > 0 {
		return VerdictFail, strings.Join(problems, "; ")
	}
	return VerdictPass, fmt.Sprintf("%d artifacts present", len(files))
}
