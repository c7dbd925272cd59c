// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"path"
	"strings"
)

// Well-known artifact names. These are the files the verifier itself
// reads or writes inside a bundle directory; everything else in the
// directory is release content.
const (
	// ChecksumsName is the checksum manifest: one "<digest>  <name>"
	// line per covered artifact. Regenerated whenever artifact bytes
	// change. Never covers itself.
	ChecksumsName = "checksums.txt"

	// RedactionRecordName is the redaction record, written only when a
	// redaction mode other than "none" was applied. Immutable once
	// written.
	RedactionRecordName = "redaction.json"

	// ReportName is the machine-readable verification report.
	ReportName = "verification-report.json"

	// ReceiptName is the tamper-evidence receipt for the report.
	ReceiptName = "verification-receipt.json"
)

// Artifact is a single named file within a release bundle. The name is
// the artifact's identity: it is unique within the bundle and stable
// across redaction (content may change, identity does not).
type Artifact struct {
	// Name is the forward-slash relative path of the artifact within
	// the bundle directory, e.g. "provenance.json" or "logs/build.log".
	Name string

	// Path is the absolute filesystem path the artifact was loaded
	// from. Empty for artifacts constructed in memory.
	Path string

	// ContentType is a best-effort media type derived from the file
	// extension. It decides which artifacts the redactor treats as
	// structured content.
	ContentType string

	// Data is the artifact's content. Nil when ReadErr is set.
	Data []byte

	// ReadErr records a failure to read the artifact's content. An
	// unreadable artifact stays in the set so that checksum
	// verification can report it individually instead of aborting the
	// whole run.
	ReadErr error
}

// Structured reports whether the artifact holds structured key/value
// content the redactor can walk. Only JSON artifacts qualify.
func (a *Artifact) Structured() bool {
	return a.ContentType == "application/json"
}

// contentTypeFor maps a file extension to a media type. Unknown
// extensions map to application/octet-stream.
func contentTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return "application/json"
	case ".txt", ".log":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".xml":
		return "application/xml"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
