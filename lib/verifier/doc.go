// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package verifier orchestrates one release-bundle verification run.
//
// A run loads the artifact set, optionally applies a redaction mode
// (masking fields, maintaining redaction.json, and recomputing the
// checksum manifest), evaluates the configured gates, and writes the
// verification report and its receipt back to the bundle directory.
//
// Failures split into two kinds. Per-artifact and per-gate problems
// are converted into report entries: a NO-GO names every failing
// required gate and the artifacts involved, and the run still
// completes. Configuration problems and aggregation invariant
// violations escape as errors instead, before or instead of a report,
// so a broken setup can never be mistaken for a verified release.
//
// Redact performs the redaction pass on its own, and LoadGates
// resolves gate definitions on their own, for callers that surface
// those steps directly.
package verifier
