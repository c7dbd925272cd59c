// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package redact masks run-identifying fields in structured artifacts
// so a release bundle can be shared outside its originating team.
//
// A Mode names a set of rules; each rule addresses one field by path
// ("run.url", "jobs[2].steps[0].run") and replaces its value with a
// placeholder. Application is idempotent, only JSON artifacts are
// walked, and the Outcome lists exactly the artifacts whose bytes
// changed. Modes other than "none" persist a Record (redaction.json)
// documenting what was masked and when.
package redact
