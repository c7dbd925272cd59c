// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders the outcome of a verification run.
//
// A single Report value backs everything the run emits: the
// machine-readable verification-report.json, the human-readable
// summary, and the process exit status. The report is built once from
// the gate results and never mutated afterwards.
//
// Each report ships with a receipt: a keyed BLAKE3 digest over the
// report's deterministic CBOR encoding. Anyone holding the bundle can
// recompute the digest and detect a report edited after the fact.
package report
