// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package gate evaluates release gates against a loaded bundle.
//
// A gate is either an external command (pass/fail by exit code, output
// captured as detail) or a structural check evaluated in-process
// (checksum consistency, redaction record validity, required artifact
// presence). Command gates run on a bounded worker pool with per-gate
// timeouts; every failure mode (nonzero exit, timeout, cancellation,
// start failure) downgrades to a fail result instead of aborting
// evaluation, and results always come back in gate configuration
// order.
//
// Aggregate folds results into the overall GO / NO-GO verdict: GO
// requires every required gate to pass, informational gates never
// block, and any gate/result inconsistency is an invariant violation
// that fails the run outright.
package gate
