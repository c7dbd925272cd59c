// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum computes and verifies a bundle's checksum manifest.
//
// The manifest (checksums.txt) carries one "<digest>  <name>" line per
// covered artifact in lexicographic name order, line-compatible with
// sha256sum when the algorithm is sha256. Verification compares the
// manifest against the bundle's current bytes and reports every
// mismatch individually; nothing in this package aborts on the first
// bad artifact.
package checksum
