// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle models a release bundle: a directory of named
// artifacts plus the verification files relgate maintains alongside
// them (checksum manifest, redaction record).
//
// A Set holds the artifacts in lexicographic name order, and that
// order is canonical: checksum manifests, redaction walks, and report
// rows all follow it, so outputs are byte-stable for a given bundle.
// Artifact names are forward-slash relative paths and serve as
// identity; redaction may change an artifact's bytes but never its
// name.
package bundle
