// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides relgate's canonical binary serialization:
// CBOR with Core Deterministic Encoding. Deterministic bytes are the
// foundation of the report receipt: the same report always digests to
// the same value, on any machine, in any field order.
package codec
