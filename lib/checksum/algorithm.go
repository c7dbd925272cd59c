// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Algorithm selects the digest function for a checksum manifest. Both
// algorithms produce 32-byte digests, so one manifest format serves
// either; the algorithm in force comes from configuration, never from
// sniffing the manifest.
type Algorithm string

const (
	// SHA256 is the default. Manifests are line-compatible with the
	// output of sha256sum, so release bundles can be checked with
	// stock coreutils when relgate is not around.
	SHA256 Algorithm = "sha256"

	// BLAKE3 trades that compatibility for speed on large bundles.
	BLAKE3 Algorithm = "blake3"
)

// ParseAlgorithm validates an algorithm name from configuration or a
// flag.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case SHA256, BLAKE3:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm %q (want %q or %q)", name, SHA256, BLAKE3)
	}
}

// Sum computes the digest of data under the algorithm.
func (a Algorithm) Sum(data []byte) [32]byte {
	switch a {
	case BLAKE3:
		return blake3.Sum256(data)
	default:
		return sha256.Sum256(data)
	}
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format used in manifests, reports, and
// log output.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// ParseDigest parses a 64-character hex string into a 32-byte digest.
func ParseDigest(hexString string) ([32]byte, error) {
	var digest [32]byte
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing checksum digest: %w", err)
	}
	if len(decoded) != 32 {
		return digest, fmt.Errorf("checksum digest is %d bytes, want 32", len(decoded))
	}
	copy(digest[:], decoded)
	return digest, nil
}
