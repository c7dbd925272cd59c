// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeebo/blake3"

	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/codec"
)

// ReceiptAlgorithm names the digest construction receipts carry. There
// is exactly one; the field exists so readers can reject receipts from
// a future construction instead of misinterpreting them.
const ReceiptAlgorithm = "blake3-keyed"

// receiptDomainKey is the BLAKE3 key for receipt digests. Domain
// separation keeps report digests distinct from every other BLAKE3 use
// in the system (artifact checksums in particular). The byte values are
// the ASCII encoding of the domain name, zero-padded to 32 bytes, so
// the key is inspectable in hex dumps without losing any cryptographic
// property.
var receiptDomainKey = [32]byte{
	'r', 'e', 'l', 'g', 'a', 't', 'e', '.', 'r', 'e', 'p', 'o', 'r', 't', '.',
	'r', 'e', 'c', 'e', 'i', 'p', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Receipt is the tamper-evidence companion to a report: a keyed digest
// of the report's content, stored alongside it. The digest covers the
// deterministic CBOR encoding of the Report value rather than the JSON
// file bytes, so reformatting the report file (whitespace, key order)
// does not invalidate the receipt; only a change to what the report
// says does.
type Receipt struct {
	SchemaVersion int       `json:"schemaVersion"`
	RunID         string    `json:"runId"`
	Algorithm     string    `json:"algorithm"`
	ReportDigest  string    `json:"reportDigest"`
	GeneratedAt   time.Time `json:"generatedAt"`
}

// Digest computes the receipt digest of a report: keyed BLAKE3 over the
// report's deterministic CBOR encoding.
func Digest(r *Report) ([32]byte, error) {
	var digest [32]byte
	encoded, err := codec.Marshal(r)
	if err != nil {
		return digest, fmt.Errorf("encoding report for receipt digest: %w", err)
	}

	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees, so this cannot fail.
	hasher, err := blake3.NewKeyed(receiptDomainKey[:])
	if err != nil {
		panic("report: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(encoded)
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// NewReceipt builds the receipt for a report. RunID and GeneratedAt
// mirror the report's: the receipt is derived from the report, not an
// independent event.
func NewReceipt(r *Report) (*Receipt, error) {
	digest, err := Digest(r)
	if err != nil {
		return nil, err
	}
	return &Receipt{
		SchemaVersion: SchemaVersion,
		RunID:         r.RunID,
		Algorithm:     ReceiptAlgorithm,
		ReportDigest:  checksum.FormatDigest(digest),
		GeneratedAt:   r.GeneratedAt,
	}, nil
}

// Verify checks that the receipt matches the given report. A mismatch
// means the report changed after the receipt was written, or the
// receipt belongs to a different run.
func (rec *Receipt) Verify(r *Report) error {
	if rec.Algorithm != ReceiptAlgorithm {
		return fmt.Errorf("receipt algorithm is %q, want %q", rec.Algorithm, ReceiptAlgorithm)
	}
	if rec.RunID != r.RunID {
		return fmt.Errorf("receipt is for run %s, report is run %s", rec.RunID, r.RunID)
	}
	recorded, err := checksum.ParseDigest(rec.ReportDigest)
	if err != nil {
		return fmt.Errorf("receipt digest: %w", err)
	}
	computed, err := Digest(r)
	if err != nil {
		return err
	}
	if recorded != computed {
		return fmt.Errorf("report does not match its receipt: receipt has %s, report digests to %s",
			rec.ReportDigest, checksum.FormatDigest(computed))
	}
	return nil
}

// FormatReceipt renders the receipt as indented JSON with a trailing
// newline, the exact bytes written to the receipt file.
func FormatReceipt(rec *Receipt) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding verification receipt: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseReceipt reads a receipt back from its JSON form.
func ParseReceipt(data []byte) (*Receipt, error) {
	var rec Receipt
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing verification receipt: %w", err)
	}
	if rec.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("receipt schemaVersion is %d, want %d", rec.SchemaVersion, SchemaVersion)
	}
	if rec.RunID == "" {
		return nil, fmt.Errorf("receipt has no runId")
	}
	return &rec, nil
}
