// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package export packages a release bundle into a single archive for
// hand-off: a tar stream of every artifact plus the verification
// report and its receipt, optionally compressed, optionally
// age-encrypted to a set of recipients.
//
// The output format is deliberately stock: tar, then zstd or LZ4
// frames, then age. Recipients unpack an export with ordinary tooling;
// relgate is only needed to produce it.
package export

import (
	"archive/tar"
	"fmt"
	"io"
	"time"

	"filippo.io/age"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/report"
)

// Compression selects the stream compression applied to the tar
// archive. The algorithm in force is visible in the output filename,
// never sniffed from content.
type Compression string

const (
	// CompressionNone writes the tar stream as-is. For bundles that
	// are mostly already-compressed artifacts (tarballs, images),
	// compression adds CPU cost without reducing size.
	CompressionNone Compression = "none"

	// CompressionLZ4 writes an LZ4 frame stream. Fast default for
	// binary-heavy bundles.
	CompressionLZ4 Compression = "lz4"

	// CompressionZstd writes a zstd stream at the default level.
	// Better ratios for text-heavy bundles: JSON metadata, manifests,
	// release notes.
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a compression name from a flag or
// configuration.
func ParseCompression(name string) (Compression, error) {
	switch Compression(name) {
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return Compression(name), nil
	default:
		return "", fmt.Errorf("unknown compression %q (want %q, %q, or %q)",
			name, CompressionNone, CompressionLZ4, CompressionZstd)
	}
}

// Extension returns the conventional filename suffix for an archive
// with this compression, before any encryption suffix.
func (c Compression) Extension() string {
	switch c {
	case CompressionLZ4:
		return ".tar.lz4"
	case CompressionZstd:
		return ".tar.zst"
	default:
		return ".tar"
	}
}

// Options configures one export.
type Options struct {
	// Compression selects the archive compression. Empty means none.
	Compression Compression

	// Recipients holds age public keys (age1... format). Non-empty
	// encrypts the archive so that only the named recipients can open
	// it.
	Recipients []string
}

// Write streams the bundle to w as a tar archive: every artifact in
// canonical order, then the verification report and its receipt when a
// report is supplied. Report and receipt are rendered from rep rather
// than read from disk, so the archive always carries a matching pair.
//
// The tar stream is compressed before it is encrypted; ciphertext does
// not compress.
func Write(w io.Writer, set *bundle.Set, rep *report.Report, opts Options) error {
	sink := w

	var encrypter io.WriteCloser
	if len(opts.Recipients) > 0 {
		recipients := make([]age.Recipient, 0, len(opts.Recipients))
		for _, key := range opts.Recipients {
			recipient, err := age.ParseX25519Recipient(key)
			if err != nil {
				return fmt.Errorf("parsing recipient key %q: %w", key, err)
			}
			recipients = append(recipients, recipient)
		}
		var err error
		encrypter, err = age.Encrypt(sink, recipients...)
		if err != nil {
			return fmt.Errorf("creating age encryptor: %w", err)
		}
		sink = encrypter
	}

	compressor, err := newCompressor(sink, opts.Compression)
	if err != nil {
		return err
	}
	if compressor != nil {
		sink = compressor
	}

	if err := writeTar(sink, set, rep); err != nil {
		return err
	}

	if compressor != nil {
		if err := compressor.Close(); err != nil {
			return fmt.Errorf("finalizing %s stream: %w", opts.Compression, err)
		}
	}
	if encrypter != nil {
		if err := encrypter.Close(); err != nil {
			return fmt.Errorf("finalizing age encryption: %w", err)
		}
	}
	return nil
}

// newCompressor wraps w in the selected compression stream. Returns
// nil for CompressionNone.
func newCompressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionZstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// writeTar writes the archive entries. Headers carry a fixed mode and
// a second-precision mtime taken from the report, so exporting the
// same verified bundle twice yields byte-identical archives
// (encryption aside: age generates a fresh file key per run).
func writeTar(w io.Writer, set *bundle.Set, rep *report.Report) error {
	stamp := time.Unix(0, 0)
	if rep != nil {
		stamp = time.Unix(rep.GeneratedAt.Unix(), 0)
	}

	tw := tar.NewWriter(w)
	for _, a := range set.Artifacts() {
		if a.ReadErr != nil {
			return fmt.Errorf("archiving %s: %w", a.Name, a.ReadErr)
		}
		if err := writeEntry(tw, a.Name, a.Data, stamp); err != nil {
			return err
		}
	}

	if rep != nil {
		data, err := rep.Format()
		if err != nil {
			return err
		}
		if err := writeEntry(tw, bundle.ReportName, data, stamp); err != nil {
			return err
		}

		receipt, err := report.NewReceipt(rep)
		if err != nil {
			return err
		}
		receiptData, err := report.FormatReceipt(receipt)
		if err != nil {
			return err
		}
		if err := writeEntry(tw, bundle.ReceiptName, receiptData, stamp); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalizing tar stream: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte, stamp time.Time) error {
	header := &tar.Header{
		Name:    name,
		Mode:    0o644,
		Size:    int64(len(data)),
		ModTime: stamp,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("archiving %s: %w", name, err)
	}
	return nil
}
