// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/export"
	"github.com/relgate-io/relgate/lib/gate"
	"github.com/relgate-io/relgate/lib/report"
)

// exportParams holds the flags for the export command.
type exportParams struct {
	Output    string   `flag:"output,o"   desc:"archive path (default: <bundle-name><ext> next to the bundle)"`
	Compress  string   `flag:"compress"   desc:"compression: zstd, lz4, or none" default:"zstd"`
	EncryptTo []string `flag:"encrypt-to" desc:"age X25519 recipient to encrypt for (repeatable)"`
}

func exportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Archive a bundle with its verification report",
		Description: `Pack the bundle's artifacts plus the verification report and receipt
into a single archive for hand-off: a tar stream, compressed with zstd
(or lz4, or left plain), optionally encrypted to one or more age
X25519 recipients.

The report and receipt are read from the bundle directory, so verify
first; exporting an unverified bundle produces an archive without a
report and says so. Pair --encrypt-to with safe-share redaction when
the bundle leaves the organization.

Archives use only stock formats. Recipients decrypt with age, decompress
with zstd or lz4, and unpack with tar; relgate is not required on the
receiving end.`,
		Usage: "relgate export [flags] <bundle-dir>",
		Examples: []cli.Example{
			{
				Description: "Compressed archive next to the bundle",
				Command:     "relgate export ./dist/release-2026-08",
			},
			{
				Description: "Encrypted archive for an external auditor",
				Command:     "relgate export ./dist/release-2026-08 --encrypt-to age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p",
			},
			{
				Description: "Plain tar for tooling that does its own compression",
				Command:     "relgate export ./dist/release-2026-08 --compress none -o release.tar",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(_ context.Context, args []string, log *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nusage: relgate export [flags] <bundle-dir>", len(args))
			}
			dir := args[0]

			compression, err := export.ParseCompression(params.Compress)
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}

			set, err := bundle.Load(dir)
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}

			rep, err := loadReport(dir)
			if err != nil {
				return err
			}
			if rep == nil {
				log.Warn("bundle has no verification report; exporting without one", "bundle", dir)
			} else if rep.Overall != gate.OverallGo {
				log.Warn("exporting a bundle whose verification was NO-GO", "run", rep.RunID)
			}

			output := params.Output
			if output == "" {
				output = defaultOutput(set.Dir(), compression, len(params.EncryptTo) > 0)
			}

			if err := writeArchive(output, set, rep, export.Options{
				Compression: compression,
				Recipients:  params.EncryptTo,
			}); err != nil {
				return err
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes, %d artifacts)\n", output, info.Size(), set.Len())
			return nil
		},
	}
}

// defaultOutput names the archive after the bundle directory, next to
// wherever the command runs: release-2026-08.tar.zst, or with a .age
// suffix when the stream is encrypted.
func defaultOutput(bundleDir string, c export.Compression, encrypted bool) string {
	name := filepath.Base(bundleDir) + c.Extension()
	if encrypted {
		name += ".age"
	}
	return name
}

// loadReport reads the bundle's verification report if one exists. The
// receipt is checked against it: a report that fails its receipt is
// worse than no report, so that is an error rather than a warning.
func loadReport(dir string) (*report.Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, bundle.ReportName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rep, err := report.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bundle.ReportName, err)
	}

	receiptData, err := os.ReadFile(filepath.Join(dir, bundle.ReceiptName))
	if errors.Is(err, os.ErrNotExist) {
		return rep, nil
	}
	if err != nil {
		return nil, err
	}
	receipt, err := report.ParseReceipt(receiptData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", bundle.ReceiptName, err)
	}
	if err := receipt.Verify(rep); err != nil {
		return nil, fmt.Errorf("refusing to export: %w", err)
	}
	return rep, nil
}

// writeArchive streams the export to its final path, removing the
// partial file on failure so a broken run never leaves a truncated
// archive behind.
func writeArchive(path string, set *bundle.Set, rep *report.Report, opts export.Options) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	if err := export.Write(file, set, rep, opts); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}
