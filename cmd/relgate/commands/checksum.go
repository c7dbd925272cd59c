// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/config"
)

// checksumParams holds the flags shared by the checksum subcommands.
type checksumParams struct {
	Config    string `flag:"config"    desc:"configuration file (YAML)"`
	Algorithm string `flag:"algorithm" desc:"checksum algorithm: sha256 or blake3, overriding the configured one"`
}

func checksumCommand() *cli.Command {
	return &cli.Command{
		Name:    "checksum",
		Summary: "Generate or verify a bundle's checksum manifest",
		Description: `Manage checksums.txt, the bundle's digest manifest. The manifest is
one line per artifact in sha256sum format, so standard tooling can
cross-check it:

  <64 hex chars>  <artifact name>

The manifest never covers itself, and it covers redaction.json only
when checksum.include_redaction_record is left enabled in the
configuration. The digest algorithm is configuration, not recorded in
the file; verifying with the wrong algorithm fails every entry.`,
		Subcommands: []*cli.Command{
			checksumGenerateCommand(),
			checksumVerifyCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Write checksums.txt for a bundle",
				Command:     "relgate checksum generate ./dist/release-2026-08",
			},
			{
				Description: "Check every artifact against the manifest",
				Command:     "relgate checksum verify ./dist/release-2026-08",
			},
		},
	}
}

// loadChecksumTarget resolves configuration and loads the bundle for a
// checksum subcommand. Both failure kinds are invocation problems, so
// they map to the configuration exit code.
func loadChecksumTarget(params *checksumParams, dir string) (*bundle.Set, checksum.Algorithm, []string, error) {
	cfg, err := config.Load(params.Config)
	if err != nil {
		return nil, "", nil, &cli.ExitError{Code: cli.ExitConfigError, Err: err}
	}
	if params.Algorithm != "" {
		cfg.Checksum.Algorithm = params.Algorithm
	}
	algorithm, err := cfg.Algorithm()
	if err != nil {
		return nil, "", nil, &cli.ExitError{Code: cli.ExitConfigError, Err: err}
	}

	set, err := bundle.Load(dir)
	if err != nil {
		return nil, "", nil, &cli.ExitError{Code: cli.ExitConfigError, Err: err}
	}

	var exclude []string
	if !cfg.Checksum.IncludeRedactionRecord {
		exclude = []string{bundle.RedactionRecordName}
	}
	return set, algorithm, exclude, nil
}

func checksumGenerateCommand() *cli.Command {
	var params checksumParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Compute and write the bundle's checksum manifest",
		Description: `Hash every covered artifact in the bundle and write checksums.txt
into the bundle directory, replacing any existing manifest. Artifacts
that cannot be read are left out of the manifest and reported on
stderr; a later verify names them as missing from it.`,
		Usage: "relgate checksum generate [flags] <bundle-dir>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("generate", &params)
		},
		Run: func(_ context.Context, args []string, log *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nusage: relgate checksum generate [flags] <bundle-dir>", len(args))
			}

			set, algorithm, exclude, err := loadChecksumTarget(&params, args[0])
			if err != nil {
				return err
			}

			manifest, unreadable := checksum.Compute(set, algorithm, exclude...)
			for _, u := range unreadable {
				log.Warn("artifact left out of checksum manifest", "artifact", u.Name, "error", u.Err)
			}
			if err := bundle.WriteFile(set.Dir(), bundle.ChecksumsName, manifest.Format()); err != nil {
				return err
			}

			fmt.Printf("wrote %s: %d artifacts (%s)\n", bundle.ChecksumsName, len(manifest.Entries), algorithm)
			return nil
		},
	}
}

func checksumVerifyCommand() *cli.Command {
	var params checksumParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check the bundle's artifacts against its manifest",
		Description: `Verify every covered artifact against checksums.txt. Each mismatch is
reported individually: changed bytes, artifacts the manifest names but
the bundle lacks, artifacts the bundle has but the manifest does not
cover, and artifacts that could not be read.

A bundle that fails any comparison exits 1, the same status a failed
verification run uses. A missing or malformed manifest is also a
verification failure, not a configuration error: it is a statement
about the bundle, and tampering must not look like a broken command.`,
		Usage: "relgate checksum verify [flags] <bundle-dir>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nusage: relgate checksum verify [flags] <bundle-dir>", len(args))
			}

			set, algorithm, exclude, err := loadChecksumTarget(&params, args[0])
			if err != nil {
				return err
			}

			art, ok := set.Lookup(bundle.ChecksumsName)
			if !ok {
				fmt.Fprintf(os.Stderr, "%s not present in bundle\n", bundle.ChecksumsName)
				return &cli.ExitError{Code: cli.ExitNoGo}
			}
			if art.ReadErr != nil {
				fmt.Fprintf(os.Stderr, "%s: unreadable: %v\n", bundle.ChecksumsName, art.ReadErr)
				return &cli.ExitError{Code: cli.ExitNoGo}
			}
			manifest, err := checksum.Parse(art.Data, algorithm)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", bundle.ChecksumsName, err)
				return &cli.ExitError{Code: cli.ExitNoGo}
			}

			mismatches := manifest.Verify(set, exclude...)
			if len(mismatches) > 0 {
				writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
				fmt.Fprintf(writer, "ARTIFACT\tPROBLEM\tDETAIL\n")
				for _, m := range mismatches {
					fmt.Fprintf(writer, "%s\t%s\t%s\n", m.Name, m.Reason, m.Detail)
				}
				if err := writer.Flush(); err != nil {
					return err
				}
				return &cli.ExitError{Code: cli.ExitNoGo}
			}

			fmt.Printf("%d artifacts verified (%s)\n", len(manifest.Entries), algorithm)
			return nil
		},
	}
}
