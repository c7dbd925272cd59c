// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/config"
	"github.com/relgate-io/relgate/lib/verifier"
)

// redactParams holds the flags for the redact command.
type redactParams struct {
	Mode   string `flag:"mode,m"  desc:"redaction mode to apply (e.g. safe-share)"`
	DryRun bool   `flag:"dry-run" desc:"report what would change without modifying the bundle"`
	Config string `flag:"config"  desc:"configuration file (YAML)"`
}

func redactCommand() *cli.Command {
	var params redactParams

	return &cli.Command{
		Name:    "redact",
		Summary: "Mask CI metadata in a bundle's structured artifacts",
		Description: `Apply a redaction mode to the bundle's JSON artifacts, replacing the
mode's fields with placeholders in place. The pass records what it
masked in redaction.json and recomputes checksums.txt so the bundle
still verifies afterwards.

Redaction is idempotent: re-running a mode over an already redacted
bundle changes nothing, byte for byte. The built-in safe-share mode
masks the CI run coordinates (run URL and IDs, workflow identity,
repository identity, actor logins); custom modes come from the
redaction.modes section of the configuration.

Redaction is irreversible. Use --dry-run to see which artifacts a mode
would touch before committing to it.`,
		Usage: "relgate redact --mode <name> [flags] <bundle-dir>",
		Examples: []cli.Example{
			{
				Description: "Mask CI metadata for external sharing",
				Command:     "relgate redact --mode safe-share ./dist/release-2026-08",
			},
			{
				Description: "Preview a custom mode without modifying the bundle",
				Command:     "relgate redact --mode internal-audit --dry-run --config relgate.yaml ./dist/release-2026-08",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("redact", &params)
		},
		Run: func(_ context.Context, args []string, log *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nusage: relgate redact --mode <name> [flags] <bundle-dir>", len(args))
			}
			if params.Mode == "" {
				return fmt.Errorf("--mode is required\n\nusage: relgate redact --mode <name> [flags] <bundle-dir>")
			}

			cfg, err := config.Load(params.Config)
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}

			res, err := verifier.Redact(verifier.RedactOptions{
				BundleDir: args[0],
				Mode:      params.Mode,
				DryRun:    params.DryRun,
				Config:    cfg,
				Log:       log,
			})
			if err != nil {
				if errors.Is(err, verifier.ErrConfiguration) {
					return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
				}
				return err
			}

			verb := "redacted"
			if params.DryRun {
				verb = "would redact"
			}
			if len(res.FilesRedacted) == 0 {
				fmt.Printf("nothing to redact: mode %s already applied or no fields matched\n", params.Mode)
			} else {
				fmt.Printf("%s %d artifacts (mode %s):\n", verb, len(res.FilesRedacted), params.Mode)
				for _, name := range res.FilesRedacted {
					fmt.Printf("  %s\n", name)
				}
			}
			for _, p := range res.Problems {
				log.Warn("artifact skipped by redactor", "artifact", p.Name, "detail", p.Detail)
			}
			return nil
		},
	}
}
