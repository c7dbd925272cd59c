// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/config"
	"github.com/relgate-io/relgate/lib/gate"
	"github.com/relgate-io/relgate/lib/verifier"
)

// verifyParams holds the flags for the verify command.
type verifyParams struct {
	cli.JSONOutput
	Mode      string `flag:"mode,m"    desc:"verification mode: hard (release decision) or soft (pre-flight)" default:"hard"`
	Redaction string `flag:"redaction" desc:"redaction mode to apply before gates run" default:"none"`
	Gates     string `flag:"gates"     desc:"gate definitions file (JSONC), overriding the configured one"`
	Config    string `flag:"config"    desc:"configuration file (YAML)"`
	Algorithm string `flag:"algorithm" desc:"checksum algorithm: sha256 or blake3, overriding the configured one"`
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Verify a release bundle and decide GO or NO-GO",
		Description: `Run the full verification pipeline over a release bundle: load the
artifacts, apply the requested redaction mode, evaluate the gates, and
write verification-report.json and its receipt into the bundle
directory.

The overall decision is the exit status. 0 means GO: every blocking
gate passed. 1 means NO-GO: at least one blocking gate failed, and the
report names each one. 2 means the invocation itself was broken (bad
flags, unreadable config or gates file, unknown redaction mode) and no
decision was made.

In hard mode every gate marked required blocks the decision. In soft
mode only gates marked both required and softRequired block; the rest
still run and are recorded, but cannot cause a NO-GO. Soft mode is for
local pre-flight runs, never for the release decision itself.`,
		Usage: "relgate verify [flags] <bundle-dir>",
		Examples: []cli.Example{
			{
				Description: "Release decision with the built-in gates",
				Command:     "relgate verify ./dist/release-2026-08",
			},
			{
				Description: "Pre-flight with a project gates file",
				Command:     "relgate verify --mode soft --gates release-gates.jsonc ./dist/release-2026-08",
			},
			{
				Description: "Redact CI metadata before verifying, emit the report as JSON",
				Command:     "relgate verify --redaction safe-share --json ./dist/release-2026-08",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(ctx context.Context, args []string, log *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected 1 positional argument, got %d\n\nusage: relgate verify [flags] <bundle-dir>", len(args))
			}

			cfg, err := config.Load(params.Config)
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}
			if params.Algorithm != "" {
				cfg.Checksum.Algorithm = params.Algorithm
			}

			rep, err := verifier.Run(ctx, verifier.Options{
				BundleDir: args[0],
				Mode:      params.Mode,
				Redaction: params.Redaction,
				GatesFile: params.Gates,
				Config:    cfg,
				Log:       log,
			})
			if err != nil {
				if errors.Is(err, verifier.ErrConfiguration) {
					return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
				}
				// The run started but could not produce a trustworthy
				// report. Distinct from NO-GO: nothing was decided.
				return &cli.ExitError{Code: cli.ExitInternal, Err: err}
			}

			if params.OutputJSON {
				// Emit the exact bytes written to the bundle, so stdout
				// and verification-report.json can never disagree.
				data, err := rep.Format()
				if err != nil {
					return err
				}
				if _, err := os.Stdout.Write(data); err != nil {
					return err
				}
			} else if err := rep.WriteSummary(os.Stdout); err != nil {
				return err
			}

			if rep.Overall != gate.OverallGo {
				return &cli.ExitError{Code: cli.ExitNoGo}
			}
			return nil
		},
	}
}
