// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete relgate CLI command tree. Every
// command here is a thin shell over the engine packages in lib/: it
// parses flags, calls the library, renders the result, and maps the
// outcome onto the exit-code contract in [cli].
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/version"
)

// Root builds and returns the complete relgate CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "relgate",
		Description: `Relgate: release bundle verification.

Verify release bundles against checksum manifests and release gates,
redact CI metadata for sharing, and export verified bundles with their
reports. The verify command exits 0 for GO, 1 for NO-GO, and 2 when
the invocation itself is broken, so CI pipelines can branch on the
decision without parsing output.`,
		Subcommands: []*cli.Command{
			verifyCommand(),
			checksumCommand(),
			redactCommand(),
			gatesCommand(),
			exportCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("relgate %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Decide GO or NO-GO for a release bundle",
				Command:     "relgate verify ./dist/release-2026-08",
			},
			{
				Description: "Pre-flight check with only the soft-required gates blocking",
				Command:     "relgate verify --mode soft ./dist/release-2026-08",
			},
			{
				Description: "Generate the checksum manifest for a bundle",
				Command:     "relgate checksum generate ./dist/release-2026-08",
			},
			{
				Description: "Mask CI metadata before sharing a bundle externally",
				Command:     "relgate redact --mode safe-share ./dist/release-2026-08",
			},
			{
				Description: "List the gates a verification run would evaluate",
				Command:     "relgate gates list",
			},
			{
				Description: "Export a verified bundle as an encrypted archive",
				Command:     "relgate export ./dist/release-2026-08 --encrypt-to age1ql3z7hjy54pw3hyww5ayyfg7zqgvc7w3j2elw8zmrj2kg5sfn9aqmcac8p",
			},
		},
	}
}
