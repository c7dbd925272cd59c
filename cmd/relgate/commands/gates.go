// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/config"
	"github.com/relgate-io/relgate/lib/gate"
	"github.com/relgate-io/relgate/lib/verifier"
)

// gatesParams holds the flags shared by the gates subcommands.
type gatesParams struct {
	cli.JSONOutput
	Gates  string `flag:"gates"  desc:"gate definitions file (JSONC), overriding the configured one"`
	Config string `flag:"config" desc:"configuration file (YAML)"`
}

func gatesCommand() *cli.Command {
	return &cli.Command{
		Name:    "gates",
		Summary: "Inspect and exercise release gates",
		Description: `Work with gate definitions outside a verification run. Gates come
from the file named by --gates, else the gates.file configuration
setting, else the built-in defaults (the checksum gate and the
redaction-record gate, both required).

Gate files are JSONC: the stored JSON plus // line comments and
trailing commas, so they can be annotated in place.`,
		Subcommands: []*cli.Command{
			gatesListCommand(),
			gatesRunCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Show the gates a verification run would evaluate",
				Command:     "relgate gates list --gates release-gates.jsonc",
			},
			{
				Description: "Exercise one gate against a bundle while writing it",
				Command:     "relgate gates run license-scan ./dist/release-2026-08 --gates release-gates.jsonc",
			},
		},
	}
}

// loadGates resolves configuration and the gate list for a gates
// subcommand, mapping failures onto the configuration exit code.
func loadGates(params *gatesParams) (*config.Config, []gate.Gate, error) {
	cfg, err := config.Load(params.Config)
	if err != nil {
		return nil, nil, &cli.ExitError{Code: cli.ExitConfigError, Err: err}
	}
	gates, err := verifier.LoadGates(cfg, params.Gates)
	if err != nil {
		if errors.Is(err, verifier.ErrConfiguration) {
			return nil, nil, &cli.ExitError{Code: cli.ExitConfigError, Err: err}
		}
		return nil, nil, err
	}
	return cfg, gates, nil
}

func gatesListCommand() *cli.Command {
	var params gatesParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the configured gates",
		Usage:   "relgate gates list [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) != 0 {
				return fmt.Errorf("expected no positional arguments, got %d\n\nusage: relgate gates list [flags]", len(args))
			}

			_, gates, err := loadGates(&params)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(gates); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ID\tTYPE\tBLOCKS\tTIMEOUT\tDESCRIPTION\n")
			for _, g := range gates {
				gateType := "command"
				if g.Check != "" {
					gateType = "check: " + string(g.Check)
				}
				blocks := "nothing"
				switch {
				case g.Required && g.SoftRequired:
					blocks = "hard and soft runs"
				case g.Required:
					blocks = "hard runs"
				}
				timeout := g.Timeout
				if timeout == "" {
					timeout = "-"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n", g.ID, gateType, blocks, timeout, g.Description)
			}
			return writer.Flush()
		},
	}
}

func gatesRunCommand() *cli.Command {
	var params gatesParams

	return &cli.Command{
		Name:    "run",
		Summary: "Run a single gate against a bundle",
		Description: `Run one gate by ID against a bundle and print its verdict. The gate
runs exactly as a hard verification run would execute it: command
gates get the bundle directory as their working directory and the
configured timeout, structural checks evaluate the loaded bundle.

No report is written; this is for exercising a gate while writing it.
A failing gate exits 1 like a failed verification run.`,
		Usage: "relgate gates run [flags] <gate-id> <bundle-dir>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("run", &params)
		},
		Run: func(ctx context.Context, args []string, log *slog.Logger) error {
			if len(args) != 2 {
				return fmt.Errorf("expected 2 positional arguments, got %d\n\nusage: relgate gates run [flags] <gate-id> <bundle-dir>", len(args))
			}
			gateID, dir := args[0], args[1]

			cfg, gates, err := loadGates(&params)
			if err != nil {
				return err
			}
			var selected *gate.Gate
			for i := range gates {
				if gates[i].ID == gateID {
					selected = &gates[i]
					break
				}
			}
			if selected == nil {
				return &cli.ExitError{
					Code: cli.ExitConfigError,
					Err:  fmt.Errorf("no gate %q among the %d configured gates; see \"relgate gates list\"", gateID, len(gates)),
				}
			}

			algorithm, err := cfg.Algorithm()
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}
			var defaultTimeout time.Duration
			if cfg.Gates.DefaultTimeout != "" {
				defaultTimeout, err = time.ParseDuration(cfg.Gates.DefaultTimeout)
				if err != nil {
					return &cli.ExitError{Code: cli.ExitConfigError, Err: fmt.Errorf("gates.default_timeout: %w", err)}
				}
			}
			set, err := bundle.Load(dir)
			if err != nil {
				return &cli.ExitError{Code: cli.ExitConfigError, Err: err}
			}
			var uncovered []string
			if !cfg.Checksum.IncludeRedactionRecord {
				uncovered = []string{bundle.RedactionRecordName}
			}

			runner := gate.NewRunner(gate.RunnerOptions{
				Concurrency:    1,
				DefaultTimeout: defaultTimeout,
				Log:            log,
			})
			results := runner.Run(ctx, []gate.Gate{*selected}, &gate.Target{
				Dir:       set.Dir(),
				Bundle:    set,
				Algorithm: algorithm,
				Uncovered: uncovered,
				Mode:      gate.ModeHard,
			})

			result := results[0]
			fmt.Printf("%s: %s", result.GateID, result.Verdict)
			if result.Detail != "" {
				fmt.Printf(" (%s)", result.Detail)
			}
			fmt.Printf(" in %s\n", result.Duration.Round(time.Millisecond))

			if result.Verdict != gate.VerdictPass {
				return &cli.ExitError{Code: cli.ExitNoGo}
			}
			return nil
		},
	}
}
