// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "relgate",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "verify",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "verify"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"verify"}, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "verify" {
		t.Errorf("dispatched to %q, want %q", called, "verify")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "relgate",
		Subcommands: []*Command{
			{
				Name: "checksum",
				Subcommands: []*Command{
					{
						Name: "generate",
						Run: func(_ context.Context, args []string, _ *slog.Logger) error {
							called = "checksum generate"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	err := root.Execute(context.Background(), []string{"checksum", "generate", "./bundle"}, testLogger())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "checksum generate" {
		t.Errorf("dispatched to %q, want %q", called, "checksum generate")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "./bundle" {
		t.Errorf("args = %v, want [./bundle]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var mode string
	var positional []string

	command := &Command{
		Name: "verify",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flagSet.StringVar(&mode, "mode", "hard", "verification mode")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			positional = args
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--mode", "soft", "./bundle"}, testLogger())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if mode != "soft" {
		t.Errorf("mode = %q, want %q", mode, "soft")
	}
	if len(positional) != 1 || positional[0] != "./bundle" {
		t.Errorf("positional args = %v, want [./bundle]", positional)
	}
}

func TestCommand_Execute_UnknownSubcommandSuggests(t *testing.T) {
	root := &Command{
		Name: "relgate",
		Subcommands: []*Command{
			{Name: "verify", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
			{Name: "export", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"verfy"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "verify"?`) {
		t.Errorf("error %q does not suggest verify", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "verify",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("verify", pflag.ContinueOnError)
			flagSet.String("redaction", "none", "redaction mode")
			return flagSet
		},
		Run: func(context.Context, []string, *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--redacton", "safe-share"}, testLogger())
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "--redaction") {
		t.Errorf("error %q does not suggest --redaction", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name: "checksum",
		Subcommands: []*Command{
			{Name: "generate", Run: func(context.Context, []string, *slog.Logger) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), nil, testLogger())
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Fatalf("error = %v, want subcommand required", err)
	}
}

func TestCommand_Execute_ContextReachesRun(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "present")

	var seen any
	command := &Command{
		Name: "verify",
		Run: func(ctx context.Context, _ []string, _ *slog.Logger) error {
			seen = ctx.Value(key{})
			return nil
		},
	}

	if err := command.Execute(ctx, nil, testLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if seen != "present" {
		t.Error("context value did not reach Run")
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	root := &Command{
		Name:    "relgate",
		Summary: "Release bundle verification",
		Subcommands: []*Command{
			{Name: "verify", Summary: "Verify a release bundle"},
			{Name: "export", Summary: "Archive a bundle for hand-off"},
		},
		Examples: []Example{
			{Description: "Verify with defaults", Command: "relgate verify ./release-2026-08"},
		},
	}

	var buf bytes.Buffer
	root.PrintHelp(&buf)
	help := buf.String()

	for _, want := range []string{
		"Release bundle verification",
		"relgate <command> [flags]",
		"verify",
		"Archive a bundle for hand-off",
		"# Verify with defaults",
		"Run 'relgate <command> --help'",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	var got string
	root := &Command{
		Name: "relgate",
		Subcommands: []*Command{
			{
				Name: "gates",
				Subcommands: []*Command{
					{
						Name: "list",
						Run: func(context.Context, []string, *slog.Logger) error { return nil },
					},
				},
			},
		},
	}
	// Trigger dispatch so parent pointers are set, then ask for an
	// unknown sub-subcommand to surface the full path in the error.
	err := root.Execute(context.Background(), []string{"gates", "lst"}, testLogger())
	if err == nil {
		t.Fatal("expected error")
	}
	got = err.Error()
	if !strings.Contains(got, "'relgate gates --help'") {
		t.Errorf("error %q does not carry the full command path", got)
	}
}
