// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func writeManifest(t *testing.T, dir string) {
	t.Helper()
	set, err := bundle.Load(dir)
	if err != nil {
		t.Fatalf("load bundle: %v", err)
	}
	manifest, unreadable := checksum.Compute(set, checksum.SHA256)
	if len(unreadable) > 0 {
		t.Fatalf("unreadable artifacts: %v", unreadable)
	}
	if err := os.WriteFile(filepath.Join(dir, bundle.ChecksumsName), manifest.Format(), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

func writeGates(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gates.jsonc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write gates: %v", err)
	}
	return path
}

// exitCode asserts that err carries an explicit exit code and returns
// it.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exit *cli.ExitError
	if !errors.As(err, &exit) {
		t.Fatalf("error %v does not carry an exit code", err)
	}
	return exit.Code
}

func TestRootVersion(t *testing.T) {
	if err := Root().Execute(context.Background(), []string{"version"}, quiet()); err != nil {
		t.Fatalf("version: %v", err)
	}
}

func TestRootUnknownCommandSuggests(t *testing.T) {
	err := Root().Execute(context.Background(), []string{"verfy"}, quiet())
	if err == nil || !strings.Contains(err.Error(), `did you mean "verify"?`) {
		t.Fatalf("error = %v, want a verify suggestion", err)
	}
}

func TestRootCommandsHaveHelpMetadata(t *testing.T) {
	var walk func(t *testing.T, c *cli.Command)
	walk = func(t *testing.T, c *cli.Command) {
		if c.Name == "" {
			t.Error("command with no name")
		}
		if len(c.Subcommands) == 0 && c.Run == nil {
			t.Errorf("%s: leaf command with no Run", c.Name)
		}
		for _, sub := range c.Subcommands {
			if sub.Summary == "" {
				t.Errorf("%s %s: no summary", c.Name, sub.Name)
			}
			walk(t, sub)
		}
	}
	walk(t, Root())
}
