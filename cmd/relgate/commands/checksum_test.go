// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
)

func TestChecksumGenerateThenVerify(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"app.tar":          "binary payload",
		"release-notes.md": "# v2.0\n",
	})

	if err := checksumGenerateCommand().Execute(context.Background(), []string{dir}, quiet()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	manifest, err := checksum.Parse(readFile(t, dir, bundle.ChecksumsName), checksum.SHA256)
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(manifest.Entries) != 2 {
		t.Fatalf("manifest entries = %d, want 2", len(manifest.Entries))
	}
	if _, ok := manifest.Lookup(bundle.ChecksumsName); ok {
		t.Fatal("manifest covers itself")
	}

	if err := checksumVerifyCommand().Execute(context.Background(), []string{dir}, quiet()); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestChecksumVerifyTampered(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "original"})
	writeManifest(t, dir)
	if err := os.WriteFile(filepath.Join(dir, "app.tar"), []byte("tampered"), 0o644); err != nil {
		t.Fatalf("tamper: %v", err)
	}

	err := checksumVerifyCommand().Execute(context.Background(), []string{dir}, quiet())
	if code := exitCode(t, err); code != cli.ExitNoGo {
		t.Fatalf("exit code = %d, want %d", code, cli.ExitNoGo)
	}
}

func TestChecksumVerifyMissingManifest(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	// A bundle without a manifest fails verification; it is a statement
	// about the bundle, not about the invocation.
	err := checksumVerifyCommand().Execute(context.Background(), []string{dir}, quiet())
	if code := exitCode(t, err); code != cli.ExitNoGo {
		t.Fatalf("exit code = %d, want %d", code, cli.ExitNoGo)
	}
}

func TestChecksumAlgorithmFlag(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	if err := checksumGenerateCommand().Execute(context.Background(), []string{"--algorithm", "blake3", dir}, quiet()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := checksumVerifyCommand().Execute(context.Background(), []string{"--algorithm", "blake3", dir}, quiet()); err != nil {
		t.Fatalf("verify with blake3: %v", err)
	}

	// The algorithm is configuration, not recorded in the manifest, so
	// verifying with the default sha256 mismatches every entry.
	err := checksumVerifyCommand().Execute(context.Background(), []string{dir}, quiet())
	if code := exitCode(t, err); code != cli.ExitNoGo {
		t.Fatalf("exit code = %d, want %d", code, cli.ExitNoGo)
	}
}

func TestChecksumUnknownAlgorithmIsConfigError(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	err := checksumGenerateCommand().Execute(context.Background(), []string{"--algorithm", "md5", dir}, quiet())
	if code := exitCode(t, err); code != cli.ExitConfigError {
		t.Fatalf("exit code = %d, want %d", code, cli.ExitConfigError)
	}
}
