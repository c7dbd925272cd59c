// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filippo.io/age"

	"github.com/relgate-io/relgate/cmd/relgate/cli"
	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/export"
)

func TestExportPlainTar(t *testing.T) {
	dir := writeBundle(t, map[string]string{
		"app.tar":          "binary payload",
		"release-notes.md": "# v2.0\n",
	})
	writeManifest(t, dir)
	// Verify first so the archive carries the report and receipt.
	if err := verifyCommand().Execute(context.Background(), []string{dir}, quiet()); err != nil {
		t.Fatalf("verify: %v", err)
	}

	out := filepath.Join(t.TempDir(), "bundle.tar")
	err := exportCommand().Execute(context.Background(), []string{"--compress", "none", "-o", out, dir}, quiet())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	names := tarNames(t, readFileAbs(t, out))
	want := []string{"app.tar", bundle.ChecksumsName, "release-notes.md", bundle.ReportName, bundle.ReceiptName}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("entry[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestExportWithoutReportWarnsAndWrites(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	out := filepath.Join(t.TempDir(), "bundle.tar")
	err := exportCommand().Execute(context.Background(), []string{"--compress", "none", "-o", out, dir}, quiet())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	names := tarNames(t, readFileAbs(t, out))
	for _, name := range names {
		if name == bundle.ReportName {
			t.Fatal("archive has a report the bundle never had")
		}
	}
}

func TestExportEncrypted(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("generate identity: %v", err)
	}
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	out := filepath.Join(t.TempDir(), "bundle.tar.zst.age")
	err = exportCommand().Execute(context.Background(),
		[]string{"--encrypt-to", identity.Recipient().String(), "-o", out, dir}, quiet())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	data := readFileAbs(t, out)
	if !bytes.HasPrefix(data, []byte("age-encryption.org/v1")) {
		t.Fatalf("output does not start with the age header: %q", data[:min(len(data), 32)])
	}
}

func TestExportRefusesMismatchedReceipt(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})
	writeManifest(t, dir)
	if err := verifyCommand().Execute(context.Background(), []string{dir}, quiet()); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Rewrite a report field after the receipt was issued. The report
	// still parses; the receipt no longer vouches for it.
	path := filepath.Join(dir, bundle.ReportName)
	doctored := bytes.Replace(readFileAbs(t, path),
		[]byte(`"redaction": "none"`), []byte(`"redaction": "edited"`), 1)
	if err := os.WriteFile(path, doctored, 0o644); err != nil {
		t.Fatalf("doctor report: %v", err)
	}

	out := filepath.Join(t.TempDir(), "bundle.tar.zst")
	err := exportCommand().Execute(context.Background(), []string{"-o", out, dir}, quiet())
	if err == nil || !strings.Contains(err.Error(), "refusing to export") {
		t.Fatalf("error = %v, want a receipt refusal", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Fatal("archive written despite the refusal")
	}
}

func TestExportUnknownCompressionIsConfigError(t *testing.T) {
	dir := writeBundle(t, map[string]string{"app.tar": "payload"})

	err := exportCommand().Execute(context.Background(), []string{"--compress", "brotli", dir}, quiet())
	if code := exitCode(t, err); code != cli.ExitConfigError {
		t.Fatalf("exit code = %d, want %d", code, cli.ExitConfigError)
	}
}

func TestDefaultOutput(t *testing.T) {
	cases := []struct {
		dir       string
		comp      export.Compression
		encrypted bool
		want      string
	}{
		{"/work/dist/release-2026-08", export.CompressionZstd, false, "release-2026-08.tar.zst"},
		{"/work/dist/release-2026-08", export.CompressionLZ4, false, "release-2026-08.tar.lz4"},
		{"release-2026-08", export.CompressionNone, false, "release-2026-08.tar"},
		{"/work/dist/release-2026-08", export.CompressionZstd, true, "release-2026-08.tar.zst.age"},
	}
	for _, c := range cases {
		if got := defaultOutput(c.dir, c.comp, c.encrypted); got != c.want {
			t.Errorf("defaultOutput(%q, %s, %v) = %q, want %q", c.dir, c.comp, c.encrypted, got, c.want)
		}
	}
}

func tarNames(t *testing.T, data []byte) []string {
	t.Helper()
	var names []string
	reader := tar.NewReader(bytes.NewReader(data))
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading tar: %v", err)
		}
		names = append(names, header.Name)
	}
	return names
}

func readFileAbs(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}
