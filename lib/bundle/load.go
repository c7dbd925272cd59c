// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Load reads every file under dir into a Set. Files are walked
// recursively; artifact names are forward-slash paths relative to dir.
// A file that cannot be read is kept in the set with ReadErr set so
// that checksum verification can surface it per artifact instead of
// failing the whole load.
//
// Verification outputs from a previous run (the report and receipt)
// are not release content and are skipped, which keeps repeated runs
// over the same bundle idempotent.
func Load(dir string) (*Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening bundle directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle path %s is not a directory", dir)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving bundle directory: %w", err)
	}

	s := &Set{dir: absDir, byName: make(map[string]*Artifact)}
	err = filepath.WalkDir(absDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(absDir, path)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		if name == ReportName || name == ReceiptName {
			return nil
		}

		a := &Artifact{Name: name, Path: path}
		a.Data, a.ReadErr = os.ReadFile(path)
		if a.ReadErr != nil {
			a.Data = nil
		}
		return s.put(a)
	})
	if err != nil {
		return nil, fmt.Errorf("walking bundle directory %s: %w", absDir, err)
	}
	if s.Len() == 0 {
		return nil, fmt.Errorf("bundle directory %s contains no artifacts", absDir)
	}

	s.sortByName()
	return s, nil
}

// Save writes the named artifact's current content back to the bundle
// directory, atomically. New artifacts get a path under the bundle
// directory derived from their name.
func (s *Set) Save(name string) error {
	a, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("bundle: no artifact named %q", name)
	}
	if s.dir == "" {
		return fmt.Errorf("bundle: set has no backing directory")
	}
	if a.Path == "" {
		a.Path = filepath.Join(s.dir, filepath.FromSlash(a.Name))
	}
	if err := writeFileAtomic(a.Path, a.Data); err != nil {
		return fmt.Errorf("writing artifact %q: %w", a.Name, err)
	}
	return nil
}

// WriteFile writes a verification output (report, receipt) into the
// bundle directory, atomically. Unlike Save it takes the content
// directly: verification outputs live alongside the artifacts without
// being release content themselves, so they never join a Set.
func WriteFile(dir, name string, data []byte) error {
	if dir == "" {
		return fmt.Errorf("bundle: no directory to write %q to", name)
	}
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file and rename so a
// crash mid-write never leaves a truncated artifact behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".relgate-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting temp file mode: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming into place: %w", err)
	}

	success = true
	return nil
}
