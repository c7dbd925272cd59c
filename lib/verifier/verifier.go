// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package verifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/clock"
	"github.com/relgate-io/relgate/lib/config"
	"github.com/relgate-io/relgate/lib/gate"
	"github.com/relgate-io/relgate/lib/gatedef"
	"github.com/relgate-io/relgate/lib/redact"
	"github.com/relgate-io/relgate/lib/report"
)

// ErrConfiguration marks a failure diagnosed before any gate runs or
// any artifact changes: a missing bundle directory, an unknown mode,
// an invalid gates file or config. Configuration errors map to their
// own process exit code, distinct from a NO-GO verdict.
var ErrConfiguration = errors.New("configuration error")

// Options configures one verification run.
type Options struct {
	// BundleDir is the release bundle directory to verify.
	BundleDir string

	// Mode is the verification mode, "hard" or "soft". Empty means
	// hard.
	Mode string

	// Redaction names the redaction mode to apply before gates run.
	// Empty means none.
	Redaction string

	// GatesFile overrides the gate definitions path from config.
	GatesFile string

	// Config supplies engine settings. Nil means the defaults.
	Config *config.Config

	// Log receives run progress. Nil selects slog.Default().
	Log *slog.Logger

	// Clock supplies report timestamps and gate durations. Nil
	// selects the real clock.
	Clock clock.Clock

	// Executor overrides how command gates run. Nil selects the
	// shell executor.
	Executor gate.Executor
}

// Run performs one verification: load the bundle, apply redaction when
// requested, evaluate the gates, and write the report and its receipt
// back into the bundle directory.
//
// A report is returned for both GO and NO-GO runs; the caller maps
// Overall to the process exit status. An error is returned only when
// the run could not produce a trustworthy report: configuration
// problems (wrapped in ErrConfiguration), an aggregation invariant
// violation, or an output write failure.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	r := &run{opts: opts, cfg: opts.Config, log: opts.Log, clk: opts.Clock}
	if r.cfg == nil {
		r.cfg = config.Default()
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.clk == nil {
		r.clk = clock.Real()
	}
	return r.execute(ctx)
}

type run struct {
	opts Options
	cfg  *config.Config
	log  *slog.Logger
	clk  clock.Clock
}

func configErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}

func (r *run) execute(ctx context.Context) (*report.Report, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, configErr(err)
	}
	algorithm, err := r.cfg.Algorithm()
	if err != nil {
		return nil, configErr(err)
	}

	modeName := r.opts.Mode
	if modeName == "" {
		modeName = string(gate.ModeHard)
	}
	mode, err := gate.ParseMode(modeName)
	if err != nil {
		return nil, configErr(err)
	}

	registry, err := r.cfg.Registry()
	if err != nil {
		return nil, configErr(err)
	}
	redactionName := r.opts.Redaction
	if redactionName == "" {
		redactionName = redact.ModeNone
	}
	redaction, err := registry.Lookup(redactionName)
	if err != nil {
		return nil, configErr(err)
	}

	gates, err := LoadGates(r.cfg, r.opts.GatesFile)
	if err != nil {
		return nil, err
	}

	var defaultTimeout time.Duration
	if r.cfg.Gates.DefaultTimeout != "" {
		defaultTimeout, err = time.ParseDuration(r.cfg.Gates.DefaultTimeout)
		if err != nil {
			return nil, configErr(fmt.Errorf("gates.default_timeout: %w", err))
		}
	}

	set, err := bundle.Load(r.opts.BundleDir)
	if err != nil {
		return nil, configErr(err)
	}
	uncovered := r.uncovered()

	if redaction.Name != redact.ModeNone {
		if _, err := r.applyRedaction(set, redaction, algorithm, uncovered); err != nil {
			return nil, err
		}
	}

	runner := gate.NewRunner(gate.RunnerOptions{
		Executor:       r.opts.Executor,
		Concurrency:    r.cfg.Gates.Concurrency,
		DefaultTimeout: defaultTimeout,
		Log:            r.log,
		Clock:          r.clk,
	})
	target := &gate.Target{
		Dir:       set.Dir(),
		Bundle:    set,
		Algorithm: algorithm,
		Uncovered: uncovered,
		Mode:      mode,
	}

	// Soft runs demote the gates that only block full releases; the
	// report's required column records what actually blocked.
	effective := gate.ForMode(gates, mode)
	r.log.Info("evaluating gates", "bundle", set.Dir(), "gates", len(effective), "mode", mode)
	results := runner.Run(ctx, effective, target)

	rep, err := report.Build(effective, results, report.Options{
		Bundle:      filepath.Base(set.Dir()),
		Mode:        mode,
		Redaction:   redaction.Name,
		GeneratedAt: r.clk.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := r.writeOutputs(set.Dir(), rep); err != nil {
		return nil, err
	}

	r.log.Info("verification complete", "overall", rep.Overall, "run", rep.RunID)
	return rep, nil
}

// LoadGates resolves the gate list: the explicit file when given, the
// configured file otherwise, or the built-in defaults when neither is
// set. Unreadable or invalid gates files are configuration errors.
func LoadGates(cfg *config.Config, explicit string) ([]gate.Gate, error) {
	path := explicit
	if path == "" {
		path = cfg.Gates.File
	}
	if path == "" {
		return gatedef.Default(), nil
	}

	file, err := gatedef.ReadFile(path)
	if err != nil {
		return nil, configErr(err)
	}
	if issues := gatedef.Validate(file); len(issues) > 0 {
		return nil, configErr(fmt.Errorf("gates file %s: %s", path, strings.Join(issues, "; ")))
	}
	return file.Gates, nil
}

// RedactOptions configures a standalone redaction pass.
type RedactOptions struct {
	// BundleDir is the release bundle directory to redact.
	BundleDir string

	// Mode names the redaction mode to apply. Required; "none" is
	// rejected because it performs no redaction.
	Mode string

	// DryRun masks artifacts in memory and reports what would change
	// without writing anything back to the bundle.
	DryRun bool

	// Config supplies engine settings. Nil means the defaults.
	Config *config.Config

	// Log receives redaction progress. Nil selects slog.Default().
	Log *slog.Logger

	// Clock stamps the redaction record. Nil selects the real clock.
	Clock clock.Clock
}

// RedactResult reports what a redaction pass changed.
type RedactResult struct {
	// FilesRedacted names the artifacts whose bytes changed, in
	// canonical order.
	FilesRedacted []string

	// Problems lists artifacts the redactor skipped and why.
	Problems []redact.Problem

	// RecordWritten is true when redaction.json and the checksum
	// manifest were rewritten. False means the bundle already carried
	// this mode's redaction and nothing moved.
	RecordWritten bool
}

// Redact applies a redaction mode to a bundle outside a verification
// run: mask the mode's fields, write the changed artifacts, maintain
// redaction.json, and recompute the checksum manifest to match. With
// DryRun the bundle is left untouched and the result reports what a
// real pass would change.
func Redact(opts RedactOptions) (*RedactResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}

	if err := cfg.Validate(); err != nil {
		return nil, configErr(err)
	}
	algorithm, err := cfg.Algorithm()
	if err != nil {
		return nil, configErr(err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		return nil, configErr(err)
	}
	mode, err := registry.Lookup(opts.Mode)
	if err != nil {
		return nil, configErr(err)
	}
	if mode.Name == redact.ModeNone {
		return nil, configErr(fmt.Errorf("mode %q performs no redaction", mode.Name))
	}

	set, err := bundle.Load(opts.BundleDir)
	if err != nil {
		return nil, configErr(err)
	}

	if opts.DryRun {
		// Masking happens on the in-memory copies only; nothing is
		// saved and no record is written.
		outcome, err := redact.Apply(set, mode)
		if err != nil {
			return nil, configErr(err)
		}
		return &RedactResult{
			FilesRedacted: outcome.FilesRedacted,
			Problems:      outcome.Problems,
		}, nil
	}

	r := &run{cfg: cfg, log: log, clk: clk}
	return r.applyRedaction(set, mode, algorithm, r.uncovered())
}

// uncovered lists the artifact names checksum coverage skips beyond
// the manifest itself.
func (r *run) uncovered() []string {
	if r.cfg.Checksum.IncludeRedactionRecord {
		return nil
	}
	return []string{bundle.RedactionRecordName}
}

// applyRedaction masks the mode's fields, persists the artifacts that
// changed, maintains redaction.json, and recomputes the checksum
// manifest to match the modified bundle. Re-running a mode over an
// already redacted bundle changes nothing and leaves every byte in
// place, including the record and the manifest.
func (r *run) applyRedaction(set *bundle.Set, mode redact.Mode, algorithm checksum.Algorithm, uncovered []string) (*RedactResult, error) {
	outcome, err := redact.Apply(set, mode)
	if err != nil {
		// Rule paths come from configuration.
		return nil, configErr(err)
	}
	for _, p := range outcome.Problems {
		r.log.Warn("artifact skipped by redactor", "artifact", p.Name, "detail", p.Detail)
	}
	result := &RedactResult{
		FilesRedacted: outcome.FilesRedacted,
		Problems:      outcome.Problems,
	}

	for _, name := range outcome.FilesRedacted {
		if err := set.Save(name); err != nil {
			return nil, fmt.Errorf("persisting redacted artifact: %w", err)
		}
	}

	record := r.resolveRecord(set, mode.Name, outcome.FilesRedacted)
	if record == nil {
		r.log.Info("redaction already applied", "mode", mode.Name)
		return result, nil
	}

	data, err := record.Format()
	if err != nil {
		return nil, err
	}
	if err := putOrReplace(set, bundle.RedactionRecordName, data); err != nil {
		return nil, err
	}
	if err := set.Save(bundle.RedactionRecordName); err != nil {
		return nil, fmt.Errorf("persisting redaction record: %w", err)
	}
	result.RecordWritten = true

	// The bundle changed; the manifest must match it again. Artifacts
	// that cannot be read get no entry and surface later as checksum
	// gate failures rather than aborting the run here.
	manifest, unreadable := checksum.Compute(set, algorithm, uncovered...)
	for _, u := range unreadable {
		r.log.Warn("artifact left out of checksum manifest", "artifact", u.Name, "error", u.Err)
	}
	if err := putOrReplace(set, bundle.ChecksumsName, manifest.Format()); err != nil {
		return nil, err
	}
	if err := set.Save(bundle.ChecksumsName); err != nil {
		return nil, fmt.Errorf("persisting checksum manifest: %w", err)
	}

	r.log.Info("redaction applied", "mode", mode.Name, "filesRedacted", len(outcome.FilesRedacted))
	return result, nil
}

// resolveRecord decides what redaction.json should say after this
// application. Returns nil when the existing record already covers the
// run and nothing changed, so an idempotent re-run leaves the bundle
// byte-identical.
func (r *run) resolveRecord(set *bundle.Set, modeName string, changed []string) *redact.Record {
	files := changed

	if existing, ok := set.Lookup(bundle.RedactionRecordName); ok {
		if existing.ReadErr != nil {
			r.log.Warn("replacing unreadable redaction record", "error", existing.ReadErr)
		} else if prior, err := redact.ParseRecord(existing.Data); err != nil {
			r.log.Warn("replacing invalid redaction record", "error", err)
		} else if prior.Mode != modeName {
			r.log.Warn("replacing redaction record from another mode",
				"previous", prior.Mode, "mode", modeName)
		} else if len(changed) == 0 {
			return nil
		} else {
			// Same mode applied again after the bundle gained new
			// content: the record keeps naming everything redacted so
			// far, each artifact exactly once.
			files = union(prior.FilesRedacted, changed)
		}
	}

	return redact.NewRecord(modeName, r.clk.Now(), files)
}

// writeOutputs persists the report and its receipt into the bundle
// directory. Neither joins the artifact set: they describe the bundle
// rather than belong to it, and the next run's load skips them.
func (r *run) writeOutputs(dir string, rep *report.Report) error {
	data, err := rep.Format()
	if err != nil {
		return err
	}
	if err := bundle.WriteFile(dir, bundle.ReportName, data); err != nil {
		return err
	}

	receipt, err := report.NewReceipt(rep)
	if err != nil {
		return err
	}
	receiptData, err := report.FormatReceipt(receipt)
	if err != nil {
		return err
	}
	return bundle.WriteFile(dir, bundle.ReceiptName, receiptData)
}

func putOrReplace(set *bundle.Set, name string, data []byte) error {
	if _, exists := set.Lookup(name); exists {
		if err := set.Replace(name, data); err != nil {
			return fmt.Errorf("updating %s: %w", name, err)
		}
		return nil
	}
	if err := set.Put(&bundle.Artifact{Name: name, Data: data}); err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	return nil
}

// union merges two name lists, keeping each name once.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, name := range a {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	for _, name := range b {
		if !seen[name] {
			seen[name] = true
			merged = append(merged, name)
		}
	}
	return merged
}
