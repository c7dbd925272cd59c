// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/relgate-io/relgate/lib/bundle"
	"github.com/relgate-io/relgate/lib/checksum"
	"github.com/relgate-io/relgate/lib/clock"
)

// Target is what gates evaluate: the loaded bundle and the checksum
// parameters in force for this run. It is shared read-only across all
// gates; no artifact mutation is permitted once evaluation begins.
type Target struct {
	// Dir is the absolute bundle directory. Command gates run with it
	// as their working directory.
	Dir string

	// Bundle is the loaded artifact set.
	Bundle *bundle.Set

	// Algorithm is the digest algorithm the checksum check verifies
	// with.
	Algorithm checksum.Algorithm

	// Uncovered lists artifact names outside checksum coverage.
	Uncovered []string

	// Mode is the verification mode in force, exported to command
	// gates via the environment.
	Mode Mode
}

// Runner defaults.
const (
	defaultConcurrency = 4
	defaultTimeout     = 2 * time.Minute

	// maxDetailBytes caps captured command output in one result.
	// Reports stay bounded no matter how chatty a gate script is.
	maxDetailBytes = 4096
)

// RunnerOptions configures a Runner. Zero values select defaults.
type RunnerOptions struct {
	// Executor runs external-command gates. Nil selects ShellExecutor.
	Executor Executor

	// Concurrency bounds how many command gates run at once.
	Concurrency int

	// DefaultTimeout applies to command gates without their own
	// timeout.
	DefaultTimeout time.Duration

	// Log receives per-gate progress. Nil selects slog.Default().
	Log *slog.Logger

	// Clock supplies gate durations. Nil selects the real clock.
	Clock clock.Clock
}

// Runner evaluates an ordered list of gates against a bundle. Command
// gates are dispatched to a bounded worker pool; structural checks are
// evaluated in-process. Results are always assembled in gate
// configuration order, so concurrency never affects report ordering or
// the aggregation outcome.
type Runner struct {
	executor       Executor
	concurrency    int
	defaultTimeout time.Duration
	log            *slog.Logger
	clk            clock.Clock
}

// NewRunner builds a Runner from options.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		executor:       opts.Executor,
		concurrency:    opts.Concurrency,
		defaultTimeout: opts.DefaultTimeout,
		log:            opts.Log,
		clk:            opts.Clock,
	}
	if r.executor == nil {
		r.executor = ShellExecutor{}
	}
	if r.concurrency <= 0 {
		r.concurrency = defaultConcurrency
	}
	if r.defaultTimeout <= 0 {
		r.defaultTimeout = defaultTimeout
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	if r.clk == nil {
		r.clk = clock.Real()
	}
	return r
}

// Run evaluates every gate and returns one result per gate, in input
// order. Per-gate failures (nonzero exits, timeouts, structural
// mismatches) become fail results; they never abort the run. If ctx is
// cancelled, in-flight commands are killed and report fail with detail
// "cancelled", and gates that never started report skipped with the
// same detail.
func (r *Runner) Run(ctx context.Context, gates []Gate, target *Target) []Result {
	results := make([]Result, len(gates))

	type job struct {
		index int
		gate  Gate
	}

	commandCount := 0
	for _, g := range gates {
		if g.Run != "" {
			commandCount++
		}
	}
	workers := r.concurrency
	if workers > commandCount {
		workers = commandCount
	}

	// Buffered so dispatch never blocks: structural checks interleave
	// with command gates without waiting for a free worker.
	jobs := make(chan job, commandCount)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = r.runCommand(ctx, j.gate, target)
			}
		}()
	}

	for i, g := range gates {
		if g.Run != "" {
			jobs <- job{index: i, gate: g}
			continue
		}
		results[i] = r.evaluateCheck(ctx, g, target)
	}
	close(jobs)
	wg.Wait()

	return results
}

// runCommand evaluates one external-command gate: applies the timeout,
// invokes the executor, and classifies the outcome. Never returns an
// error; execution failures downgrade to fail results.
func (r *Runner) runCommand(ctx context.Context, g Gate, target *Target) Result {
	if ctx.Err() != nil {
		return Result{GateID: g.ID, Verdict: VerdictSkipped, Detail: DetailCancelled}
	}

	timeout := r.defaultTimeout
	if g.Timeout != "" {
		if parsed, err := time.ParseDuration(g.Timeout); err == nil {
			timeout = parsed
		}
	}
	gateCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.log.Debug("gate command started", "gate", g.ID, "timeout", timeout)
	start := r.clk.Now()
	exec := r.executor.Execute(gateCtx, g, target)
	duration := r.clk.Now().Sub(start)

	result := Result{GateID: g.ID, Duration: duration}
	switch {
	case ctx.Err() != nil:
		result.Verdict = VerdictFail
		result.Detail = DetailCancelled
	case gateCtx.Err() == context.DeadlineExceeded:
		result.Verdict = VerdictFail
		result.Detail = DetailTimeout
	case exec.Err != nil:
		result.Verdict = VerdictFail
		result.Detail = truncateDetail(fmt.Sprintf("command failed: %v", exec.Err))
	case exec.ExitCode == 0:
		result.Verdict = VerdictPass
		result.Detail = truncateDetail(combinedOutput(exec))
	default:
		detail := fmt.Sprintf("exit code %d", exec.ExitCode)
		if output := combinedOutput(exec); output != "" {
			detail += ": " + output
		}
		result.Verdict = VerdictFail
		result.Detail = truncateDetail(detail)
	}

	r.logResult(g, result)
	return result
}

// evaluateCheck evaluates one structural check gate.
func (r *Runner) evaluateCheck(ctx context.Context, g Gate, target *Target) Result {
	if ctx.Err() != nil {
		return Result{GateID: g.ID, Verdict: VerdictSkipped, Detail: DetailCancelled}
	}

	start := r.clk.Now()
	verdict, detail := runCheck(g, target)
	result := Result{
		GateID:   g.ID,
		Verdict:  verdict,
		Detail:   truncateDetail(detail),
		Duration: r.clk.Now().Sub(start),
	}

	r.logResult(g, result)
	return result
}

func (r *Runner) logResult(g Gate, result Result) {
	if result.Verdict == VerdictPass {
		r.log.Debug("gate passed", "gate", g.ID, "duration", result.Duration)
		return
	}
	r.log.Warn("gate did not pass",
		"gate", g.ID,
		"verdict", result.Verdict,
		"required", g.Required,
		"detail", result.Detail,
	)
}

// combinedOutput joins captured stdout and stderr for result detail.
func combinedOutput(exec ExecResult) string {
	stdout := strings.TrimSpace(exec.Stdout)
	stderr := strings.TrimSpace(exec.Stderr)
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}

func truncateDetail(detail string) string {
	if len(detail) <= maxDetailBytes {
		return detail
	}
	return detail[:maxDetailBytes] + " [truncated]"
}
