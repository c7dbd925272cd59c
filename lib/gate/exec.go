// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// Executor runs one external-command gate and reports the raw outcome.
// The production implementation shells out; tests substitute in-memory
// fakes. The evaluator stays decoupled from any specific process
// mechanism through this interface.
type Executor interface {
	Execute(ctx context.Context, gate Gate, target *Target) ExecResult
}

// ExecResult is the raw outcome of one command invocation. Err is set
// only when the command could not run or was terminated by the
// context; a command that ran to completion reports through ExitCode
// regardless of what it printed.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

// ShellExecutor invokes gate commands via sh -c with the bundle
// directory as working directory.
//
// The shell is resolved via PATH rather than hardcoded to /bin/sh, and
// each command runs in its own process group so that cancellation
// kills the shell and all its children. Without Setpgid only the shell
// receives the signal; children survive and keep running after the
// gate has already been reported as failed.
type ShellExecutor struct{}

// Bundle context environment variables passed to every gate command.
const (
	// EnvBundleDir is the absolute bundle directory path.
	EnvBundleDir = "RELGATE_BUNDLE_DIR"

	// EnvMode is the verification mode in force ("hard" or "soft").
	EnvMode = "RELGATE_MODE"

	// EnvGateID is the ID of the gate being evaluated.
	EnvGateID = "RELGATE_GATE_ID"
)

func (ShellExecutor) Execute(ctx context.Context, g Gate, target *Target) ExecResult {
	cmd := exec.CommandContext(ctx, "sh", "-c", g.Run)
	cmd.Dir = target.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Negative PID signals the whole process group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	cmd.Env = append(os.Environ(),
		EnvBundleDir+"="+target.Dir,
		EnvMode+"="+string(target.Mode),
		EnvGateID+"="+g.ID,
	)

	err := cmd.Run()
	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result
	}

	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result
	}

	// Start failure, context cancellation, or signal.
	result.ExitCode = -1
	result.Err = err
	return result
}
