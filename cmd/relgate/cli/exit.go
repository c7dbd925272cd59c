// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// Process exit codes. CI systems branch on these, so they are part of
// the tool's contract: a NO-GO verdict and a broken invocation must
// never share a code.
const (
	// ExitGo: verification completed and every required gate passed.
	ExitGo = 0

	// ExitNoGo: verification completed and at least one required gate
	// did not pass. The report names each one.
	ExitNoGo = 1

	// ExitConfigError: the run was rejected before any gate ran
	// (unknown mode, invalid gates file, missing bundle directory).
	ExitConfigError = 2

	// ExitInternal: the run started but could not produce a
	// trustworthy result (output write failure, aggregation invariant
	// violation).
	ExitInternal = 3
)

// ExitError signals a specific process exit code. When Err is nil the
// command has already written its own output and no extra error line
// is printed; a non-nil Err is displayed before exiting.
//
// Commands where a non-zero exit is a valid outcome (verify returning
// NO-GO, checksum verify finding mismatches) return an ExitError after
// printing their result.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code. The main function checks for this
// interface on returned errors to distinguish a handled non-zero exit
// from an unexpected error to display.
func (e *ExitError) ExitCode() int {
	return e.Code
}
