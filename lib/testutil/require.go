// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "time"

// failer is the subset of *testing.T the helpers need. Taking the
// interface keeps this package free of a testing import, so it can
// never end up linked into a binary.
type failer interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test naming what it was waiting for. The timeout is a safety valve
// against a hung goroutine, not an assertion: passing tests never
// wait it out.
//
//	results := testutil.RequireReceive(t, done, 5*time.Second, "runner to finish")
func RequireReceive[T any](t failer, ch <-chan T, timeout time.Duration, waitingFor string) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while waiting for %s", waitingFor)
		}
		return v
	case <-time.After(timeout):
		t.Fatalf("timed out after %v waiting for %s", timeout, waitingFor)
	}
	panic("unreachable")
}
