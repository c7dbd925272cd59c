// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for relgate packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that concurrency tests do not
// need direct time.After calls. It is the only place in the test
// suite where a real wall-clock timeout is used; everything else runs
// on [github.com/relgate-io/relgate/lib/clock] fakes.
package testutil
