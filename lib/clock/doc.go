// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Production code accepts a Clock parameter instead of calling
// time.Now directly. In production, Real() provides the standard
// library behavior. In tests, Fake() provides a deterministic clock
// that moves only when Advance or Set is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that stamp times:
//
//	type Verifier struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	v := &Verifier{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	v := &Verifier{clock: c}
package clock
